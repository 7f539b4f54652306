package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shardstate/types"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.NotNil(t, nc)
	require.True(t, nc.IsConnected())

	// Verify server is running
	require.True(t, ns.ReadyForConnections(1*time.Second))

	// Verify JetStream is enabled
	js, err := nc.JetStream()
	require.NoError(t, err)
	require.NotNil(t, js)
}

// TestStartEmbeddedNATS_ParallelTests verifies parallel test execution.
func TestStartEmbeddedNATS_ParallelTests(t *testing.T) {
	t.Parallel()

	// Run multiple tests in parallel to verify no port conflicts
	for range 5 {
		t.Run("parallel", func(t *testing.T) {
			t.Parallel()

			_, nc := StartEmbeddedNATS(t)
			require.NotNil(t, nc)
			require.True(t, nc.IsConnected())
		})
	}
}

func TestCreateJetStreamKV(t *testing.T) {
	ctx := t.Context()
	_, nc := StartEmbeddedNATS(t)

	kv := CreateJetStreamKV(t, nc, "test-bucket")
	require.NotNil(t, kv)

	// Verify KV operations work
	_, err := kv.Put(ctx, "test-key", []byte("test-value"))
	require.NoError(t, err)

	entry, err := kv.Get(ctx, "test-key")
	require.NoError(t, err)
	require.Equal(t, []byte("test-value"), entry.Value())
}

func TestWriteShardIdentity(t *testing.T) {
	ctx := t.Context()
	_, nc := StartEmbeddedNATS(t)

	kv := CreateJetStreamKV(t, nc, "shardstate-system")

	identity := types.ShardIdentity{
		ShardName: "shard01",
		ClusterID: "cluster-a",
		ConfigServer: types.ConnectionString{
			SetName: "configRS",
			Hosts:   []string{"cfg1:27019", "cfg2:27019"},
		},
	}
	WriteShardIdentity(t, kv, "shardIdentity", identity)

	entry, err := kv.Get(ctx, "shardIdentity")
	require.NoError(t, err)

	parsed, err := types.ParseShardIdentity(entry.Value())
	require.NoError(t, err)
	require.Equal(t, identity, parsed)
}
