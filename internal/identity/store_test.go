package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shardtest "github.com/arloliu/shardstate/testing"
	"github.com/arloliu/shardstate/types"
)

func testIdentity() types.ShardIdentity {
	return types.ShardIdentity{
		ShardName: "shard01",
		ClusterID: "cluster-a",
		ConfigServer: types.ConnectionString{
			SetName: "configRS",
			Hosts:   []string{"cfg1:27019", "cfg2:27019"},
		},
	}
}

func TestStore_FetchAbsent(t *testing.T) {
	_, nc := shardtest.StartEmbeddedNATS(t)
	kv := shardtest.CreateJetStreamKV(t, nc, "identity-fetch-absent")

	store := NewStore(kv, "", shardtest.NewTestLogger(t), nil)

	_, err := store.Fetch(t.Context())
	require.ErrorIs(t, err, types.ErrIdentityNotFound)
}

func TestStore_InsertThenFetch(t *testing.T) {
	_, nc := shardtest.StartEmbeddedNATS(t)
	kv := shardtest.CreateJetStreamKV(t, nc, "identity-insert-fetch")

	store := NewStore(kv, DefaultKey, shardtest.NewTestLogger(t), nil)

	require.NoError(t, store.Insert(t.Context(), testIdentity()))

	got, err := store.Fetch(t.Context())
	require.NoError(t, err)
	assert.Equal(t, testIdentity(), got)
}

func TestStore_InsertRejectsInvalidIdentity(t *testing.T) {
	_, nc := shardtest.StartEmbeddedNATS(t)
	kv := shardtest.CreateJetStreamKV(t, nc, "identity-insert-invalid")

	store := NewStore(kv, DefaultKey, nil, nil)

	invalid := testIdentity()
	invalid.ShardName = ""
	require.Error(t, store.Insert(t.Context(), invalid))

	_, err := store.Fetch(t.Context())
	require.ErrorIs(t, err, types.ErrIdentityNotFound)
}

func TestStore_InsertIsWriteOnce(t *testing.T) {
	_, nc := shardtest.StartEmbeddedNATS(t)
	kv := shardtest.CreateJetStreamKV(t, nc, "identity-write-once")

	store := NewStore(kv, DefaultKey, nil, nil)

	require.NoError(t, store.Insert(t.Context(), testIdentity()))

	other := testIdentity()
	other.ShardName = "shard02"
	err := store.Insert(t.Context(), other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// The original document is untouched.
	got, err := store.Fetch(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "shard01", got.ShardName)
}

func TestStore_UpdateConfigString(t *testing.T) {
	_, nc := shardtest.StartEmbeddedNATS(t)
	kv := shardtest.CreateJetStreamKV(t, nc, "identity-update")

	store := NewStore(kv, DefaultKey, shardtest.NewTestLogger(t), nil)
	require.NoError(t, store.Insert(t.Context(), testIdentity()))

	newConnStr := types.ConnectionString{
		SetName: "configRS",
		Hosts:   []string{"cfg1:27019", "cfg3:27019"},
	}
	require.NoError(t, store.UpdateConfigString(t.Context(), newConnStr))

	got, err := store.Fetch(t.Context())
	require.NoError(t, err)
	assert.True(t, got.ConfigServer.Equal(newConnStr))

	// Every other field survives the rewrite.
	assert.Equal(t, "shard01", got.ShardName)
	assert.Equal(t, "cluster-a", got.ClusterID)
}

func TestStore_UpdateConfigStringMissingDocument(t *testing.T) {
	_, nc := shardtest.StartEmbeddedNATS(t)
	kv := shardtest.CreateJetStreamKV(t, nc, "identity-update-missing")

	store := NewStore(kv, DefaultKey, nil, nil)

	err := store.UpdateConfigString(t.Context(), testIdentity().ConfigServer)
	require.ErrorIs(t, err, types.ErrIdentityNotFound)
}
