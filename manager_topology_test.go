package shardstate_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/shardstate"
	"github.com/arloliu/shardstate/internal/topology"
)

func TestManager_TopologyChangePersistsConfigString(t *testing.T) {
	store := &fakeIdentityStore{identity: testIdentity(), present: true}

	var (
		mu          sync.Mutex
		hookCalls   []string
		hookConnStr shardstate.ConnectionString
	)

	cfg := shardstate.TestConfig()
	cfg.TopologySubject = "test.topology.changes"

	mgr, nc := newTestManager(t, cfg,
		shardstate.WithIdentityStore(store),
		shardstate.WithShardRegistryUpdateHook(func(setName string, connStr shardstate.ConnectionString) {
			mu.Lock()
			defer mu.Unlock()
			hookCalls = append(hookCalls, setName)
			hookConnStr = connStr
		}),
	)

	require.NoError(t, mgr.InitializeFromIdentity(t.Context(), testIdentity()))

	publish := func(setName, connStr string) {
		payload, err := json.Marshal(topology.ChangeNotification{
			SetName:          setName,
			ConnectionString: connStr,
		})
		require.NoError(t, err)
		require.NoError(t, nc.Publish(cfg.TopologySubject, payload))
	}

	// A change to the config server's set updates the persisted document.
	publish("configRS", "configRS/cfg1:27019,cfg3:27019")

	require.Eventually(t, func() bool {
		return store.updateCount() == 1
	}, 3*time.Second, 20*time.Millisecond, "config string update not persisted")

	store.mu.Lock()
	persisted := store.updates[0]
	store.mu.Unlock()
	assert.Equal(t, "configRS", persisted.SetName)
	assert.Equal(t, []string{"cfg1:27019", "cfg3:27019"}, persisted.Hosts)

	// The synchronous shard-registry hook sees every change, including ones
	// for unrelated sets.
	publish("someShardRS", "someShardRS/s1:27018,s2:27018")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(hookCalls) == 2
	}, 3*time.Second, 20*time.Millisecond, "shard registry hook not invoked")

	mu.Lock()
	assert.Equal(t, []string{"configRS", "someShardRS"}, hookCalls)
	assert.Equal(t, "someShardRS", hookConnStr.SetName)
	mu.Unlock()

	// The unrelated set never touches the persisted document.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, store.updateCount())
}

func TestManager_TopologyChangeIgnoresOtherSets(t *testing.T) {
	store := &fakeIdentityStore{identity: testIdentity(), present: true}

	cfg := shardstate.TestConfig()
	cfg.TopologySubject = "test.topology.ignores"

	mgr, nc := newTestManager(t, cfg, shardstate.WithIdentityStore(store))
	require.NoError(t, mgr.InitializeFromIdentity(t.Context(), testIdentity()))

	payload, err := json.Marshal(topology.ChangeNotification{
		SetName:          "unrelatedRS",
		ConnectionString: "unrelatedRS/x:27018",
	})
	require.NoError(t, err)
	require.NoError(t, nc.Publish(cfg.TopologySubject, payload))
	require.NoError(t, nc.Flush())

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, store.updateCount())
}
