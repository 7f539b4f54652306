// Package shardstate is the per-node membership and migration-coordination
// core of a sharded database process.
//
// It answers two questions for every other subsystem on the node: "am I a
// fully-initialized member of this sharded cluster, and if so, under what
// shard identity and with which config catalog?" and "is there currently an
// in-flight ownership-transfer operation for a given collection or database,
// and can a new one start?"
//
// # Quick Start
//
//	cfg := shardstate.Config{
//	    ClusterRole: shardstate.RoleShardServer,
//	}
//
//	mgr, err := shardstate.NewManager(&cfg, natsConn, globalInit)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	became, err := mgr.Bootstrap(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if became {
//	    log.Printf("sharding initialized as %s", mgr.ShardName())
//	}
//
// # Key Features
//
//   - One-shot initialization: the state machine converges exactly once per
//     process lifetime; a failed first-time init is permanent until restart
//   - Lock-free hot path: Enabled and CanAcceptShardedCommands never contend
//     on a lock, so per-operation admission stays cheap
//   - Single-flight migration admission: at most one chunk donation, one chunk
//     receipt, and one move-primary per process, each in its own slot
//   - Scoped guards: registering a migration returns a handle that frees the
//     slot on Release, on every exit path
//   - Durable identity: the shard identity document lives in a NATS JetStream
//     KV bucket and its config-server field follows topology changes
//
// # Architecture
//
// The lifecycle is deliberately minimal:
//
//	New → Initialized   (exactly once, single winner)
//	New → Error         (permanent; operator restart required)
//
// Bootstrap decides at startup whether and from where the identity comes
// (override payload in read-only mode, persisted document otherwise), then
// drives InitializeFromIdentity. Migration coordinators acquire slots from
// the registry for the lifetime of a migration attempt.
//
// # Testing
//
// The global-initialization callback, identity store, replication role
// provider, role sinks, and fatal handler are all constructor-injected, so
// tests substitute recording implementations without touching shared state.
package shardstate
