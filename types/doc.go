// Package types provides core type definitions and interfaces for the shardstate library.
//
// This package contains shared types that are used across multiple packages in the
// shardstate library. By keeping these types in a separate package, we avoid import
// cycles between the main shardstate package and its internal implementations.
//
// Key types:
//   - LifecycleState: Sharding-awareness lifecycle state
//   - ShardIdentity: Durable record of who this shard is
//   - ConnectionString: Replica-set address of the config catalog
//   - MoveChunkRequest / MovePrimaryRequest: Migration admission requests
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
