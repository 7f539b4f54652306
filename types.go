package shardstate

import "github.com/arloliu/shardstate/types"

// Re-export types from the types package.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `shardstate` package,
// while still providing a convenient `shardstate.LifecycleState`,
// `shardstate.Logger`, etc. for users.
type (
	LifecycleState   = types.LifecycleState
	ShardIdentity    = types.ShardIdentity
	ConnectionString = types.ConnectionString
	Namespace        = types.Namespace
	ChunkRange       = types.ChunkRange
	MigrationKind    = types.MigrationKind

	MoveChunkRequest      = types.MoveChunkRequest
	MovePrimaryRequest    = types.MovePrimaryRequest
	MigrationStatus       = types.MigrationStatus
	MigrationStatusReport = types.MigrationStatusReport
)

// Re-export interfaces from the types package for convenience.
type (
	GlobalInitFunc          = types.GlobalInitFunc
	IdentityStore           = types.IdentityStore
	ReplicationRoleProvider = types.ReplicationRoleProvider
	RoleSink                = types.RoleSink
	Stopper                 = types.Stopper
	Authorizer              = types.Authorizer
	MetricsCollector        = types.MetricsCollector
	Logger                  = types.Logger
	Hooks                   = types.Hooks
)

// Re-export LifecycleState constants from the types package.
const (
	StateNew         = types.StateNew
	StateInitialized = types.StateInitialized
	StateError       = types.StateError
)

// Re-export MigrationKind constants from the types package.
const (
	KindDonateChunk  = types.KindDonateChunk
	KindReceiveChunk = types.KindReceiveChunk
	KindMovePrimary  = types.KindMovePrimary
)
