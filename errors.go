package shardstate

import "github.com/arloliu/shardstate/types"

// Sentinel errors returned by the Manager, re-exported from types.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrNATSConnectionRequired is returned when NATS connection is nil.
	ErrNATSConnectionRequired = types.ErrNATSConnectionRequired

	// ErrGlobalInitRequired is returned when no global-initialization callback is supplied.
	ErrGlobalInitRequired = types.ErrGlobalInitRequired

	// ErrNotAShardServer is returned when the process lacks the shard-server role.
	ErrNotAShardServer = types.ErrNotAShardServer

	// ErrNotInitialized is returned before a shard identity has been installed.
	ErrNotInitialized = types.ErrNotInitialized

	// ErrManualInterventionRequired is returned after a permanent init failure.
	ErrManualInterventionRequired = types.ErrManualInterventionRequired

	// ErrInvalidOptions is returned for caller-correctable bootstrap mistakes.
	ErrInvalidOptions = types.ErrInvalidOptions

	// ErrUnauthorized is returned when config op-time metadata is not trusted.
	ErrUnauthorized = types.ErrUnauthorized

	// ErrShutDown is returned for operations attempted after ShutDown.
	ErrShutDown = types.ErrShutDown

	// ErrConflictingOperationInProgress is returned on migration slot conflicts.
	ErrConflictingOperationInProgress = types.ErrConflictingOperationInProgress

	// ErrIdentityNotFound is returned when no shard identity document exists.
	ErrIdentityNotFound = types.ErrIdentityNotFound

	// ErrNotPrimary indicates the local node cannot accept writes right now.
	ErrNotPrimary = types.ErrNotPrimary
)
