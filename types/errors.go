package types

import "errors"

// Sentinel errors for the shardstate library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Manager errors - Public API errors returned by the Manager component.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNATSConnectionRequired is returned when NATS connection is nil.
	ErrNATSConnectionRequired = errors.New("NATS connection is required")

	// ErrGlobalInitRequired is returned when no global-initialization callback is supplied.
	ErrGlobalInitRequired = errors.New("global initialization callback is required")

	// ErrNotAShardServer is returned by CanAcceptShardedCommands when the
	// process was not started with the shard-server cluster role.
	ErrNotAShardServer = errors.New("cannot accept sharding commands if not started as a shard server")

	// ErrNotInitialized is returned by CanAcceptShardedCommands when the shard
	// role is configured but no shard identity has been installed yet.
	ErrNotInitialized = errors.New("sharding state has not been initialized with a shard identity")

	// ErrManualInterventionRequired is returned when first-time initialization
	// failed once; the process refuses to retry until it is restarted.
	ErrManualInterventionRequired = errors.New("sharding state failed to initialize and will remain " +
		"in this state until the instance is manually reset")

	// ErrInvalidOptions is returned for caller-correctable configuration
	// mistakes at bootstrap (override identity in the wrong mode, etc.).
	ErrInvalidOptions = errors.New("invalid options")

	// ErrUnauthorized is returned when a caller is not allowed to advance the
	// config catalog's op-time from inbound metadata.
	ErrUnauthorized = errors.New("unauthorized to update config op-time")

	// ErrShutDown is returned for operations attempted after ShutDown.
	ErrShutDown = errors.New("sharding state has been shut down")
)

// Registry errors - Migration admission errors.
var (
	// ErrConflictingOperationInProgress is returned when an admission slot of
	// the requested category is already held. Expected and frequent; callers
	// use it for backoff decisions, not as a fault.
	ErrConflictingOperationInProgress = errors.New("conflicting operation in progress")
)

// Store errors - Persisted identity store errors.
var (
	// ErrIdentityNotFound is returned by point lookups when no shard identity
	// document exists. Absence is a valid, non-error outcome on some paths;
	// callers decide.
	ErrIdentityNotFound = errors.New("shard identity document not found")

	// ErrNotPrimary indicates the local node cannot accept writes right now.
	// The async config-string update path swallows this class as expected
	// transient noise.
	ErrNotPrimary = errors.New("node is not primary")
)
