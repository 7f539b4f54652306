package shardstate

import (
	"fmt"
	"time"
)

// ClusterRole is the role this process was started with.
type ClusterRole string

const (
	// RoleNone is a plain replica-set member or standalone, not part of a
	// sharded cluster's data or routing plane.
	RoleNone ClusterRole = "none"

	// RoleShardServer is a data-owning member of a sharded cluster.
	RoleShardServer ClusterRole = "shardsvr"

	// RoleRouter is a stateless query router. Routers never carry a shard
	// identity; the role exists so configuration can reject it explicitly.
	RoleRouter ClusterRole = "router"
)

// valid reports whether the role is one of the defined constants.
func (r ClusterRole) valid() bool {
	switch r {
	case RoleNone, RoleShardServer, RoleRouter:
		return true
	default:
		return false
	}
}

// KVBucketConfig configures the NATS JetStream KV bucket holding the node's
// system configuration documents.
type KVBucketConfig struct {
	// IdentityBucket is the bucket name for the shard identity document.
	IdentityBucket string `yaml:"identityBucket"`

	// IdentityKey is the well-known key of the shard identity document.
	IdentityKey string `yaml:"identityKey"`
}

// Config is the configuration for the Manager.
//
// All duration fields accept standard Go duration strings like "10s", "1m".
type Config struct {
	// ClusterRole is the role this process was started with. Only
	// RoleShardServer processes ever become sharding-aware.
	ClusterRole ClusterRole `yaml:"clusterRole"`

	// ReadOnly indicates the process runs in read-only/backup mode. In this
	// mode the persisted identity document is ignored and an override
	// identity payload is required for shard servers.
	ReadOnly bool `yaml:"readOnly"`

	// OverrideShardIdentity is an optional shard identity JSON document.
	// Only valid in read-only mode with the shard-server role.
	OverrideShardIdentity string `yaml:"overrideShardIdentity"`

	// TopologySubject is the NATS subject replica-set membership changes
	// arrive on.
	TopologySubject string `yaml:"topologySubject"`

	// OperationTimeout is the timeout for identity store operations and for
	// the background config-string persist triggered by topology changes.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// ShutdownTimeout is the maximum time ShutDown waits for collaborators
	// to stop and join.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// KVBuckets controls NATS JetStream KV bucket configuration.
	KVBuckets KVBucketConfig `yaml:"kvBuckets"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ClusterRole:      RoleNone,
		TopologySubject:  "shardstate.topology.changes",
		OperationTimeout: 10 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		KVBuckets: KVBucketConfig{
			IdentityBucket: "shardstate-system",
			IdentityKey:    "shardIdentity",
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.ClusterRole == "" {
		cfg.ClusterRole = defaults.ClusterRole
	}
	if cfg.TopologySubject == "" {
		cfg.TopologySubject = defaults.TopologySubject
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.KVBuckets.IdentityBucket == "" {
		cfg.KVBuckets.IdentityBucket = defaults.KVBuckets.IdentityBucket
	}
	if cfg.KVBuckets.IdentityKey == "" {
		cfg.KVBuckets.IdentityKey = defaults.KVBuckets.IdentityKey
	}
}

// Validate checks configuration constraints and returns an error for invalid values.
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if !cfg.ClusterRole.valid() {
		return fmt.Errorf("unknown cluster role %q (want %q, %q, or %q)",
			cfg.ClusterRole, RoleNone, RoleShardServer, RoleRouter)
	}

	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("OperationTimeout must be > 0, got %v", cfg.OperationTimeout)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("ShutdownTimeout must be > 0, got %v", cfg.ShutdownTimeout)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for
// non-recommended values.
//
// This is called after Validate() in NewManager() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.OperationTimeout < time.Second {
		logger.Warn(
			"OperationTimeout is very short, identity store operations may time out spuriously",
			"operationTimeout", cfg.OperationTimeout,
			"recommended", "10s or higher",
		)
	}

	if cfg.ReadOnly && cfg.ClusterRole == RoleShardServer && cfg.OverrideShardIdentity == "" {
		logger.Warn(
			"read-only shard server without an override identity will fail to bootstrap",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.ClusterRole = RoleShardServer
	cfg.OperationTimeout = 2 * time.Second
	cfg.ShutdownTimeout = 2 * time.Second

	return cfg
}
