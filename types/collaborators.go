package types

import "context"

// GlobalInitFunc performs all heavyweight first-time sharding setup:
// registering with catalog services, spinning up executor pools, and anything
// else the surrounding process needs before it can serve sharded operations.
//
// It is invoked exactly once per process lifetime, under the coarse bootstrap
// lock. A non-nil return permanently fails initialization. Injectable so tests
// can substitute a recording implementation.
type GlobalInitFunc func(ctx context.Context, configServer ConnectionString, distLockProcessID string) error

// IdentityStore is the persisted shard-identity collaborator: a point lookup
// by well-known key and an update-by-key write against a well-known system
// location. Storage-layer errors propagate unchanged.
type IdentityStore interface {
	// Fetch performs the point lookup. Returns ErrIdentityNotFound when no
	// document exists.
	Fetch(ctx context.Context) (ShardIdentity, error)

	// UpdateConfigString rewrites the config-server connection string field of
	// the stored document. Returns ErrIdentityNotFound when the document no
	// longer exists (the shard may have been removed from the cluster).
	UpdateConfigString(ctx context.Context, configServer ConnectionString) error
}

// ReplicationRoleProvider reports the local replication role at the moment of
// initialization.
type ReplicationRoleProvider interface {
	// IsPrimaryLike returns true when the node is a standalone or the current
	// primary of its replica set, false when secondary-like.
	IsPrimaryLike(ctx context.Context) bool
}

// RoleSink receives the primary-like flag determined at initialization.
// The catalog-cache loader and the chunk splitter are both role sinks.
type RoleSink interface {
	// SetPrimaryLike switches the collaborator into primary or secondary mode.
	SetPrimaryLike(primaryLike bool)
}

// Stopper is a collaborator that can be signalled to stop and joined during
// shutdown (executor pool, catalog client).
type Stopper interface {
	// StopAndJoin signals the collaborator to stop and waits for completion.
	StopAndJoin(ctx context.Context) error
}

// Authorizer gates acceptance of externally supplied config-server metadata
// before the tracked config op-time may advance.
type Authorizer interface {
	// IsAuthorizedForClusterInternal reports whether the current caller holds
	// cluster-internal privileges.
	IsAuthorizedForClusterInternal(ctx context.Context) bool
}
