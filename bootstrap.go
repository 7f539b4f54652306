package shardstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/arloliu/shardstate/types"
)

// Bootstrap outcome labels recorded to the metrics collector.
const (
	bootstrapOutcomeInitializedFromOverride = "initialized_from_override"
	bootstrapOutcomeInitializedFromStore    = "initialized_from_store"
	bootstrapOutcomeAwaitingIdentity        = "awaiting_identity"
	bootstrapOutcomeNotShardServer          = "not_shard_server"
	bootstrapOutcomeInvalidOptions          = "invalid_options"
	bootstrapOutcomeInitFailed              = "init_failed"
	bootstrapOutcomeStoreError              = "store_error"
)

// Bootstrap decides at process startup whether this node becomes
// sharding-aware, and from which identity source.
//
// The decision depends on three configuration inputs (read-only mode, cluster
// role, override identity) and on whether a persisted identity document
// exists:
//
//   - Read-only mode ignores the persisted document entirely. A read-only
//     shard server must be given an override identity; an override on any
//     other role is a configuration mistake.
//   - Outside read-only mode the override is never accepted.
//   - A writable shard server initializes from the persisted document when
//     one exists, and otherwise waits (a later addShard will write one and
//     trigger InitializeFromIdentity).
//   - A non-shard-server process never initializes, but a leftover identity
//     document earns a startup warning since it suggests the process was
//     restarted with the wrong role.
//
// Returns:
//   - bool: true iff the manager is now Initialized
//   - error: ErrInvalidOptions (wrapped) for configuration mistakes, or the
//     initialization/store failure
func (m *Manager) Bootstrap(ctx context.Context) (bool, error) {
	if m.cfg.ReadOnly {
		return m.bootstrapReadOnly(ctx)
	}

	if m.cfg.OverrideShardIdentity != "" {
		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeInvalidOptions)

		return false, fmt.Errorf(
			"%w: override shard identity is only allowed in read-only mode",
			ErrInvalidOptions,
		)
	}

	if m.cfg.ClusterRole != RoleShardServer {
		// Warn if a leftover identity document is found on a process that is
		// not a shard server. It will not be used.
		m.warnIfIdentityDocumentPresent(ctx)
		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeNotShardServer)

		return false, nil
	}

	return m.bootstrapFromStore(ctx)
}

// bootstrapReadOnly covers the read-only (backup/restore) rows of the
// startup decision. The persisted identity document is never consulted.
func (m *Manager) bootstrapReadOnly(ctx context.Context) (bool, error) {
	override := m.cfg.OverrideShardIdentity

	if m.cfg.ClusterRole != RoleShardServer {
		if override != "" {
			m.metrics.RecordBootstrapOutcome(bootstrapOutcomeInvalidOptions)

			return false, fmt.Errorf(
				"%w: override shard identity is only allowed for shard servers",
				ErrInvalidOptions,
			)
		}

		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeNotShardServer)

		return false, nil
	}

	if override == "" {
		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeInvalidOptions)

		return false, fmt.Errorf(
			"%w: shard servers in read-only mode require an override shard identity",
			ErrInvalidOptions,
		)
	}

	shardIdentity, err := types.ParseShardIdentity([]byte(override))
	if err != nil {
		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeInvalidOptions)

		return false, fmt.Errorf("%w: invalid override shard identity: %w", ErrInvalidOptions, err)
	}

	if err := m.InitializeFromIdentity(ctx, shardIdentity); err != nil {
		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeInitFailed)

		return false, err
	}

	m.metrics.RecordBootstrapOutcome(bootstrapOutcomeInitializedFromOverride)
	m.logger.Info("initialized sharding state from override identity",
		"shard_name", m.ShardName(),
	)

	return true, nil
}

// bootstrapFromStore covers the writable shard-server rows: initialize from
// the persisted identity document when one exists, otherwise wait for one.
func (m *Manager) bootstrapFromStore(ctx context.Context) (bool, error) {
	store, err := m.ensureIdentityStore(ctx)
	if err != nil {
		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeStoreError)

		return false, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.OperationTimeout)
	defer cancel()

	shardIdentity, err := store.Fetch(fetchCtx)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// Not yet added to a cluster. InitializeFromIdentity will run when
			// the identity document is first written.
			m.metrics.RecordBootstrapOutcome(bootstrapOutcomeAwaitingIdentity)
			m.logger.Info("started as a shard server, awaiting shard identity document")

			return false, nil
		}

		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeStoreError)

		return false, fmt.Errorf("failed to fetch shard identity document: %w", err)
	}

	if err := m.InitializeFromIdentity(ctx, shardIdentity); err != nil {
		m.metrics.RecordBootstrapOutcome(bootstrapOutcomeInitFailed)

		return false, err
	}

	m.metrics.RecordBootstrapOutcome(bootstrapOutcomeInitializedFromStore)
	m.logger.Info("initialized sharding state from persisted identity",
		"shard_name", shardIdentity.ShardName,
	)

	return true, nil
}

// warnIfIdentityDocumentPresent checks for a leftover identity document on a
// non-shard-server process. Store errors are ignored; this is advisory only.
func (m *Manager) warnIfIdentityDocumentPresent(ctx context.Context) {
	store, err := m.ensureIdentityStore(ctx)
	if err != nil {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.OperationTimeout)
	defer cancel()

	shardIdentity, err := store.Fetch(fetchCtx)
	if err != nil {
		return
	}

	m.logger.Warn("process was not started with the shard-server role, but a shard identity "+
		"document was found; the document will be ignored",
		"shard_name", shardIdentity.ShardName,
	)
}
