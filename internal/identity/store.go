// Package identity implements the persisted shard-identity store on NATS
// JetStream KV.
//
// The store holds a single well-known document: the shard identity record.
// It offers exactly the two operations the membership core needs, a point
// lookup by key and an update-by-key rewrite of the config-server connection
// string. Storage-layer errors propagate unchanged.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/shardstate/internal/logging"
	"github.com/arloliu/shardstate/types"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultKey is the well-known key of the shard identity document.
const DefaultKey = "shardIdentity"

// updateRetries bounds the CAS retry loop in UpdateConfigString.
const updateRetries = 3

// Store is a NATS KV backed types.IdentityStore.
type Store struct {
	kv      jetstream.KeyValue
	key     string
	logger  types.Logger
	metrics types.StoreMetrics
}

// Compile-time assertion that Store implements IdentityStore.
var _ types.IdentityStore = (*Store)(nil)

// NewStore creates a new identity store over the given KV bucket.
//
// Parameters:
//   - kv: KV bucket holding the node's system configuration documents
//   - key: Document key ("" uses DefaultKey)
//   - logger: Logger for background diagnostics (nil uses a nop logger)
//   - metrics: Store metrics sink (nil disables recording)
//
// Returns:
//   - *Store: New store instance
func NewStore(kv jetstream.KeyValue, key string, logger types.Logger, metrics types.StoreMetrics) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Store{kv: kv, key: key, logger: logger, metrics: metrics}
}

// Fetch performs the point lookup of the shard identity document.
//
// Returns:
//   - types.ShardIdentity: The stored identity
//   - error: types.ErrIdentityNotFound when absent; storage errors unchanged
func (s *Store) Fetch(ctx context.Context) (types.ShardIdentity, error) {
	start := time.Now()
	entry, err := s.kv.Get(ctx, s.key)
	s.recordOp("fetch", start)

	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return types.ShardIdentity{}, types.ErrIdentityNotFound
		}

		return types.ShardIdentity{}, fmt.Errorf("failed to fetch shard identity document: %w", err)
	}

	var si types.ShardIdentity
	if err := json.Unmarshal(entry.Value(), &si); err != nil {
		return types.ShardIdentity{}, fmt.Errorf("failed to decode shard identity document: %w", err)
	}

	return si, nil
}

// Insert writes a brand-new shard identity document.
//
// Fails if a document already exists; the identity record is written once and
// only its config-server field may be rewritten afterwards.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - identity: The identity record to persist
//
// Returns:
//   - error: Validation, encode, or storage error
func (s *Store) Insert(ctx context.Context, identity types.ShardIdentity) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid shard identity: %w", err)
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode shard identity document: %w", err)
	}

	start := time.Now()
	_, err = s.kv.Create(ctx, s.key, data)
	s.recordOp("insert", start)

	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return fmt.Errorf("shard identity document already exists: %w", err)
		}

		return fmt.Errorf("failed to persist shard identity document: %w", err)
	}

	s.logger.Info("persisted shard identity document", "identity", identity.String())

	return nil
}

// UpdateConfigString rewrites the config-server connection string field of the
// stored document, leaving every other field untouched.
//
// Uses a revision-checked read-modify-write so a concurrent writer never gets
// silently overwritten; conflicts retry a bounded number of times.
//
// Returns:
//   - error: types.ErrIdentityNotFound when the document no longer exists;
//     storage errors unchanged
func (s *Store) UpdateConfigString(ctx context.Context, configServer types.ConnectionString) error {
	var lastErr error

	for attempt := 0; attempt < updateRetries; attempt++ {
		start := time.Now()
		entry, err := s.kv.Get(ctx, s.key)
		if err != nil {
			s.recordOp("update", start)
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				return types.ErrIdentityNotFound
			}

			return fmt.Errorf("failed to read shard identity document for update: %w", err)
		}

		var si types.ShardIdentity
		if err := json.Unmarshal(entry.Value(), &si); err != nil {
			return fmt.Errorf("failed to decode shard identity document: %w", err)
		}

		si.ConfigServer = configServer

		data, err := json.Marshal(si)
		if err != nil {
			return fmt.Errorf("failed to encode shard identity document: %w", err)
		}

		_, err = s.kv.Update(ctx, s.key, data, entry.Revision())
		s.recordOp("update", start)
		if err == nil {
			s.logger.Debug("updated config server connection string in shard identity document",
				"config_server", configServer.String(),
			)

			return nil
		}

		if !isRevisionConflict(err) {
			return fmt.Errorf("failed to update shard identity document: %w", err)
		}

		// Revision conflict: another writer got there first, re-read and retry.
		lastErr = err
	}

	return fmt.Errorf("failed to update shard identity document after %d attempts: %w", updateRetries, lastErr)
}

// isRevisionConflict reports whether a KV update failed because the document
// changed underneath us.
func isRevisionConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}

	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}

func (s *Store) recordOp(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordStoreOperationDuration(op, time.Since(start).Seconds())
	}
}
