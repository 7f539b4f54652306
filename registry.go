package shardstate

import (
	"fmt"
	"sync"
	"time"
)

// MigrationRegistry is the single-flight admission gate for data-placement
// operations on this node.
//
// Three independent slots exist, one per category:
//   - donate chunk (this node is the source of a chunk migration)
//   - receive chunk (this node is the destination of a chunk migration)
//   - move primary (a database's primary shard is being moved)
//
// At most one operation per category is in flight at a time; the categories
// never block each other. Admission is granted as a scoped handle whose
// Release frees the slot. Handles are release-once: redundant Release calls
// are harmless no-ops.
//
// All methods are safe for concurrent use.
type MigrationRegistry struct {
	logger  Logger
	metrics MetricsCollector

	mu           sync.Mutex
	donateChunk  *migrationSlot
	receiveChunk *migrationSlot
	movePrimary  *migrationSlot
}

// migrationSlot is one occupied admission slot.
type migrationSlot struct {
	status MigrationStatus
}

// NewMigrationRegistry creates an empty registry.
//
// The Manager owns one; standalone use in tests is also supported.
func NewMigrationRegistry(logger Logger, metrics MetricsCollector) *MigrationRegistry {
	return &MigrationRegistry{
		logger:  logger,
		metrics: metrics,
	}
}

// RegisterDonateChunk attempts to occupy the donate-chunk slot.
//
// Parameters:
//   - req: The outbound migration being started
//
// Returns:
//   - *ScopedDonateChunk: Handle owning the slot; Release when done
//   - error: ErrConflictingOperationInProgress (wrapped, naming the busy
//     namespace) when another donation is already in flight
func (r *MigrationRegistry) RegisterDonateChunk(req MoveChunkRequest) (*ScopedDonateChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.donateChunk != nil {
		busy := r.donateChunk.status.Namespace
		r.metrics.RecordMigrationRegistration(KindDonateChunk, false)

		return nil, fmt.Errorf(
			"unable to start new migration because this shard is currently donating chunk %v for namespace %s: %w",
			r.donateChunk.status.Range, busy, ErrConflictingOperationInProgress,
		)
	}

	chunkRange := req.Range
	r.donateChunk = &migrationSlot{
		status: MigrationStatus{
			Kind:      KindDonateChunk,
			Namespace: req.Namespace,
			FromShard: req.FromShard,
			ToShard:   req.ToShard,
			Range:     &chunkRange,
			StartedAt: time.Now(),
		},
	}

	r.metrics.RecordMigrationRegistration(KindDonateChunk, true)
	r.metrics.SetActiveMigrations(KindDonateChunk, 1)
	r.logger.Debug("registered donate chunk",
		"namespace", req.Namespace.String(),
		"to_shard", req.ToShard,
	)

	return &ScopedDonateChunk{registry: r}, nil
}

// RegisterReceiveChunk attempts to occupy the receive-chunk slot.
//
// Parameters:
//   - ns: Namespace of the incoming chunk
//   - chunkRange: Key range of the incoming chunk
//   - fromShard: The donating shard
//
// Returns:
//   - *ScopedReceiveChunk: Handle owning the slot; Release when done
//   - error: ErrConflictingOperationInProgress (wrapped) when another receive
//     is already in flight
func (r *MigrationRegistry) RegisterReceiveChunk(ns Namespace, chunkRange ChunkRange, fromShard string) (*ScopedReceiveChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.receiveChunk != nil {
		busy := r.receiveChunk.status.Namespace
		r.metrics.RecordMigrationRegistration(KindReceiveChunk, false)

		return nil, fmt.Errorf(
			"unable to start receiving chunk because this shard is currently receiving chunk %v for namespace %s: %w",
			r.receiveChunk.status.Range, busy, ErrConflictingOperationInProgress,
		)
	}

	rangeCopy := chunkRange
	r.receiveChunk = &migrationSlot{
		status: MigrationStatus{
			Kind:      KindReceiveChunk,
			Namespace: ns,
			FromShard: fromShard,
			Range:     &rangeCopy,
			StartedAt: time.Now(),
		},
	}

	r.metrics.RecordMigrationRegistration(KindReceiveChunk, true)
	r.metrics.SetActiveMigrations(KindReceiveChunk, 1)
	r.logger.Debug("registered receive chunk",
		"namespace", ns.String(),
		"from_shard", fromShard,
	)

	return &ScopedReceiveChunk{registry: r}, nil
}

// RegisterMovePrimary attempts to occupy the move-primary slot.
//
// Parameters:
//   - req: The primary move being started
//
// Returns:
//   - *ScopedMovePrimary: Handle owning the slot; Release when done
//   - error: ErrConflictingOperationInProgress (wrapped) when another primary
//     move is already in flight
func (r *MigrationRegistry) RegisterMovePrimary(req MovePrimaryRequest) (*ScopedMovePrimary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.movePrimary != nil {
		busy := r.movePrimary.status.Namespace
		r.metrics.RecordMigrationRegistration(KindMovePrimary, false)

		return nil, fmt.Errorf(
			"unable to start new movePrimary operation because this shard is currently moving its primary for namespace %s: %w",
			busy, ErrConflictingOperationInProgress,
		)
	}

	r.movePrimary = &migrationSlot{
		status: MigrationStatus{
			Kind:      KindMovePrimary,
			Namespace: req.Namespace,
			ToShard:   req.ToShard,
			StartedAt: time.Now(),
		},
	}

	r.metrics.RecordMigrationRegistration(KindMovePrimary, true)
	r.metrics.SetActiveMigrations(KindMovePrimary, 1)
	r.logger.Debug("registered move primary",
		"namespace", req.Namespace.String(),
		"to_shard", req.ToShard,
	)

	return &ScopedMovePrimary{registry: r}, nil
}

// ActiveDonateChunkNamespace returns the namespace of the chunk currently
// being donated, if any.
func (r *MigrationRegistry) ActiveDonateChunkNamespace() (Namespace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.donateChunk == nil {
		return Namespace{}, false
	}

	return r.donateChunk.status.Namespace, true
}

// ActiveMovePrimaryNamespace returns the database whose primary is currently
// being moved, if any.
func (r *MigrationRegistry) ActiveMovePrimaryNamespace() (Namespace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.movePrimary == nil {
		return Namespace{}, false
	}

	return r.movePrimary.status.Namespace, true
}

// ActiveMigrationStatusReport renders a point-in-time snapshot of the held
// slots for diagnostics. Empty slots render as nil entries.
func (r *MigrationRegistry) ActiveMigrationStatusReport() MigrationStatusReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	var report MigrationStatusReport
	if r.donateChunk != nil {
		status := r.donateChunk.status
		report.DonateChunk = &status
	}
	if r.receiveChunk != nil {
		status := r.receiveChunk.status
		report.ReceiveChunk = &status
	}
	if r.movePrimary != nil {
		status := r.movePrimary.status
		report.MovePrimary = &status
	}

	return report
}

// releaseDonateChunk frees the donate-chunk slot.
func (r *MigrationRegistry) releaseDonateChunk() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.donateChunk = nil
	r.metrics.SetActiveMigrations(KindDonateChunk, 0)
}

// releaseReceiveChunk frees the receive-chunk slot.
func (r *MigrationRegistry) releaseReceiveChunk() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.receiveChunk = nil
	r.metrics.SetActiveMigrations(KindReceiveChunk, 0)
}

// releaseMovePrimary frees the move-primary slot.
func (r *MigrationRegistry) releaseMovePrimary() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.movePrimary = nil
	r.metrics.SetActiveMigrations(KindMovePrimary, 0)
}

// ScopedDonateChunk owns the donate-chunk slot until released.
type ScopedDonateChunk struct {
	registry *MigrationRegistry
	once     sync.Once
}

// Release frees the slot. Safe to call more than once.
func (s *ScopedDonateChunk) Release() {
	s.once.Do(s.registry.releaseDonateChunk)
}

// ScopedReceiveChunk owns the receive-chunk slot until released.
type ScopedReceiveChunk struct {
	registry *MigrationRegistry
	once     sync.Once
}

// Release frees the slot. Safe to call more than once.
func (s *ScopedReceiveChunk) Release() {
	s.once.Do(s.registry.releaseReceiveChunk)
}

// ScopedMovePrimary owns the move-primary slot until released.
type ScopedMovePrimary struct {
	registry *MigrationRegistry
	once     sync.Once
}

// Release frees the slot. Safe to call more than once.
func (s *ScopedMovePrimary) Release() {
	s.once.Do(s.registry.releaseMovePrimary)
}
