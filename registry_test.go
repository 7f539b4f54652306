package shardstate

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/shardstate/internal/logger"
	"github.com/arloliu/shardstate/internal/metrics"
)

func newTestRegistry() *MigrationRegistry {
	return NewMigrationRegistry(logger.NewNop(), metrics.NewNop())
}

func testMoveChunkRequest() MoveChunkRequest {
	return MoveChunkRequest{
		Namespace: Namespace{DB: "orders", Coll: "items"},
		Range:     ChunkRange{Min: "a", Max: "m"},
		FromShard: "shard01",
		ToShard:   "shard02",
	}
}

func TestMigrationRegistry_RegisterDonateChunk(t *testing.T) {
	r := newTestRegistry()

	scoped, err := r.RegisterDonateChunk(testMoveChunkRequest())
	require.NoError(t, err)
	require.NotNil(t, scoped)

	ns, ok := r.ActiveDonateChunkNamespace()
	require.True(t, ok)
	assert.Equal(t, "orders.items", ns.String())

	// Second registration conflicts and names the busy namespace.
	_, err = r.RegisterDonateChunk(MoveChunkRequest{
		Namespace: Namespace{DB: "orders", Coll: "archive"},
		Range:     ChunkRange{Min: "m", Max: "z"},
		FromShard: "shard01",
		ToShard:   "shard03",
	})
	require.ErrorIs(t, err, ErrConflictingOperationInProgress)
	assert.Contains(t, err.Error(), "orders.items")

	scoped.Release()

	_, ok = r.ActiveDonateChunkNamespace()
	assert.False(t, ok)

	// Released slot can be reacquired.
	scoped2, err := r.RegisterDonateChunk(testMoveChunkRequest())
	require.NoError(t, err)
	scoped2.Release()
}

func TestMigrationRegistry_RegisterReceiveChunk(t *testing.T) {
	r := newTestRegistry()

	ns := Namespace{DB: "orders", Coll: "items"}
	scoped, err := r.RegisterReceiveChunk(ns, ChunkRange{Min: "a", Max: "m"}, "shard02")
	require.NoError(t, err)

	_, err = r.RegisterReceiveChunk(ns, ChunkRange{Min: "m", Max: "z"}, "shard03")
	require.ErrorIs(t, err, ErrConflictingOperationInProgress)

	scoped.Release()

	scoped2, err := r.RegisterReceiveChunk(ns, ChunkRange{Min: "m", Max: "z"}, "shard03")
	require.NoError(t, err)
	scoped2.Release()
}

func TestMigrationRegistry_RegisterMovePrimary(t *testing.T) {
	r := newTestRegistry()

	scoped, err := r.RegisterMovePrimary(MovePrimaryRequest{
		Namespace: Namespace{DB: "orders"},
		ToShard:   "shard02",
	})
	require.NoError(t, err)

	ns, ok := r.ActiveMovePrimaryNamespace()
	require.True(t, ok)
	assert.Equal(t, "orders", ns.String())

	_, err = r.RegisterMovePrimary(MovePrimaryRequest{
		Namespace: Namespace{DB: "billing"},
		ToShard:   "shard03",
	})
	require.ErrorIs(t, err, ErrConflictingOperationInProgress)
	assert.Contains(t, err.Error(), "orders")

	scoped.Release()

	_, ok = r.ActiveMovePrimaryNamespace()
	assert.False(t, ok)
}

// TestMigrationRegistry_SlotIndependence verifies the three categories never
// block each other.
func TestMigrationRegistry_SlotIndependence(t *testing.T) {
	r := newTestRegistry()

	donate, err := r.RegisterDonateChunk(testMoveChunkRequest())
	require.NoError(t, err)

	receive, err := r.RegisterReceiveChunk(
		Namespace{DB: "billing", Coll: "invoices"},
		ChunkRange{Min: "0", Max: "9"},
		"shard03",
	)
	require.NoError(t, err)

	movePrimary, err := r.RegisterMovePrimary(MovePrimaryRequest{
		Namespace: Namespace{DB: "audit"},
		ToShard:   "shard04",
	})
	require.NoError(t, err)

	report := r.ActiveMigrationStatusReport()
	require.NotNil(t, report.DonateChunk)
	require.NotNil(t, report.ReceiveChunk)
	require.NotNil(t, report.MovePrimary)

	assert.Equal(t, KindDonateChunk, report.DonateChunk.Kind)
	assert.Equal(t, "orders.items", report.DonateChunk.Namespace.String())
	assert.Equal(t, "shard02", report.DonateChunk.ToShard)
	require.NotNil(t, report.DonateChunk.Range)
	assert.Equal(t, "a", report.DonateChunk.Range.Min)

	assert.Equal(t, KindReceiveChunk, report.ReceiveChunk.Kind)
	assert.Equal(t, "shard03", report.ReceiveChunk.FromShard)

	assert.Equal(t, KindMovePrimary, report.MovePrimary.Kind)
	assert.Equal(t, "shard04", report.MovePrimary.ToShard)
	assert.Nil(t, report.MovePrimary.Range)

	// Releasing one slot leaves the others held.
	receive.Release()

	report = r.ActiveMigrationStatusReport()
	assert.NotNil(t, report.DonateChunk)
	assert.Nil(t, report.ReceiveChunk)
	assert.NotNil(t, report.MovePrimary)

	donate.Release()
	movePrimary.Release()

	report = r.ActiveMigrationStatusReport()
	assert.Nil(t, report.DonateChunk)
	assert.Nil(t, report.ReceiveChunk)
	assert.Nil(t, report.MovePrimary)
}

// TestMigrationRegistry_ConcurrentAdmission verifies exactly one of N
// concurrent registrations wins a slot.
func TestMigrationRegistry_ConcurrentAdmission(t *testing.T) {
	r := newTestRegistry()

	const attempts = 32

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()

			scoped, err := r.RegisterDonateChunk(testMoveChunkRequest())
			if err != nil {
				require.ErrorIs(t, err, ErrConflictingOperationInProgress)
				conflicts.Add(1)

				return
			}

			require.NotNil(t, scoped)
			successes.Add(1)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(attempts-1), conflicts.Load())
}

func TestScopedHandle_ReleaseIsIdempotent(t *testing.T) {
	r := newTestRegistry()

	scoped, err := r.RegisterDonateChunk(testMoveChunkRequest())
	require.NoError(t, err)

	scoped.Release()
	scoped.Release() // No-op

	// Reacquire and verify the stale handle's Release does not free the new
	// holder's slot.
	scoped2, err := r.RegisterDonateChunk(testMoveChunkRequest())
	require.NoError(t, err)

	scoped.Release()

	_, ok := r.ActiveDonateChunkNamespace()
	assert.True(t, ok, "stale handle must not release the new holder's slot")

	scoped2.Release()
}

func TestMigrationRegistry_StatusReportIsSnapshot(t *testing.T) {
	r := newTestRegistry()

	scoped, err := r.RegisterDonateChunk(testMoveChunkRequest())
	require.NoError(t, err)

	report := r.ActiveMigrationStatusReport()
	require.NotNil(t, report.DonateChunk)
	assert.False(t, report.DonateChunk.StartedAt.IsZero())

	// Mutating the snapshot must not affect the registry.
	report.DonateChunk.Namespace = Namespace{DB: "other"}

	ns, ok := r.ActiveDonateChunkNamespace()
	require.True(t, ok)
	assert.Equal(t, "orders.items", ns.String())

	scoped.Release()
}
