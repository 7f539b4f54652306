package types

import (
	"fmt"
	"time"
)

// Namespace identifies a database or a collection within a database.
type Namespace struct {
	// DB is the database name.
	DB string `json:"db"`

	// Coll is the collection name ("" when the namespace is a whole database,
	// as for move-primary operations).
	Coll string `json:"coll,omitempty"`
}

// String renders the "db.coll" form ("db" for database-only namespaces).
func (ns Namespace) String() string {
	if ns.Coll == "" {
		return ns.DB
	}

	return ns.DB + "." + ns.Coll
}

// IsEmpty reports whether the namespace is unset.
func (ns Namespace) IsEmpty() bool {
	return ns.DB == ""
}

// ChunkRange is a contiguous, half-open range [Min, Max) of a sharded
// collection's key space.
type ChunkRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// String renders the "[min, max)" form.
func (r ChunkRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Min, r.Max)
}

// MigrationKind identifies the category of an ownership-transfer operation.
//
// The three categories hold independent admission slots: an in-flight chunk
// donation never blocks a chunk receipt or a move-primary, and vice versa.
type MigrationKind string

const (
	// KindDonateChunk is the outbound side of a chunk migration.
	KindDonateChunk MigrationKind = "donateChunk"

	// KindReceiveChunk is the inbound side of a chunk migration.
	KindReceiveChunk MigrationKind = "receiveChunk"

	// KindMovePrimary relocates a database's primary-owning shard.
	KindMovePrimary MigrationKind = "movePrimary"
)

// MoveChunkRequest describes one requested chunk donation.
type MoveChunkRequest struct {
	// Namespace is the sharded collection the chunk belongs to.
	Namespace Namespace `json:"namespace"`

	// Range is the chunk's key range.
	Range ChunkRange `json:"range"`

	// FromShard is the donating shard's name.
	FromShard string `json:"fromShard"`

	// ToShard is the recipient shard's name.
	ToShard string `json:"toShard"`
}

// MovePrimaryRequest describes one requested primary-shard move.
type MovePrimaryRequest struct {
	// Namespace is the database whose primary shard moves (Coll is empty).
	Namespace Namespace `json:"namespace"`

	// ToShard is the new primary shard's name.
	ToShard string `json:"toShard"`
}

// MigrationStatus is the diagnostic rendering of one held admission slot.
type MigrationStatus struct {
	Kind      MigrationKind `json:"kind"`
	Namespace Namespace     `json:"namespace"`
	FromShard string        `json:"fromShard,omitempty"`
	ToShard   string        `json:"toShard,omitempty"`
	Range     *ChunkRange   `json:"range,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
}

// MigrationStatusReport is a non-blocking snapshot of every held slot.
//
// A nil entry means the corresponding slot category is free.
type MigrationStatusReport struct {
	DonateChunk  *MigrationStatus `json:"donateChunk,omitempty"`
	ReceiveChunk *MigrationStatus `json:"receiveChunk,omitempty"`
	MovePrimary  *MigrationStatus `json:"movePrimary,omitempty"`
}
