package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespace_String(t *testing.T) {
	assert.Equal(t, "orders.items", Namespace{DB: "orders", Coll: "items"}.String())
	assert.Equal(t, "orders", Namespace{DB: "orders"}.String())
}

func TestNamespace_IsEmpty(t *testing.T) {
	assert.True(t, Namespace{}.IsEmpty())
	assert.False(t, Namespace{DB: "orders"}.IsEmpty())
}

func TestChunkRange_String(t *testing.T) {
	r := ChunkRange{Min: "a", Max: "m"}
	assert.Equal(t, "[a, m)", r.String())
}
