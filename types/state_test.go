package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleState_String(t *testing.T) {
	assert.Equal(t, "New", StateNew.String())
	assert.Equal(t, "Initialized", StateInitialized.String())
	assert.Equal(t, "Error", StateError.String())
	assert.Equal(t, "Unknown", LifecycleState(99).String())
}
