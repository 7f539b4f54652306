// Package hooks provides the default no-op hook implementations.
package hooks

import (
	"context"

	"github.com/arloliu/shardstate/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.LifecycleState, types.LifecycleState) error = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, types.ShardIdentity) error                       = (*NopHooks)(nil).OnIdentityInstalled
	_ func(context.Context, types.ConnectionString) error                    = (*NopHooks)(nil).OnConfigStringUpdated
)

// NewNop creates a new no-op hooks implementation.
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnStateChanged:        h.OnStateChanged,
		OnIdentityInstalled:   h.OnIdentityInstalled,
		OnConfigStringUpdated: h.OnConfigStringUpdated,
	}
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_ context.Context, _, _ types.LifecycleState) error {
	return nil
}

// OnIdentityInstalled is a no-op implementation.
func (h *NopHooks) OnIdentityInstalled(_ context.Context, _ types.ShardIdentity) error {
	return nil
}

// OnConfigStringUpdated is a no-op implementation.
func (h *NopHooks) OnConfigStringUpdated(_ context.Context, _ types.ConnectionString) error {
	return nil
}
