package types

import "context"

// Hooks defines callbacks for Manager lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking the state machine. Hook errors are logged but never fail
// the triggering operation.
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Make hooks idempotent (may be called multiple times)
type Hooks struct {
	// OnStateChanged is called when the lifecycle state transitions.
	OnStateChanged func(ctx context.Context, from, to LifecycleState) error

	// OnIdentityInstalled is called once, after a shard identity has been
	// installed and the state machine reached Initialized.
	OnIdentityInstalled func(ctx context.Context, identity ShardIdentity) error

	// OnConfigStringUpdated is called after the config-server connection
	// string's durable form was rewritten by the async topology path.
	OnConfigStringUpdated func(ctx context.Context, configServer ConnectionString) error
}
