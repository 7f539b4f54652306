package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	ManagerMetrics
	MigrationMetrics
	StoreMetrics
}

// ManagerMetrics defines metrics for lifecycle and bootstrap operations.
type ManagerMetrics interface {
	// RecordStateTransition records a lifecycle state transition event.
	//
	// Parameters:
	//   - from, to: The transition endpoints
	//   - duration: Time spent reaching the new state, in seconds
	RecordStateTransition(from, to LifecycleState, duration float64)

	// RecordBootstrapOutcome records the result of the startup bootstrap.
	//
	// Parameters:
	//   - outcome: One of "aware", "not_aware", "invalid_options", "error"
	RecordBootstrapOutcome(outcome string)

	// RecordTopologyNotification records one replica-set topology-change
	// notification and whether it targeted the config server's set.
	RecordTopologyNotification(matched bool)
}

// MigrationMetrics defines metrics for migration admission.
type MigrationMetrics interface {
	// RecordMigrationRegistration records one admission attempt.
	//
	// Parameters:
	//   - kind: Slot category
	//   - success: false when the attempt failed with a conflict
	RecordMigrationRegistration(kind MigrationKind, success bool)

	// SetActiveMigrations sets the number of held slots for a category (0 or 1).
	SetActiveMigrations(kind MigrationKind, active int)
}

// StoreMetrics defines metrics for persisted identity store operations.
type StoreMetrics interface {
	// RecordStoreOperationDuration records identity store operation latency.
	//
	// Parameters:
	//   - operation: Operation type ("fetch", "update", "insert")
	//   - duration: Time taken in seconds
	RecordStoreOperationDuration(operation string, duration float64)
}
