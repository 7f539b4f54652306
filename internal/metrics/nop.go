// Package metrics provides metrics collector implementations.
package metrics

import "github.com/arloliu/shardstate/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ManagerMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.LifecycleState, _ /* duration */ float64) {
	// No-op
}

// RecordBootstrapOutcome discards the bootstrap outcome metric.
func (n *NopMetrics) RecordBootstrapOutcome(_ /* outcome */ string) {
	// No-op
}

// RecordTopologyNotification discards the topology notification metric.
func (n *NopMetrics) RecordTopologyNotification(_ /* matched */ bool) {
	// No-op
}

// MigrationMetrics implementation

// RecordMigrationRegistration discards the admission attempt metric.
func (n *NopMetrics) RecordMigrationRegistration(_ /* kind */ types.MigrationKind, _ /* success */ bool) {
	// No-op
}

// SetActiveMigrations discards the active slot gauge.
func (n *NopMetrics) SetActiveMigrations(_ /* kind */ types.MigrationKind, _ /* active */ int) {
	// No-op
}

// StoreMetrics implementation

// RecordStoreOperationDuration discards the store operation latency metric.
func (n *NopMetrics) RecordStoreOperationDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}
