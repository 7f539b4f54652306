package metrics

import (
	"errors"
	"sync"

	"github.com/arloliu/shardstate/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are registered lazily on first use so that constructing the
// collector never panics on duplicate registration in tests.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stateTransitions      *prometheus.CounterVec
	bootstrapOutcomes     *prometheus.CounterVec
	topologyNotifications *prometheus.CounterVec

	migrationRegistrations *prometheus.CounterVec
	activeMigrations       *prometheus.GaugeVec

	storeOperationLatency *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "shardstate" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "shardstate"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "lifecycle",
			Name:      "state_transitions_total",
			Help:      "Total lifecycle state transitions by from/to state.",
		}, []string{"from", "to"})

		p.bootstrapOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "lifecycle",
			Name:      "bootstrap_outcomes_total",
			Help:      "Total startup bootstrap outcomes by result label.",
		}, []string{"outcome"})

		p.topologyNotifications = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "topology",
			Name:      "notifications_total",
			Help:      "Total replica-set topology-change notifications by config-set match.",
		}, []string{"matched"})

		p.migrationRegistrations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "migration",
			Name:      "registrations_total",
			Help:      "Total migration admission attempts by kind and result.",
		}, []string{"kind", "result"})

		p.activeMigrations = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "migration",
			Name:      "active",
			Help:      "Currently held migration admission slots by kind (0 or 1).",
		}, []string{"kind"})

		p.storeOperationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "identity_store",
			Name:      "operation_latency_seconds",
			Help:      "Latency of persisted identity store operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		}, []string{"op"})

		collectors := []prometheus.Collector{
			p.stateTransitions,
			p.bootstrapOutcomes,
			p.topologyNotifications,
			p.migrationRegistrations,
			p.activeMigrations,
			p.storeOperationLatency,
		}
		for _, c := range collectors {
			if err := p.reg.Register(c); err != nil {
				// Tolerate duplicate registration (two collectors with the
				// same namespace in one process).
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					panic(err)
				}
			}
		}
	})
}

// RecordStateTransition records a lifecycle state transition.
func (p *PrometheusCollector) RecordStateTransition(from, to types.LifecycleState, _ /* duration */ float64) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordBootstrapOutcome records the startup bootstrap result.
func (p *PrometheusCollector) RecordBootstrapOutcome(outcome string) {
	p.ensureRegistered()
	p.bootstrapOutcomes.WithLabelValues(outcome).Inc()
}

// RecordTopologyNotification records a topology-change notification.
func (p *PrometheusCollector) RecordTopologyNotification(matched bool) {
	p.ensureRegistered()
	label := "false"
	if matched {
		label = "true"
	}
	p.topologyNotifications.WithLabelValues(label).Inc()
}

// RecordMigrationRegistration records one migration admission attempt.
func (p *PrometheusCollector) RecordMigrationRegistration(kind types.MigrationKind, success bool) {
	p.ensureRegistered()
	result := "conflict"
	if success {
		result = "success"
	}
	p.migrationRegistrations.WithLabelValues(string(kind), result).Inc()
}

// SetActiveMigrations sets the held-slot gauge for a category.
func (p *PrometheusCollector) SetActiveMigrations(kind types.MigrationKind, active int) {
	p.ensureRegistered()
	p.activeMigrations.WithLabelValues(string(kind)).Set(float64(active))
}

// RecordStoreOperationDuration records identity store operation latency.
func (p *PrometheusCollector) RecordStoreOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.storeOperationLatency.WithLabelValues(operation).Observe(duration)
}
