package shardstate

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/shardstate/internal/metrics"
)

// NewPrometheusMetrics creates a Prometheus-backed MetricsCollector suitable
// for WithMetrics.
//
// Parameters:
//   - reg: Prometheus registerer (nil uses prometheus.DefaultRegisterer)
//   - namespace: Metrics namespace ("" uses "shardstate")
//
// Example:
//
//	collector := shardstate.NewPrometheusMetrics(nil, "")
//	mgr, err := shardstate.NewManager(&cfg, conn, globalInit,
//	    shardstate.WithMetrics(collector),
//	)
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}
