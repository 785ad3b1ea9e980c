package daemon

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the daemon.
type Metrics struct {
	ActivationsTotal   *prometheus.CounterVec
	ToolCallsTotal     *prometheus.CounterVec
	ResourceReadsTotal *prometheus.CounterVec
	RegisteredTypes    prometheus.Gauge
}

// NewMetrics creates and registers Prometheus metrics for the daemon.
//
// This function uses sync.Once to ensure metrics are only registered once
// globally, preventing "duplicate metrics collector registration" panics
// when tests construct several daemons in one process.
//
// All metrics are prefixed with "mcpd_" for namespacing.
//
// Metrics:
//   - mcpd_activations_total{transport} - Count of activation decisions
//   - mcpd_tool_calls_total{tool} - Count of MCP tool invocations
//   - mcpd_resource_reads_total{uri} - Count of MCP resource reads
//   - mcpd_registered_types - Protocol types registered for reflective access
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ActivationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "mcpd_activations_total",
					Help: "Total number of transport activation decisions",
				},
				[]string{"transport"}, // "http", "stdio", or "none"
			),

			ToolCallsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "mcpd_tool_calls_total",
					Help: "Total number of MCP tool invocations",
				},
				[]string{"tool"},
			),

			ResourceReadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "mcpd_resource_reads_total",
					Help: "Total number of MCP resource reads",
				},
				[]string{"uri"},
			),

			RegisteredTypes: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "mcpd_registered_types",
					Help: "Number of protocol types registered for reflective access",
				},
			),
		}
	})

	return globalMetrics
}

// RecordActivation records a transport activation decision.
func (m *Metrics) RecordActivation(transport string) {
	m.ActivationsTotal.WithLabelValues(transport).Inc()
}

// RecordToolCall records an MCP tool invocation.
func (m *Metrics) RecordToolCall(tool string) {
	m.ToolCallsTotal.WithLabelValues(tool).Inc()
}

// RecordResourceRead records an MCP resource read.
func (m *Metrics) RecordResourceRead(uri string) {
	m.ResourceReadsTotal.WithLabelValues(uri).Inc()
}

// SetRegisteredTypes updates the registered type count gauge.
func (m *Metrics) SetRegisteredTypes(n int) {
	m.RegisteredTypes.Set(float64(n))
}
