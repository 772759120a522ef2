// Package metrics provides Prometheus metrics for status lists.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Toggle directions.
const (
	DirectionSet   = "set"
	DirectionUnset = "unset"
)

// Metrics contains all status list metrics.
type Metrics struct {
	ListsCreatedTotal *prometheus.CounterVec // Lists created by purpose
	TogglesTotal      *prometheus.CounterVec // Entry toggles by purpose and direction
	ReadsTotal        *prometheus.CounterVec // Entry reads by purpose
	FailuresTotal     *prometheus.CounterVec // Rejected operations by operation and reason

	StoreOperationDurationSeconds *prometheus.HistogramVec // Store latency by operation

	ListsByPurpose *prometheus.GaugeVec // Current number of lists by purpose
}

// New creates a Metrics instance registered with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a Metrics instance registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ListsCreatedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statusreg_lists_created_total",
			Help: "Total number of status lists created by purpose",
		}, []string{"purpose"}),

		TogglesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statusreg_entry_toggles_total",
			Help: "Total number of status list entry toggles by purpose and resulting direction",
		}, []string{"purpose", "direction"}),

		ReadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statusreg_entry_reads_total",
			Help: "Total number of status list entry reads by purpose",
		}, []string{"purpose"}),

		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statusreg_operation_failures_total",
			Help: "Total number of rejected status list operations by operation and reason",
		}, []string{"operation", "reason"}),

		StoreOperationDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statusreg_store_operation_duration_seconds",
			Help:    "Duration of status list store operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"operation"}),

		ListsByPurpose: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "statusreg_lists",
			Help: "Current number of status lists by purpose",
		}, []string{"purpose"}),
	}
}

// IncListCreated records a successful create.
func (m *Metrics) IncListCreated(purpose string) {
	m.ListsCreatedTotal.WithLabelValues(purpose).Inc()
}

// IncToggle records a toggle; set reports the entry's value after the toggle.
func (m *Metrics) IncToggle(purpose string, set bool) {
	direction := DirectionUnset
	if set {
		direction = DirectionSet
	}
	m.TogglesTotal.WithLabelValues(purpose, direction).Inc()
}

// IncRead records a successful read.
func (m *Metrics) IncRead(purpose string) {
	m.ReadsTotal.WithLabelValues(purpose).Inc()
}

// IncFailure records a rejected operation.
func (m *Metrics) IncFailure(operation, reason string) {
	m.FailuresTotal.WithLabelValues(operation, reason).Inc()
}

// ObserveStoreOperation records the latency of a store call started at start.
func (m *Metrics) ObserveStoreOperation(operation string, start time.Time) {
	m.StoreOperationDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SetListsByPurpose updates the per-purpose gauge.
func (m *Metrics) SetListsByPurpose(counts map[string]int) {
	for purpose, n := range counts {
		m.ListsByPurpose.WithLabelValues(purpose).Set(float64(n))
	}
}
