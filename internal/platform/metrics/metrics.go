// Package metrics holds the Prometheus instruments for proofing runs. All
// recording methods are nil-safe so components can run without metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Vendor stage latency by flow, stage and vendor
	StageDuration *prometheus.HistogramVec

	// Stage outcomes: success, failure, error
	StageOutcomes *prometheus.CounterVec

	// Retries by operation (vendor stage or callback)
	Retries *prometheus.CounterVec

	// Callback deliveries by result: delivered, rejected, failed
	Deliveries *prometheus.CounterVec

	// Invocations by flow and result
	Invocations *prometheus.CounterVec
}

// New creates and registers all metrics with reg. A nil reg registers with
// the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idproof_stage_duration_seconds",
			Help:    "Duration of proofing stages including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"flow", "stage", "vendor"}),

		StageOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_stage_outcomes_total",
			Help: "Proofing stage outcomes by flow, stage and result",
		}, []string{"flow", "stage", "result"}),

		Retries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_retries_total",
			Help: "Retried attempts after a transient failure",
		}, []string{"operation"}),

		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_callback_deliveries_total",
			Help: "Callback deliveries by result",
		}, []string{"result"}),

		Invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_invocations_total",
			Help: "Proofing invocations by flow and result",
		}, []string{"flow", "result"}),
	}
}

// ObserveStage records the duration of a stage.
func (m *Metrics) ObserveStage(flow, stage, vendor string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(flow, stage, vendor).Observe(d.Seconds())
	}
}

// IncrementStageOutcome records a stage result.
func (m *Metrics) IncrementStageOutcome(flow, stage, result string) {
	if m != nil {
		m.StageOutcomes.WithLabelValues(flow, stage, result).Inc()
	}
}

// IncrementRetry records one retried attempt.
func (m *Metrics) IncrementRetry(operation string) {
	if m != nil {
		m.Retries.WithLabelValues(operation).Inc()
	}
}

// IncrementDelivery records a callback delivery result.
func (m *Metrics) IncrementDelivery(result string) {
	if m != nil {
		m.Deliveries.WithLabelValues(result).Inc()
	}
}

// IncrementInvocation records a finished invocation.
func (m *Metrics) IncrementInvocation(flow, result string) {
	if m != nil {
		m.Invocations.WithLabelValues(flow, result).Inc()
	}
}
