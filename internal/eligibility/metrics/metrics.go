package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the eligibility module. All methods are
// nil-safe so components can run without metrics in tests.
type Metrics struct {
	// Full evaluation cycle latency (load + pure evaluation).
	EvaluateLatency prometheus.Histogram

	// Product outcomes per evaluation cycle.
	Outcomes *prometheus.CounterVec

	// Score movements forwarded to the change sink.
	ChangesEmitted prometheus.Counter

	// Submissions waiting across all subject queues.
	QueueDepth prometheus.Gauge

	// Submissions rejected by the bounded queue.
	QueueRejections prometheus.Counter

	// Rules excluded from scoring for structural reasons.
	MalformedRules prometheus.Counter
}

// New creates and registers all eligibility metrics.
func New() *Metrics {
	return &Metrics{
		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "profitum_eligibility_evaluate_duration_seconds",
			Help:    "Duration of a full eligibility evaluation cycle",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "profitum_eligibility_outcomes_total",
			Help: "Product eligibility outcomes by product and result",
		}, []string{"product", "eligible"}),
		ChangesEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "profitum_eligibility_changes_total",
			Help: "Score changes forwarded to the change sink",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "profitum_eligibility_queue_depth",
			Help: "Submissions pending across all subject queues",
		}),
		QueueRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "profitum_eligibility_queue_rejections_total",
			Help: "Submissions rejected because a subject queue was full",
		}),
		MalformedRules: promauto.NewCounter(prometheus.CounterOpts{
			Name: "profitum_eligibility_malformed_rules_total",
			Help: "Rules excluded from scoring for structural reasons",
		}),
	}
}

// ObserveEvaluateLatency records the duration of one evaluation cycle.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncOutcome records one product outcome.
func (m *Metrics) IncOutcome(product string, eligible bool) {
	if m != nil {
		label := "false"
		if eligible {
			label = "true"
		}
		m.Outcomes.WithLabelValues(product, label).Inc()
	}
}

// AddChanges records score changes forwarded downstream.
func (m *Metrics) AddChanges(n int) {
	if m != nil && n > 0 {
		m.ChangesEmitted.Add(float64(n))
	}
}

// QueueDelta adjusts the global pending-submission gauge.
func (m *Metrics) QueueDelta(n int) {
	if m != nil {
		m.QueueDepth.Add(float64(n))
	}
}

// IncQueueRejection records a rejected submission.
func (m *Metrics) IncQueueRejection() {
	if m != nil {
		m.QueueRejections.Inc()
	}
}

// IncMalformedRule records a rule excluded from scoring.
func (m *Metrics) IncMalformedRule() {
	if m != nil {
		m.MalformedRules.Inc()
	}
}
