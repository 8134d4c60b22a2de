// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moodmate"

var (
	// FeedbackOps counts feedback operations by op and outcome.
	FeedbackOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_operations_total",
		Help:      "Feedback operations by operation and outcome",
	}, []string{"op", "outcome"})

	// QuotaDecisions counts ledger TryConsume outcomes: allowed, rejected, error.
	QuotaDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_decisions_total",
		Help:      "Daily quota consume decisions",
	}, []string{"decision"})

	AICallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ai_call_duration_seconds",
		Help:      "Latency of AI provider calls",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"call", "outcome"})

	PeriodAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "period_analyses_total",
		Help:      "Period analysis runs by outcome",
	}, []string{"outcome"})
)

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
