package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	proofsTotal         *prometheus.CounterVec
	fallbacksTotal      *prometheus.CounterVec
	reviewsTotal        *prometheus.CounterVec
	signalsTotal        *prometheus.CounterVec
	rewardPointsTotal   prometheus.Counter
	notificationsTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the API and the
// proof review pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choreboard",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "choreboard",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choreboard",
			Name:      "http_errors_total",
			Help:      "Total number of error responses.",
		}, []string{"method", "route", "status"})

		proofsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choreboard",
			Subsystem: "pipeline",
			Name:      "proofs_submitted_total",
			Help:      "Proof submissions accepted by intake.",
		}, []string{"category"})

		fallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choreboard",
			Subsystem: "pipeline",
			Name:      "evaluation_fallbacks_total",
			Help:      "Automated evaluations that fell back to the safe verdict.",
		}, []string{"category"})

		reviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choreboard",
			Subsystem: "pipeline",
			Name:      "review_decisions_total",
			Help:      "Human review decisions applied.",
		}, []string{"decision"})

		signalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choreboard",
			Subsystem: "pipeline",
			Name:      "feedback_signals_total",
			Help:      "Feedback signals recorded, by classification.",
		}, []string{"classification"})

		rewardPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "choreboard",
			Subsystem: "pipeline",
			Name:      "reward_points_total",
			Help:      "Cumulative reward points issued.",
		})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "choreboard",
			Name:      "notifications_published_total",
			Help:      "Notifications fanned out to delivery channels.",
		}, []string{"type"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			proofsTotal, fallbacksTotal, reviewsTotal, signalsTotal,
			rewardPointsTotal, notificationsTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ProofSubmissions counts one accepted proof submission.
func ProofSubmissions(category string) {
	RegisterMetrics()
	proofsTotal.WithLabelValues(category).Inc()
}

// EvaluationFallbacks counts one automated evaluation that used the fallback
// verdict.
func EvaluationFallbacks(category string) {
	RegisterMetrics()
	fallbacksTotal.WithLabelValues(category).Inc()
}

// ReviewDecisions counts one applied human review decision.
func ReviewDecisions(decision string) {
	RegisterMetrics()
	reviewsTotal.WithLabelValues(decision).Inc()
}

// FeedbackSignals counts one recorded feedback signal.
func FeedbackSignals(classification string) {
	RegisterMetrics()
	signalsTotal.WithLabelValues(classification).Inc()
}

// RewardsIssued adds the issued points to the cumulative total.
func RewardsIssued(points float64) {
	RegisterMetrics()
	if points > 0 {
		rewardPointsTotal.Add(points)
	}
}

// NotificationsPublished counts one notification fan-out of the given type.
func NotificationsPublished(notificationType string) {
	RegisterMetrics()
	notificationsTotal.WithLabelValues(notificationType).Inc()
}
