package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djforge_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "djforge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CommandsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djforge_commands_processed_total",
			Help: "Total number of processed commands by resolved intent and status.",
		},
		[]string{"intent", "status"},
	)

	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djforge_intent_validation_failures_total",
			Help: "Total number of interpretations rejected after normalize and repair.",
		},
		[]string{"code"},
	)

	ConfirmationsRequiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "djforge_confirmations_required_total",
			Help: "Total number of low-confidence destructive intents gated for confirmation.",
		},
	)

	ContextEntriesSelected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "djforge_context_entries_selected",
			Help:    "Number of history entries selected as model context per command.",
			Buckets: []float64{0, 1, 2},
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CommandsProcessedTotal,
		ValidationFailuresTotal,
		ConfirmationsRequiredTotal,
		ContextEntriesSelected,
	)
}
