package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Escrow operation outcomes.
	EscrowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_operations_total",
			Help: "Total number of escrow engine operations",
		},
		[]string{"operation", "outcome"}, // outcome: ok, error
	)

	// Events persisted into the audit journal.
	EventsJournaled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_events_journaled_total",
			Help: "Total number of escrow events written to the journal",
		},
		[]string{"event_type"},
	)

	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordOperation counts one engine operation and whether it succeeded.
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EscrowOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordEventJournaled counts one journaled event.
func RecordEventJournaled(eventType string) {
	EventsJournaled.WithLabelValues(eventType).Inc()
}

// RecordHTTPRequest records one request's latency.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
