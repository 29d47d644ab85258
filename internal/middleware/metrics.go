package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekantin_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "pattern", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ekantin_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "pattern"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekantin_order_operations_total",
			Help: "Order lifecycle operations by type and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	sheetSyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekantin_sheet_sync_failures_total",
			Help: "Remote sheet writes that failed and left rows pending.",
		},
		[]string{"entity", "action"},
	)
)

// Metrics records request counts and latency per route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

// RecordOrderOperation counts checkout and status-change outcomes.
func RecordOrderOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	orderOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordSyncFailure counts a remote write that fell back to pending_sync.
func RecordSyncFailure(entity, action string) {
	sheetSyncFailures.WithLabelValues(entity, action).Inc()
}
