// Package metrics provides Prometheus metrics collection for the answer
// service. It tracks cache effectiveness, provider spend, and store health.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts cache lookups by cache tier and result.
	// cache is "embedding" or "answer"; result is "hit" or "miss".
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerd",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache tier and result",
		},
		[]string{"cache", "result"},
	)

	// ProviderRequests counts upstream provider calls.
	// operation is "embedding" or "completion"; outcome is "ok" or "error".
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerd",
			Name:      "provider_requests_total",
			Help:      "Upstream provider calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// StoreErrors counts swallowed cache-store failures by operation.
	// Every increment is a degraded-but-successful request.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerd",
			Name:      "store_errors_total",
			Help:      "Swallowed question-cache store failures by operation",
		},
		[]string{"operation"},
	)

	// RequestLatency tracks end-to-end handler latency.
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "answerd",
			Name:      "request_latency_seconds",
			Help:      "Request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"route"},
	)

	// RequestsTotal counts requests by route and status code class.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerd",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)
)

// RecordCacheLookup records a cache hit or miss for the given tier.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordProviderRequest records an upstream provider call.
func RecordProviderRequest(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordStoreError records a swallowed store failure.
func RecordStoreError(operation string) {
	StoreErrors.WithLabelValues(operation).Inc()
}

// RecordRequest records latency and status for a completed request.
func RecordRequest(route, status string, latency time.Duration) {
	RequestsTotal.WithLabelValues(route, status).Inc()
	RequestLatency.WithLabelValues(route).Observe(latency.Seconds())
}
