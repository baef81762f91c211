package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// GenerationTotal counts content generations by content type (lesson, quiz,
	// feedback) and outcome (ok, error).
	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_generations_total",
			Help: "Total number of AI content generations by type and outcome",
		},
		[]string{"content_type", "outcome"},
	)

	// ExternalCallDuration tracks outbound API call duration by provider (openai, youtube).
	ExternalCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_api_call_duration_seconds",
			Help:    "Outbound API call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "outcome"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, GenerationTotal, ExternalCallDuration)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /ai/search-history/123 -> /ai/search-history/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordGeneration increments the generation counter for a content type.
func RecordGeneration(contentType string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	GenerationTotal.WithLabelValues(contentType, outcome).Inc()
}

// RecordExternalCall records one outbound API call's duration.
func RecordExternalCall(provider string, durationSeconds float64, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	ExternalCallDuration.WithLabelValues(provider, outcome).Observe(durationSeconds)
}
