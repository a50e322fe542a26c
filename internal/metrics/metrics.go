// Package metrics exposes Prometheus collectors for the menubase emulator.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the emulator's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "menubase",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "menubase",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "menubase",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	uploadedBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "menubase",
			Subsystem: "storage",
			Name:      "uploaded_bytes_total",
			Help:      "Total bytes stored in buckets, by MIME type.",
		},
		[]string{"mime_type"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		uploadedBytes,
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordUpload counts a stored file.
func RecordUpload(mimeType string, size int64) {
	if mimeType == "" {
		mimeType = "unknown"
	}
	uploadedBytes.WithLabelValues(mimeType).Add(float64(size))
}

// Instrument returns middleware that records request counts and latency.
// Scrapes of /metrics itself are not counted.
func Instrument() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.Inc()
			defer httpInFlight.Dec()

			next.ServeHTTP(rec, r)

			path := CanonicalPath(r.URL.Path)
			method := strings.ToUpper(r.Method)
			httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
			httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// idParents are the path segments followed by a caller-chosen identifier.
var idParents = map[string]bool{
	"databases":   true,
	"collections": true,
	"documents":   true,
	"buckets":     true,
	"files":       true,
}

// CanonicalPath replaces identifiers in path with ":id" to keep label
// cardinality bounded.
func CanonicalPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 1; i < len(parts); i++ {
		if idParents[parts[i-1]] {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
