// Package metrics exposes Prometheus instrumentation for the service: upload
// and ingest counters, analytics counters, and HTTP request metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors behind a dedicated
// registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	UploadsTotal      *prometheus.CounterVec
	RowsStoredTotal   prometheus.Counter
	AnomalyFlagsTotal prometheus.Counter
	AssistantCalls    *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uidpulse_uploads_total",
			Help: "Number of dataset uploads by outcome.",
		}, []string{"status"}),
		RowsStoredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uidpulse_rows_stored_total",
			Help: "Number of enrolment records written to the store.",
		}),
		AnomalyFlagsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uidpulse_anomaly_flags_total",
			Help: "Number of anomaly flags raised by detection runs.",
		}),
		AssistantCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uidpulse_assistant_calls_total",
			Help: "Number of assistant code generation calls by outcome.",
		}, []string{"status"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uidpulse_http_requests_total",
			Help: "Number of HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uidpulse_http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		m.UploadsTotal,
		m.RowsStoredTotal,
		m.AnomalyFlagsTotal,
		m.AssistantCalls,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler to record request counts and latency.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.ObserveRequest(r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
