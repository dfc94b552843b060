package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pantrypairing/server/pkg/errors"
)

// Metrics handles Prometheus metrics collection. It implements the AI
// gateway and session manager recorders.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// AI gateway metrics
	aiRequestsTotal       *prometheus.CounterVec
	aiRequestDuration     *prometheus.HistogramVec
	aiRetriesTotal        *prometheus.CounterVec
	aiOCRFallbacksTotal   prometheus.Counter
	aiConformanceViolated *prometheus.CounterVec

	// Session metrics
	sessionsActive prometheus.Gauge
}

// NewMetrics registers all collectors on a fresh registry, including the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pantry_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		aiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_ai_requests_total",
				Help: "Total number of AI gateway operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		aiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pantry_ai_request_duration_seconds",
				Help:    "AI gateway operation duration in seconds, retries included",
				Buckets: []float64{0.5, 1.0, 2.0, 5.0, 10.0, 20.0, 30.0, 60.0, 120.0},
			},
			[]string{"operation"},
		),
		aiRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_ai_retries_total",
				Help: "Total number of retried model calls",
			},
			[]string{"operation"},
		),
		aiOCRFallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pantry_ai_ocr_fallbacks_total",
				Help: "Image analyses that fell back from OCR to vision input",
			},
		),
		aiConformanceViolated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pantry_ai_conformance_violations_total",
				Help: "Model responses that broke a requested cardinality or join constraint",
			},
			[]string{"operation"},
		),

		sessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pantry_sessions_active",
				Help: "Number of live sessions",
			},
		),
	}
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished gateway operation.
func (m *Metrics) ObserveRequest(op errors.Operation, outcome string, duration time.Duration) {
	m.aiRequestsTotal.WithLabelValues(string(op), outcome).Inc()
	m.aiRequestDuration.WithLabelValues(string(op)).Observe(duration.Seconds())
}

// IncRetry counts a retried model call.
func (m *Metrics) IncRetry(op errors.Operation) {
	m.aiRetriesTotal.WithLabelValues(string(op)).Inc()
}

// IncOCRFallback counts an OCR to vision fallback.
func (m *Metrics) IncOCRFallback() {
	m.aiOCRFallbacksTotal.Inc()
}

// AddConformanceViolations counts contract violations in one response.
func (m *Metrics) AddConformanceViolations(op errors.Operation, n int) {
	m.aiConformanceViolated.WithLabelValues(string(op)).Add(float64(n))
}

// SetActiveSessions updates the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.sessionsActive.Set(float64(n))
}

// HTTPMiddleware records request count and latency labelled by chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
