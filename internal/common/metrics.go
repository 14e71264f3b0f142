package common

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	accessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_access_decisions_total",
			Help: "Entity access decisions by namespace and outcome.",
		},
		[]string{"namespace", "outcome"},
	)

	routeRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_route_rebuilds_total",
			Help: "Number of route table rebuilds by namespace.",
		},
		[]string{"namespace"},
	)

	policySavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_policy_saves_total",
			Help: "Saved gateway settings by setting name.",
		},
		[]string{"setting"},
	)

	registerMetricsOnce sync.Once
)

// InitMetrics registers the gateway collectors with the default registry.
// Safe to call more than once.
func InitMetrics() {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, accessDecisionsTotal, routeRebuildsTotal, policySavesTotal)
	})
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// InstrumentHTTP records request count and latency labelled with the chi
// route pattern, keeping entity ids out of the label values.
func InstrumentHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

// RecordAccessDecision counts one entity access decision.
func RecordAccessDecision(namespace string, outcome string) {
	accessDecisionsTotal.WithLabelValues(namespace, outcome).Inc()
}

// RecordRouteRebuild counts one route table rebuild.
func RecordRouteRebuild(namespace string) {
	routeRebuildsTotal.WithLabelValues(namespace).Inc()
}

// RecordPolicySave counts one saved setting.
func RecordPolicySave(setting string) {
	policySavesTotal.WithLabelValues(setting).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
