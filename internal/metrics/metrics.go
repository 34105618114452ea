package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the dashboard's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "route"},
	)

	toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "tools",
			Name:      "submissions_total",
			Help:      "Tool submissions by outcome (success, error, busy, no_credits, invalid).",
		},
		[]string{"tool", "outcome"},
	)

	checkoutStages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "checkout",
			Name:      "stages_total",
			Help:      "Checkout stage results.",
		},
		[]string{"stage", "outcome"},
	)

	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state changes by resulting status.",
		},
		[]string{"status"},
	)

	workspaces = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dashboard",
			Subsystem: "workspace",
			Name:      "active",
			Help:      "Workspaces currently held in memory.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		toolCalls,
		checkoutStages,
		sessionTransitions,
		workspaces,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request counts and latency keyed by chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordTool counts one tool submission outcome.
func RecordTool(tool, outcome string) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordCheckout counts one checkout stage result.
func RecordCheckout(stage string, ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	checkoutStages.WithLabelValues(stage, outcome).Inc()
}

// RecordSession counts a session transition.
func RecordSession(status string) {
	sessionTransitions.WithLabelValues(status).Inc()
}

// SetWorkspaces reports the number of live workspaces.
func SetWorkspaces(n int) {
	workspaces.Set(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
