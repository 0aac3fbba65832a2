// Package metrics defines the Prometheus collectors exported on /metrics.
// Collectors register with the default registry on package load.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "request_routing"

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests by chi route pattern.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status code.",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Identity ──────────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts logins. Label result: success, invalid_credentials,
// unresolved_role, store_unavailable, invalid_input.
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RoleFallbackTotal counts role strings that matched no keyword group.
var RoleFallbackTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_resolution_fallback_total",
		Help:      "Total number of role strings resolved by the employee fallback.",
	},
)

// ── Requests ──────────────────────────────────────────────────────────────────

var RequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Total number of requests created, by canonical target department.",
	},
	[]string{"target_department"},
)

var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of applied status transitions.",
	},
	[]string{"from", "to"},
)

var TransitionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_rejected_total",
		Help:      "Total number of status transitions refused by the state machine.",
	},
	[]string{"from", "to"},
)

var ExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of spreadsheet exports, by result.",
	},
	[]string{"result"},
)

// ── Collaborators ─────────────────────────────────────────────────────────────

// ChatbotCallsTotal counts upstream chat completion calls. Label result: ok,
// timeout, error, empty.
var ChatbotCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chatbot_calls_total",
		Help:      "Total number of chatbot upstream calls, by result.",
	},
	[]string{"result"},
)

var ChatbotLatency = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chatbot_latency_seconds",
		Help:      "Latency of chatbot upstream calls.",
		Buckets:   []float64{.25, .5, 1, 2, 4, 8, 15},
	},
)

var MirrorWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mirror_writes_total",
		Help:      "Total number of spreadsheet mirror rewrites, by result.",
	},
	[]string{"result"},
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records HTTPRequestsTotal and HTTPRequestDuration using the
// matched chi route pattern so path parameters do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
