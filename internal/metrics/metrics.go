package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmtrack_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmtrack_http_errors_total",
		Help: "Total number of HTTP requests resulting in server errors.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farmtrack_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farmtrack_sessions_created_total",
		Help: "Total number of farming sessions created.",
	})

	sessionsConcluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farmtrack_sessions_concluded_total",
		Help: "Total number of farming sessions concluded.",
	})

	contactMessagesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farmtrack_contact_messages_submitted_total",
		Help: "Total number of contact messages accepted.",
	})

	contactMessagesThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farmtrack_contact_messages_throttled_total",
		Help: "Total number of contact messages rejected by the daily limit.",
	})
)

// Middleware records per-route request counts and latencies.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			status := ww.Status()
			statusCode := strconv.Itoa(status)
			duration := time.Since(start).Seconds()

			httpRequestsTotal.WithLabelValues(r.Method, route).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route, statusCode).Observe(duration)
			if status >= http.StatusInternalServerError {
				httpErrorsTotal.WithLabelValues(r.Method, route, statusCode).Inc()
			}
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func SessionCreated()          { sessionsCreated.Inc() }
func SessionConcluded()        { sessionsConcluded.Inc() }
func ContactMessageSubmitted() { contactMessagesSubmitted.Inc() }
func ContactMessageThrottled() { contactMessagesThrottled.Inc() }

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
