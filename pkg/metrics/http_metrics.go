package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orgchart_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orgchart_http_requests_total",
			Help: "HTTP request count by route and status.",
		},
		[]string{"route", "method", "status"},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestMetrics records per-route latency and counts. Route labels use the
// mux template so cardinality stays bounded.
func RequestMetrics() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			status := strconv.Itoa(recorder.status)
			requestDuration.WithLabelValues(route, r.Method, status).Observe(time.Since(start).Seconds())
			requestsTotal.WithLabelValues(route, r.Method, status).Inc()
		})
	}
}
