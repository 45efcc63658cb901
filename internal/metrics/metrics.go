package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaurant_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restaurant_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	orderOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaurant_order_operations_total",
			Help: "Order service operations by result.",
		},
		[]string{"operation", "result"},
	)

	websocketSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "restaurant_websocket_subscribers",
			Help: "Currently connected WebSocket subscribers.",
		},
	)

	outboxPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaurant_outbox_messages_total",
			Help: "Outbox messages processed by result.",
		},
		[]string{"result"},
	)
)

// RecordOrderOperation counts one order service call.
func RecordOrderOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	orderOperationsTotal.WithLabelValues(operation, result).Inc()
}

// SubscriberConnected and SubscriberDisconnected track live WebSocket viewers.
func SubscriberConnected() { websocketSubscribers.Inc() }

func SubscriberDisconnected() { websocketSubscribers.Dec() }

// RecordOutbox counts one outbox delivery attempt.
func RecordOutbox(err error) {
	result := "published"
	if err != nil {
		result = "failed"
	}
	outboxPublishedTotal.WithLabelValues(result).Inc()
}

// NewMetricsMiddleware records request count and latency per chi route pattern.
func NewMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
