package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// NotificationsTotal counts finished notification attempts by outcome ("sent"/"failed")
	// and error kind (empty on success).
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_total", Help: "Lead alert notifications by outcome"},
		[]string{"outcome", "kind"},
	)
	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_duration_seconds",
			Help:    "Time spent waiting on the messaging provider",
			Buckets: prometheus.DefBuckets,
		},
	)
	NotificationsEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_enqueued_total", Help: "Lead alerts handed to a background dispatcher"},
		[]string{"dispatcher"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration,
		NotificationsTotal, DispatchDuration, NotificationsEnqueued,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
