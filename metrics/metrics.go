package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cms_http_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_mutations_total",
		Help: "Successful content mutations by entity type and action",
	}, []string{"entity", "action"})

	AuditWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_audit_write_failures_total",
		Help: "Audit entries that could not be written after a successful mutation",
	}, []string{"entity", "action"})
)

func ObserveHTTP(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
