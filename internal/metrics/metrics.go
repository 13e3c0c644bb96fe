// Package metrics exposes Prometheus instrumentation for the edge router.
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
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sandstack",
		Name:      "requests_total",
		Help:      "Requests handled by the edge router, by service and status code.",
	}, []string{"service", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sandstack",
		Name:      "request_duration_seconds",
		Help:      "Request handling latency by service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service"})
)

// ObserveRequest records one handled request.
func ObserveRequest(service string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(service, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
