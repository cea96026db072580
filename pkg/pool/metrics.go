package pool

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "settemplatesync_client",
			Name:      "requests_total",
			Help:      "Requests issued by a client pool, by backend and status code (0 on transport error).",
		},
		[]string{"backend", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "settemplatesync_client",
			Name:      "request_duration_seconds",
			Help:      "Wall time of pooled requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
)

// Observe records one finished request. code is 0 when the request failed
// before a response arrived.
func Observe(backend string, code int, started time.Time) {
	requestsTotal.WithLabelValues(backend, strconv.Itoa(code)).Inc()
	requestDuration.WithLabelValues(backend).Observe(time.Since(started).Seconds())
}

// RequestsTotal exposes the request counter for a backend/code pair.
func RequestsTotal(backend string, code int) prometheus.Counter {
	return requestsTotal.WithLabelValues(backend, strconv.Itoa(code))
}
