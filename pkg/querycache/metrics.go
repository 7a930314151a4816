package querycache

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	lookups       *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	subscribers   *prometheus.GaugeVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "querycache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result (hit/miss).",
		}, []string{"cache", "result"}),
		fetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "querycache",
			Name:      "fetches_total",
			Help:      "Fetches issued to the data source by result.",
		}, []string{"cache", "result"}),
		invalidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "querycache",
			Name:      "invalidations_total",
			Help:      "Key invalidations by origin (local/remote).",
		}, []string{"cache", "origin"}),
		fetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "querycache",
			Name:      "fetch_latency_seconds",
			Help:      "Latency distribution of data source fetches.",
			Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
		}, []string{"cache", "result"}),
		subscribers: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "querycache",
			Name:      "subscribers",
			Help:      "Current number of key subscribers.",
		}, []string{"cache"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *metrics) observeFetch(cache string, started time.Time, err error) {
	r := result(err)
	m.fetches.WithLabelValues(cache, r).Inc()
	m.fetchLatency.WithLabelValues(cache, r).Observe(time.Since(started).Seconds())
}
