package authz

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var useMetrics = sync.OnceValue(func() *metrics {
	return &metrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authz",
			Name:      "requests_total",
			Help:      "Total number of authorization evaluations broken down by mode and result.",
		}, []string{"mode", "result"}),
		latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "authz",
			Name:      "latency_seconds",
			Help:      "Latency distribution for authorization evaluations.",
			Buckets: []float64{
				0.0005, 0.001, 0.002, 0.005,
				0.01, 0.02, 0.05, 0.1,
			},
		}, []string{"mode", "result"}),
	}
})

func recordMetrics(mode Mode, allowed bool, latency time.Duration) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	labels := prometheus.Labels{
		"mode":   string(mode),
		"result": result,
	}
	m := useMetrics()
	m.requests.With(labels).Inc()
	m.latency.With(labels).Observe(latency.Seconds())
}
