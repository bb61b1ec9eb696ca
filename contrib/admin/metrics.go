package admin

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics instruments the autocomplete endpoint.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cacheHit prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veloxext",
			Subsystem: "autocomplete",
			Name:      "requests_total",
			Help:      "Autocomplete requests by model and status code.",
		}, []string{"model", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "veloxext",
			Subsystem: "autocomplete",
			Name:      "request_duration_seconds",
			Help:      "Autocomplete request latency by model.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model"}),
		cacheHit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "veloxext",
			Subsystem: "autocomplete",
			Name:      "cache_hits_total",
			Help:      "Searches answered from the result cache.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.cacheHit)
	return m
}

func (m *metrics) observe(model string, code int, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(model, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(model).Observe(time.Since(start).Seconds())
}

func (m *metrics) hit() {
	if m != nil {
		m.cacheHit.Inc()
	}
}
