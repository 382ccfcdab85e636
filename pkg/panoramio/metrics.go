package panoramio

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes
const (
	outcomeOK        = "ok"
	outcomeStatus    = "status"
	outcomeTransport = "transport"
	outcomeDecode    = "decode"
	outcomeCacheHit  = "cache_hit"
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "panoramio_requests_total",
			Help: "Photo search requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "panoramio_request_duration_seconds",
			Help:    "Round trip time of photo search requests that reached the network.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.requests = registerOrReuse(reg, m.requests)
	m.duration = registerOrReuse(reg, m.duration)
	return m
}

// registerOrReuse lets several clients share one registry
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *clientMetrics) observe(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	if outcome != outcomeCacheHit {
		m.duration.Observe(time.Since(started).Seconds())
	}
}
