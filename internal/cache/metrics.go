package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsMu          sync.Mutex
	metricsInitialized bool

	hitCounter  *prometheus.CounterVec
	missCounter *prometheus.CounterVec
)

// SetupMetrics registers Prometheus counters observing listing cache traffic.
// Registration happens once; subsequent calls are ignored.
func SetupMetrics(reg prometheus.Registerer) error {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if metricsInitialized {
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mercato_listing_cache_hits_total",
		Help: "Number of cache hits for paginated listings.",
	}, []string{"collection"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mercato_listing_cache_miss_total",
		Help: "Number of cache misses for paginated listings.",
	}, []string{"collection"})
	if err := reg.Register(hits); err != nil {
		return err
	}
	if err := reg.Register(misses); err != nil {
		return err
	}
	hitCounter = hits
	missCounter = misses
	metricsInitialized = true
	return nil
}

func markHit(collection string) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if hitCounter != nil {
		hitCounter.WithLabelValues(collection).Inc()
	}
}

func markMiss(collection string) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if missCounter != nil {
		missCounter.WithLabelValues(collection).Inc()
	}
}
