package rickmorty

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for upstream API traffic.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	CacheSize        prometheus.Gauge
}

// NewMetrics registers the client metrics once per process and returns them.
//
// Metrics:
//   - rmwiki_upstream_requests_total{endpoint,outcome}
//   - rmwiki_upstream_request_duration_seconds{endpoint}
//   - rmwiki_upstream_cache_hits_total
//   - rmwiki_upstream_cache_misses_total
//   - rmwiki_upstream_cache_size
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rmwiki_upstream_requests_total",
					Help: "Requests sent to the Rick and Morty API",
				},
				[]string{"endpoint", "outcome"}, // outcome: ok, transport, status, decode
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "rmwiki_upstream_request_duration_seconds",
					Help:    "Latency of Rick and Morty API requests",
					Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
				},
				[]string{"endpoint"},
			),
			CacheHitsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "rmwiki_upstream_cache_hits_total",
					Help: "Upstream responses served from cache",
				},
			),
			CacheMissesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "rmwiki_upstream_cache_misses_total",
					Help: "Upstream lookups not found in cache",
				},
			),
			CacheSize: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "rmwiki_upstream_cache_size",
					Help: "Entries currently held in the response cache",
				},
			),
		}
	})

	return globalMetrics
}

// RecordRequest records one upstream request.
func (m *Metrics) RecordRequest(endpoint, outcome string, seconds float64) {
	m.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) SetCacheSize(size int) {
	m.CacheSize.Set(float64(size))
}
