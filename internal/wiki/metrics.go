package wiki

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics counts loader outcomes.
type Metrics struct {
	CallsTotal *prometheus.CounterVec
	InFlight   prometheus.Gauge
}

// NewMetrics registers loader metrics once per process.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			CallsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rmwiki_loader_calls_total",
					Help: "Loader calls by operation and result kind",
				},
				[]string{"operation", "kind"},
			),
			InFlight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "rmwiki_loader_in_flight",
					Help: "Loader calls currently waiting on the upstream",
				},
			),
		}
	})
	return globalMetrics
}

func (m *Metrics) record(operation string, kind Kind) {
	m.CallsTotal.WithLabelValues(operation, kind.String()).Inc()
}
