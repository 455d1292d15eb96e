package mocknode

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Requests  *prometheus.CounterVec
	Unmatched prometheus.Counter
}

// NewMetrics registers the mock node counters with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nano_mock_requests_total",
			Help: "Requests answered from a fixture, by action",
		}, []string{"action"}),
		Unmatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "nano_mock_unmatched_total",
			Help: "Requests no fixture matched",
		}),
	}
}
