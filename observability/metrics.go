package observability

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// RouterMetrics records settlement activity for the Prometheus endpoint.
type RouterMetrics struct {
	settlements     *prometheus.CounterVec
	feeAccrued      *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	receiveRejected prometheus.Counter
}

var (
	routerMetricsOnce sync.Once
	routerRegistry    *RouterMetrics
)

// Metrics returns the lazily-initialised router metrics registry.
func Metrics() *RouterMetrics {
	routerMetricsOnce.Do(func() {
		routerRegistry = &RouterMetrics{
			settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "swaprouter",
				Subsystem: "engine",
				Name:      "settlements_total",
				Help:      "Total settlement attempts segmented by fill shape and outcome.",
			}, []string{"shape", "outcome"}),
			feeAccrued: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "swaprouter",
				Subsystem: "engine",
				Name:      "fee_accrued_total",
				Help:      "Protocol fees retained in custody, segmented by sell asset.",
			}, []string{"asset"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "swaprouter",
				Subsystem: "engine",
				Name:      "settlement_seconds",
				Help:      "Settlement latency segmented by fill shape.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"shape"}),
			receiveRejected: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "swaprouter",
				Subsystem: "engine",
				Name:      "receive_rejected_total",
				Help:      "Unsolicited native transfers rejected by the receive guard.",
			}),
		}
		prometheus.MustRegister(
			routerRegistry.settlements,
			routerRegistry.feeAccrued,
			routerRegistry.latency,
			routerRegistry.receiveRejected,
		)
	})
	return routerRegistry
}

// ObserveSettlement records one settlement attempt.
func (m *RouterMetrics) ObserveSettlement(shape, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(shape, outcome).Inc()
	m.latency.WithLabelValues(shape).Observe(seconds)
}

// AddFee records retained fees for an asset. Values beyond float precision
// saturate rather than error; the counter is operational, not accounting.
func (m *RouterMetrics) AddFee(asset string, fee *big.Int) {
	if m == nil || fee == nil || fee.Sign() <= 0 {
		return
	}
	value, _ := new(big.Float).SetInt(fee).Float64()
	m.feeAccrued.WithLabelValues(asset).Add(value)
}

// ReceiveRejected counts a receive-guard rejection.
func (m *RouterMetrics) ReceiveRejected() {
	if m == nil {
		return
	}
	m.receiveRejected.Inc()
}
