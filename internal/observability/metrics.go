package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the insurance engine.
type Metrics struct {
	PoliciesPurchased prometheus.Counter
	PoliciesExpired   prometheus.Counter
	PoliciesCancelled prometheus.Counter
	ClaimsPaid        prometheus.Counter
	ClaimsRejected    prometheus.Counter
	ReadingsSubmitted prometheus.Counter

	// Pool metrics, set from engine stats after each mutating operation.
	TotalLiquidity prometheus.Gauge
	ReservedFunds  prometheus.Gauge
	TotalShares    prometheus.Gauge
	ActivePolicies prometheus.Gauge

	PayoutAmount *prometheus.CounterVec // labels: kind={claim,refund,withdrawal,protocol_fees}
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PoliciesPurchased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathercover",
			Name:      "policies_purchased_total",
			Help:      "Total policies sold.",
		}),
		PoliciesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathercover",
			Name:      "policies_expired_total",
			Help:      "Total policies settled as expired without a claim.",
		}),
		PoliciesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathercover",
			Name:      "policies_cancelled_total",
			Help:      "Total policies cancelled by their holders.",
		}),
		ClaimsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathercover",
			Name:      "claims_paid_total",
			Help:      "Total claims that triggered and paid out.",
		}),
		ClaimsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathercover",
			Name:      "claims_rejected_total",
			Help:      "Total claim attempts rejected because conditions were not met.",
		}),
		ReadingsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathercover",
			Name:      "readings_submitted_total",
			Help:      "Total weather readings accepted from the data authority.",
		}),
		TotalLiquidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weathercover",
			Name:      "pool_total_liquidity",
			Help:      "Current share-backed liquidity in the pool.",
		}),
		ReservedFunds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weathercover",
			Name:      "pool_reserved_funds",
			Help:      "Coverage reserved for active policies.",
		}),
		TotalShares: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weathercover",
			Name:      "pool_total_shares",
			Help:      "Total LP shares outstanding.",
		}),
		ActivePolicies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weathercover",
			Name:      "active_policies",
			Help:      "Number of policies currently active.",
		}),
		PayoutAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weathercover",
			Name:      "payout_amount_total",
			Help:      "Funds paid out of the pool by kind.",
		}, []string{"kind"}),
	}

	prometheus.MustRegister(
		m.PoliciesPurchased,
		m.PoliciesExpired,
		m.PoliciesCancelled,
		m.ClaimsPaid,
		m.ClaimsRejected,
		m.ReadingsSubmitted,
		m.TotalLiquidity,
		m.ReservedFunds,
		m.TotalShares,
		m.ActivePolicies,
		m.PayoutAmount,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PoliciesPurchased: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathercover", Name: "policies_purchased_total"}),
		PoliciesExpired:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathercover", Name: "policies_expired_total"}),
		PoliciesCancelled: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathercover", Name: "policies_cancelled_total"}),
		ClaimsPaid:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathercover", Name: "claims_paid_total"}),
		ClaimsRejected:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathercover", Name: "claims_rejected_total"}),
		ReadingsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathercover", Name: "readings_submitted_total"}),
		TotalLiquidity:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weathercover", Name: "pool_total_liquidity"}),
		ReservedFunds:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weathercover", Name: "pool_reserved_funds"}),
		TotalShares:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weathercover", Name: "pool_total_shares"}),
		ActivePolicies:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weathercover", Name: "active_policies"}),
		PayoutAmount:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weathercover", Name: "payout_amount_total"}, []string{"kind"}),
	}
}

// SetPoolGauges updates the pool gauges from current engine stats.
func (m *Metrics) SetPoolGauges(totalLiquidity, reservedFunds, totalShares float64, activePolicies int) {
	m.TotalLiquidity.Set(totalLiquidity)
	m.ReservedFunds.Set(reservedFunds)
	m.TotalShares.Set(totalShares)
	m.ActivePolicies.Set(float64(activePolicies))
}
