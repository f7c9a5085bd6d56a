package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stake pool metrics collector.

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all stake pool engine metrics.
type Collector struct {
	// Operation counters
	DepositsTotal    prometheus.Counter
	WithdrawalsTotal prometheus.Counter
	RebalancesTotal  *prometheus.CounterVec
	ListUpdatesTotal prometheus.Counter
	PoolUpdatesTotal prometheus.Counter

	// Value counters
	DepositedLamports prometheus.Counter
	WithdrawnLamports prometheus.Counter
	FeeTokensMinted   prometheus.Counter

	// Pool state gauges
	TotalStakeLamports prometheus.Gauge
	PoolTokenSupply    prometheus.Gauge
	ValidatorCount     prometheus.Gauge

	// Update pass latency
	UpdateDuration prometheus.Histogram
}

// NewCollector creates a collector registered against the given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		DepositsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stakepool", Name: "deposits_total",
			Help: "Number of stake deposits processed",
		}),
		WithdrawalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stakepool", Name: "withdrawals_total",
			Help: "Number of stake withdrawals processed",
		}),
		RebalancesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stakepool", Name: "rebalances_total",
			Help: "Number of validator stake rebalances by direction",
		}, []string{"direction"}),
		ListUpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stakepool", Name: "list_updates_total",
			Help: "Number of validator list balance update calls",
		}),
		PoolUpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stakepool", Name: "pool_updates_total",
			Help: "Number of pool balance updates",
		}),
		DepositedLamports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stakepool", Name: "deposited_lamports_total",
			Help: "Total lamports deposited into pools",
		}),
		WithdrawnLamports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stakepool", Name: "withdrawn_lamports_total",
			Help: "Total lamports withdrawn from pools",
		}),
		FeeTokensMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stakepool", Name: "fee_tokens_minted_total",
			Help: "Total pool tokens minted as manager fees",
		}),
		TotalStakeLamports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stakepool", Name: "total_stake_lamports",
			Help: "Cached total stake under management",
		}),
		PoolTokenSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stakepool", Name: "pool_token_supply",
			Help: "Cached pool token supply",
		}),
		ValidatorCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stakepool", Name: "validator_count",
			Help: "Number of validators tracked in the list",
		}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stakepool", Name: "update_duration_seconds",
			Help:    "Latency of balance update passes",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		c.DepositsTotal, c.WithdrawalsTotal, c.RebalancesTotal,
		c.ListUpdatesTotal, c.PoolUpdatesTotal,
		c.DepositedLamports, c.WithdrawnLamports, c.FeeTokensMinted,
		c.TotalStakeLamports, c.PoolTokenSupply, c.ValidatorCount,
		c.UpdateDuration,
	)
	return c
}

// GetCollector returns the process-wide collector on the default registry.
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = NewCollector(prometheus.DefaultRegisterer)
	})
	return collector
}

// Handler serves the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
