package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
	opmetrics "github.com/mantlenetworkio/faucet-bot/op-service/metrics"
	txmetrics "github.com/mantlenetworkio/faucet-bot/op-service/txmgr/metrics"
)

const Namespace = "op_faucet"

type Metrics struct {
	ns       string
	registry *prometheus.Registry
	factory  opmetrics.Factory

	txmetrics.TxMetrics

	requests *prometheus.CounterVec

	totalFundingETH *prometheus.CounterVec
	totalFundingTxs *prometheus.CounterVec

	txDuration prometheus.Histogram

	balance prometheus.Gauge

	info prometheus.GaugeVec
	up   prometheus.Gauge
}

var _ Metricer = (*Metrics)(nil)
var _ opmetrics.RegistryMetricer = (*Metrics)(nil)

func NewMetrics(procName string) *Metrics {
	return newMetrics(procName, opmetrics.NewRegistry())
}

func newMetrics(procName string, registry *prometheus.Registry) *Metrics {
	if procName == "" {
		procName = "default"
	}
	ns := Namespace + "_" + procName

	factory := opmetrics.With(registry)
	return &Metrics{
		ns:       ns,
		registry: registry,
		factory:  factory,

		info: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "info",
			Help:      "Pseudo-metric tracking version and config info",
		}, []string{
			"version",
		}),
		up: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "up",
			Help:      "1 if op-faucet has finished starting up",
		}),

		TxMetrics: txmetrics.MakeTxMetrics(ns, factory),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "requests_total",
			Help:      "Count of handled faucet commands, by outcome",
		}, []string{"outcome"}),

		totalFundingETH: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "funding_eth_total",
			Help:      "Total of funding ETH",
		}, []string{"err"}),

		totalFundingTxs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "funding_txs_total",
			Help:      "Count of funding txs",
		}, []string{"err"}),

		txDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "funding_duration_seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			Help:      "Duration it takes to submit and confirm a funding tx",
		}),

		balance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "balance_wei",
			Help:      "Last observed balance of the faucet wallet, in wei",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Document() []opmetrics.DocumentedMetric {
	return m.factory.Document()
}

// RecordInfo sets a pseudo-metric that contains versioning and config info.
func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

// RecordUp sets the up metric to 1.
func (m *Metrics) RecordUp() {
	m.up.Set(1)
}

func (m *Metrics) RecordRequest(outcome string) {
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordFundAction(amount eth.ETH) (onDone func(err error)) {
	timer := prometheus.NewTimer(m.txDuration)
	return func(err error) {
		timer.ObserveDuration()
		errStr := "success"
		if err != nil {
			errStr = "failed"
		}
		m.totalFundingTxs.WithLabelValues(errStr).Inc()
		m.totalFundingETH.WithLabelValues(errStr).Add(amount.WeiFloat())
	}
}

func (m *Metrics) RecordBalance(balance eth.ETH) {
	m.balance.Set(balance.WeiFloat())
}
