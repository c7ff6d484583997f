package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"

	"github.com/mantlenetworkio/faucet-bot/op-service/metrics"
)

type TxMetricer interface {
	RecordNonce(uint64)
	RecordTxConfirmationLatency(int64)
	TxConfirmed(*types.Receipt)
	TxPublished(string)
	RecordBaseFee(*big.Int)
	RecordTipCap(*big.Int)
	RPCError()
}

type TxMetrics struct {
	currentNonce   prometheus.Gauge
	txPublishEvent *prometheus.CounterVec
	txFees         prometheus.Counter
	txGasUsed      prometheus.Counter
	txConfirmed    *prometheus.CounterVec
	confirmLatency prometheus.Histogram
	baseFee        prometheus.Gauge
	tipCap         prometheus.Gauge
	rpcError       prometheus.Counter
}

var _ TxMetricer = (*TxMetrics)(nil)

func receiptStatusString(receipt *types.Receipt) string {
	switch receipt.Status {
	case types.ReceiptStatusSuccessful:
		return "success"
	case types.ReceiptStatusFailed:
		return "failed"
	default:
		return "unknown_status"
	}
}

func MakeTxMetrics(ns string, factory metrics.Factory) TxMetrics {
	return TxMetrics{
		currentNonce: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "current_nonce",
			Help:      "Current nonce of the from address",
			Subsystem: "txmgr",
		}),
		txPublishEvent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "publish_total",
			Help:      "Count of tx publish attempts, by outcome",
			Subsystem: "txmgr",
		}, []string{"outcome"}),
		txFees: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "fee_gwei_total",
			Help:      "Sum of fees spent for all transactions in GWei",
			Subsystem: "txmgr",
		}),
		txGasUsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "gas_used_total",
			Help:      "Sum of gas used by confirmed transactions",
			Subsystem: "txmgr",
		}),
		txConfirmed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "confirmed_total",
			Help:      "Count of confirmed transactions, by receipt status",
			Subsystem: "txmgr",
		}, []string{"status"}),
		confirmLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "confirm_latency_ms",
			Help:      "Latency between publishing a tx and observing its receipt",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000},
			Subsystem: "txmgr",
		}),
		baseFee: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "basefee_wei",
			Help:      "Latest L1 baseFee (in Wei)",
			Subsystem: "txmgr",
		}),
		tipCap: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "tipcap_wei",
			Help:      "Latest suggested tip cap (in Wei)",
			Subsystem: "txmgr",
		}),
		rpcError: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rpc_error_count",
			Help:      "Temporary: Count of RPC errors (like timeouts) that have occurred",
			Subsystem: "txmgr",
		}),
	}
}

func (t *TxMetrics) RecordNonce(nonce uint64) {
	t.currentNonce.Set(float64(nonce))
}

// TxConfirmed records the gas used and fees paid by a mined transaction.
func (t *TxMetrics) TxConfirmed(receipt *types.Receipt) {
	t.txConfirmed.WithLabelValues(receiptStatusString(receipt)).Inc()
	t.txGasUsed.Add(float64(receipt.GasUsed))
	if receipt.EffectiveGasPrice == nil {
		return
	}
	fee := new(big.Int).Mul(receipt.EffectiveGasPrice, new(big.Int).SetUint64(receipt.GasUsed))
	gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(fee), big.NewFloat(params.GWei)).Float64()
	t.txFees.Add(gwei)
}

func (t *TxMetrics) RecordTxConfirmationLatency(latency int64) {
	t.confirmLatency.Observe(float64(latency))
}

func (t *TxMetrics) TxPublished(outcome string) {
	t.txPublishEvent.WithLabelValues(outcome).Inc()
}

func (t *TxMetrics) RecordBaseFee(baseFee *big.Int) {
	bff, _ := baseFee.Float64()
	t.baseFee.Set(bff)
}

func (t *TxMetrics) RecordTipCap(tipcap *big.Int) {
	tcf, _ := tipcap.Float64()
	t.tipCap.Set(tcf)
}

func (t *TxMetrics) RPCError() {
	t.rpcError.Inc()
}
