package metrics

import (
	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
	txmetrics "github.com/mantlenetworkio/faucet-bot/op-service/txmgr/metrics"
)

type NoopMetrics struct {
	txmetrics.NoopTxMetrics
}

func (n NoopMetrics) RecordInfo(version string) {}

func (n NoopMetrics) RecordUp() {}

func (n NoopMetrics) RecordRequest(outcome string) {}

func (n NoopMetrics) RecordFundAction(amount eth.ETH) (onDone func(err error)) {
	return func(err error) {}
}

func (n NoopMetrics) RecordBalance(balance eth.ETH) {}

var _ Metricer = NoopMetrics{}
