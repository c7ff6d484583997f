package metrics

import (
	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
	"github.com/mantlenetworkio/faucet-bot/op-service/txmgr/metrics"
)

type Metricer interface {
	RecordInfo(version string)
	RecordUp()

	// RecordRequest counts a handled faucet command by its outcome.
	RecordRequest(outcome string)

	RecordFundAction(amount eth.ETH) (onDone func(err error))

	RecordBalance(balance eth.ETH)

	metrics.TxMetricer
}
