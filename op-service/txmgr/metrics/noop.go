package metrics

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

// NoopTxMetrics discards all tx manager metrics. The zero value is ready to use.
type NoopTxMetrics struct{}

var _ TxMetricer = NoopTxMetrics{}

func (NoopTxMetrics) RecordNonce(nonce uint64)                    {}
func (NoopTxMetrics) RecordTxConfirmationLatency(latencyMs int64) {}
func (NoopTxMetrics) TxConfirmed(receipt *types.Receipt)          {}
func (NoopTxMetrics) TxPublished(outcome string)                  {}
func (NoopTxMetrics) RecordBaseFee(baseFee *big.Int)              {}
func (NoopTxMetrics) RecordTipCap(tipCap *big.Int)                {}
func (NoopTxMetrics) RPCError()                                   {}
