package txmgr

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/faucet-bot/op-service/txmgr/metrics"
)

var ErrClosed = errors.New("transaction manager is closed")

// TxManager signs, publishes and tracks transactions of a single account.
type TxManager interface {
	// Publish crafts, signs and broadcasts the candidate, and returns the published transaction.
	// An error means the transaction was not accepted by the node.
	Publish(ctx context.Context, candidate TxCandidate) (*types.Transaction, error)

	// WaitMined polls for the receipt of the transaction until it is found,
	// the confirm timeout expires, or the context is done.
	WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// Send is Publish followed by WaitMined.
	Send(ctx context.Context, candidate TxCandidate) (*types.Receipt, error)

	// From returns the sending address associated with the instance of the transaction manager.
	From() common.Address

	// ChainID returns the chain ID the transactions are signed for.
	ChainID() *big.Int

	// Close stops the transaction manager from publishing new transactions.
	Close()
}

// ETHBackend is the set of methods that the transaction manager uses to
// interact with the chain. The ethclient.Client satisfies this interface.
type ETHBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)

	// HeaderByNumber returns a block header from the current canonical chain.
	// If number is nil, the latest known header is returned.
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)

	// SuggestGasTipCap returns the currently suggested gas tip cap.
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)

	// PendingNonceAt returns the pending nonce.
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)

	// EstimateGas returns an estimate of the amount of gas needed to execute the given
	// transaction against the current pending block.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)

	// SendTransaction submits a signed transaction to the node.
	SendTransaction(ctx context.Context, tx *types.Transaction) error

	// TransactionReceipt queries the backend for a receipt associated with
	// txHash. If lookup does not fail, but the transaction is not found,
	// nil should be returned for both values.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TxCandidate is a transaction candidate that can be submitted to ask the
// [TxManager] to construct a transaction with gas price bounds.
type TxCandidate struct {
	// TxData is the transaction calldata to be used in the constructed tx.
	TxData []byte
	// To is the recipient of the constructed tx. Nil means contract creation.
	To *common.Address
	// GasLimit is the gas limit to be used in the constructed tx. Zero estimates it.
	GasLimit uint64
	// Value is the value to be used in the constructed tx.
	Value *big.Int
}

// SimpleTxManager is a implementation of TxManager that publishes one transaction at a time,
// so concurrent callers never reuse a nonce.
type SimpleTxManager struct {
	cfg  *Config
	name string

	backend ETHBackend
	signer  types.Signer
	l       log.Logger
	metr    metrics.TxMetricer

	nonceLock sync.Mutex
	closed    atomic.Bool

	gasPriceEstimatorFn GasPriceEstimatorFn
}

var _ TxManager = (*SimpleTxManager)(nil)

// NewSimpleTxManagerFromConfig initializes a new SimpleTxManager with the passed Config.
func NewSimpleTxManagerFromConfig(name string, l log.Logger, m metrics.TxMetricer, conf *Config) (*SimpleTxManager, error) {
	if err := conf.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &SimpleTxManager{
		cfg:                 conf,
		name:                name,
		backend:             conf.Backend,
		signer:              types.LatestSignerForChainID(conf.ChainID),
		l:                   l.New("service", name),
		metr:                m,
		gasPriceEstimatorFn: DefaultGasPriceEstimatorFn,
	}, nil
}

func (m *SimpleTxManager) From() common.Address {
	return m.cfg.From
}

func (m *SimpleTxManager) ChainID() *big.Int {
	return new(big.Int).Set(m.cfg.ChainID)
}

func (m *SimpleTxManager) Close() {
	if m.closed.CompareAndSwap(false, true) {
		m.l.Info("TxManager closed")
	}
}

func (m *SimpleTxManager) Send(ctx context.Context, candidate TxCandidate) (*types.Receipt, error) {
	tx, err := m.Publish(ctx, candidate)
	if err != nil {
		return nil, err
	}
	return m.WaitMined(ctx, tx.Hash())
}

func (m *SimpleTxManager) Publish(ctx context.Context, candidate TxCandidate) (*types.Transaction, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	m.nonceLock.Lock()
	defer m.nonceLock.Unlock()

	tx, err := m.craftTx(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to create the tx: %w", err)
	}
	l := m.l.New("tx", tx.Hash(), "nonce", tx.Nonce())

	cCtx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	if err := m.backend.SendTransaction(cCtx, tx); err != nil {
		outcome := publishOutcome(err)
		m.metr.TxPublished(outcome)
		l.Warn("Failed to publish transaction", "outcome", outcome, "err", err)
		return nil, fmt.Errorf("failed to publish tx %s: %w", tx.Hash(), err)
	}
	m.metr.TxPublished("success")
	m.metr.RecordNonce(tx.Nonce())
	l.Info("Transaction successfully published",
		"gasTipCap", tx.GasTipCap(), "gasFeeCap", tx.GasFeeCap(), "gasLimit", tx.Gas())
	return tx, nil
}

// craftTx creates the signed transaction for the candidate, at the current pending nonce.
// The caller must hold the nonce lock.
func (m *SimpleTxManager) craftTx(ctx context.Context, candidate TxCandidate) (*types.Transaction, error) {
	gasTipCap, baseFee, err := m.SuggestGasPriceCaps(ctx)
	if err != nil {
		m.metr.RPCError()
		return nil, fmt.Errorf("failed to get gas price info: %w", err)
	}
	gasFeeCap := calcGasFeeCap(baseFee, gasTipCap)

	cCtx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	nonce, err := m.backend.PendingNonceAt(cCtx, m.cfg.From)
	if err != nil {
		m.metr.RPCError()
		return nil, fmt.Errorf("failed to get pending nonce: %w", err)
	}

	gasLimit := candidate.GasLimit
	if gasLimit == 0 {
		gCtx, gCancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
		defer gCancel()
		gas, err := m.backend.EstimateGas(gCtx, ethereum.CallMsg{
			From:      m.cfg.From,
			To:        candidate.To,
			GasTipCap: gasTipCap,
			GasFeeCap: gasFeeCap,
			Data:      candidate.TxData,
			Value:     candidate.Value,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
		gasLimit = gas
	}

	txMessage := &types.DynamicFeeTx{
		ChainID:   m.cfg.ChainID,
		Nonce:     nonce,
		To:        candidate.To,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gasLimit,
		Value:     candidate.Value,
		Data:      candidate.TxData,
	}
	tx, err := types.SignNewTx(m.cfg.PrivateKey, m.signer, txMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to sign tx: %w", err)
	}
	return tx, nil
}

// SuggestGasPriceCaps suggests what the new tip and base fee should be based on the current chain conditions.
func (m *SimpleTxManager) SuggestGasPriceCaps(ctx context.Context) (*big.Int, *big.Int, error) {
	cCtx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	tip, baseFee, err := m.gasPriceEstimatorFn(cCtx, m.backend)
	if err != nil {
		return nil, nil, err
	}
	m.metr.RecordTipCap(tip)
	m.metr.RecordBaseFee(baseFee)
	return tip, baseFee, nil
}

func (m *SimpleTxManager) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if m.cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.ConfirmTimeout)
		defer cancel()
	}
	l := m.l.New("tx", txHash)
	start := time.Now()
	ticker := time.NewTicker(m.cfg.ReceiptQueryInterval)
	defer ticker.Stop()

	var rpcErrs uint64
	for {
		receipt, err := m.queryReceipt(ctx, txHash)
		switch {
		case err == nil:
			m.metr.RecordTxConfirmationLatency(time.Since(start).Milliseconds())
			m.metr.TxConfirmed(receipt)
			l.Info("Transaction confirmed",
				"block", receipt.BlockNumber, "blockHash", receipt.BlockHash, "status", receipt.Status)
			return receipt, nil
		case ctx.Err() != nil:
			return nil, fmt.Errorf("waiting for receipt of tx %s: %w", txHash, ctx.Err())
		case receiptPending(err):
			l.Trace("Transaction not yet mined", "err", err)
		default:
			m.metr.RPCError()
			rpcErrs++
			if rpcErrs >= m.cfg.SafeAbortReceiptErrorCount {
				return nil, fmt.Errorf("failed to query receipt of tx %s: %w", txHash, err)
			}
			l.Warn("Receipt retrieval failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of tx %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (m *SimpleTxManager) queryReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	cCtx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	receipt, err := m.backend.TransactionReceipt(cCtx, txHash)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

// errTxIndexing is the error geth-based nodes return for receipts while the tx index is catching up.
const errTxIndexing = "transaction indexing is in progress"

// receiptPending reports whether the receipt query failed only because the receipt is not available yet.
// Such errors do not count towards the RPC error budget.
func receiptPending(err error) bool {
	return errors.Is(err, ethereum.NotFound) || strings.Contains(err.Error(), errTxIndexing)
}

// publishOutcome labels the error returned by the node on broadcast.
func publishOutcome(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "nonce too low"):
		return "nonce_too_low"
	case strings.Contains(msg, "insufficient funds"):
		return "insufficient_funds"
	case strings.Contains(msg, "underpriced"):
		return "underpriced"
	case strings.Contains(msg, "already known"):
		return "already_known"
	default:
		return "unknown_error"
	}
}
