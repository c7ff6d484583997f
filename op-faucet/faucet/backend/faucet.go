package backend

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/config"
	ftypes "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/frontend"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/metrics"
	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
	"github.com/mantlenetworkio/faucet-bot/op-service/txmgr"
)

var ErrReverted = errors.New("funding tx reverted")

// EthBalance is the part of the EL client the faucet reads its own balance with.
type EthBalance interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Faucet is the funded wallet, sending value transfers through a tx manager.
type Faucet struct {
	log log.Logger
	m   metrics.Metricer

	chainID  *big.Int
	txMgr    txmgr.TxManager
	elClient EthBalance

	// closes the EL client connection, if owned by the faucet
	closeEL func()
}

var _ frontend.FaucetBackend = (*Faucet)(nil)

func FaucetFromConfig(ctx context.Context, logger log.Logger, m metrics.Metricer, fCfg *config.Config) (*Faucet, error) {
	elClient, err := ethclient.DialContext(ctx, fCfg.ELRPC)
	if err != nil {
		return nil, fmt.Errorf("failed to dial EL client: %w", err)
	}
	txCfg, err := TxManagerConfig(ctx, elClient, fCfg)
	if err != nil {
		elClient.Close()
		return nil, fmt.Errorf("failed to setup tx manager config: %w", err)
	}
	logger = logger.New("chain", txCfg.ChainID, "wallet", txCfg.From)
	txMgr, err := txmgr.NewSimpleTxManagerFromConfig("faucet", logger, m, txCfg)
	if err != nil {
		elClient.Close()
		return nil, fmt.Errorf("failed to start tx manager: %w", err)
	}
	f := faucetWithTxManager(logger, m, txMgr, elClient)
	f.closeEL = elClient.Close
	return f, nil
}

// TxManagerConfig builds the tx manager config of the faucet wallet,
// and checks the backend serves the configured chain.
func TxManagerConfig(ctx context.Context, backend txmgr.ETHBackend, fCfg *config.Config) (*txmgr.Config, error) {
	out, err := txmgr.NewConfig(ctx, backend, fCfg.TxCfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	if fCfg.ChainID != 0 && (!out.ChainID.IsUint64() || out.ChainID.Uint64() != fCfg.ChainID) {
		return nil, fmt.Errorf("unexpected chain ID %s, expected %d", out.ChainID, fCfg.ChainID)
	}
	out.ConfirmTimeout = fCfg.TxCfg.ConfirmTimeout
	if fCfg.TxCfg.ReceiptQueryInterval > 0 {
		out.ReceiptQueryInterval = fCfg.TxCfg.ReceiptQueryInterval
	}
	return out, nil
}

func faucetWithTxManager(logger log.Logger, m metrics.Metricer, txMgr txmgr.TxManager, elClient EthBalance) *Faucet {
	return &Faucet{
		log:      logger,
		m:        m,
		chainID:  txMgr.ChainID(),
		txMgr:    txMgr,
		elClient: elClient,
		closeEL:  func() {},
	}
}

func (f *Faucet) Close() {
	f.log.Info("Closing faucet")
	f.txMgr.Close()
	f.closeEL()
}

func (f *Faucet) Address() common.Address {
	return f.txMgr.From()
}

func (f *Faucet) ChainID() *big.Int {
	return new(big.Int).Set(f.chainID)
}

func (f *Faucet) Balance(ctx context.Context) (eth.ETH, error) {
	balance, err := f.elClient.BalanceAt(ctx, f.txMgr.From(), nil)
	if err != nil {
		return eth.ETH{}, fmt.Errorf("failed to get balance: %w", err)
	}
	out := eth.WeiBig(balance)
	f.m.RecordBalance(out)
	return out, nil
}

// Submit signs and broadcasts a plain value transfer to the request target.
// A returned hash means the node accepted the transaction.
func (f *Faucet) Submit(ctx context.Context, request *ftypes.FaucetRequest) (common.Hash, error) {
	to := request.Target
	tx, err := f.txMgr.Publish(ctx, txmgr.TxCandidate{
		To:    &to,
		Value: request.Amount.ToBig(),
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send funds: %w", err)
	}
	f.log.Info("Sending funds", "to", request.Target, "amount", request.Amount, "tx", tx.Hash())
	return tx.Hash(), nil
}

// AwaitConfirmation waits for the receipt of a submitted transfer.
// A reverted transfer is returned together with ErrReverted.
func (f *Faucet) AwaitConfirmation(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	rec, err := f.txMgr.WaitMined(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if rec.Status == types.ReceiptStatusFailed {
		return rec, fmt.Errorf("%w: %s", ErrReverted, txHash)
	}
	f.log.Info("Successfully funded account",
		"tx", rec.TxHash,
		"included_hash", rec.BlockHash,
		"included_num", rec.BlockNumber)
	return rec, nil
}
