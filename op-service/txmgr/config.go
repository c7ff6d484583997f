package txmgr

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	DefaultNetworkTimeout             = 10 * time.Second
	DefaultReceiptQueryInterval       = time.Second
	DefaultSafeAbortReceiptErrorCount = uint64(5)
)

// Config is the runtime configuration of a SimpleTxManager.
type Config struct {
	Backend ETHBackend

	ChainID    *big.Int
	From       common.Address
	PrivateKey *ecdsa.PrivateKey

	// NetworkTimeout bounds every single RPC call.
	NetworkTimeout time.Duration

	// ReceiptQueryInterval is the time between receipt queries while waiting for a tx to be mined.
	ReceiptQueryInterval time.Duration

	// ConfirmTimeout bounds the total wait for a receipt. Zero waits until the context is done.
	ConfirmTimeout time.Duration

	// SafeAbortReceiptErrorCount is the number of consecutive failed receipt queries
	// after which waiting for the receipt is aborted.
	SafeAbortReceiptErrorCount uint64
}

// NewConfig derives the signer from the hex encoded private key,
// and reads the chain ID from the backend.
func NewConfig(ctx context.Context, backend ETHBackend, privateKey string) (*Config, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not init signer: %w", err)
	}
	cCtx, cancel := context.WithTimeout(ctx, DefaultNetworkTimeout)
	defer cancel()
	chainID, err := backend.ChainID(cCtx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch chain ID: %w", err)
	}
	return &Config{
		Backend:                    backend,
		ChainID:                    chainID,
		From:                       crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey:                 key,
		NetworkTimeout:             DefaultNetworkTimeout,
		ReceiptQueryInterval:       DefaultReceiptQueryInterval,
		SafeAbortReceiptErrorCount: DefaultSafeAbortReceiptErrorCount,
	}, nil
}

func (m *Config) Check() error {
	if m.Backend == nil {
		return errors.New("must provide the Backend")
	}
	if m.ChainID == nil {
		return errors.New("must provide the ChainID")
	}
	if m.PrivateKey == nil {
		return errors.New("must provide the PrivateKey")
	}
	if m.NetworkTimeout <= 0 {
		return errors.New("must provide a positive NetworkTimeout")
	}
	if m.ReceiptQueryInterval <= 0 {
		return errors.New("must provide a positive ReceiptQueryInterval")
	}
	if m.ConfirmTimeout < 0 {
		return errors.New("ConfirmTimeout must not be negative")
	}
	if m.SafeAbortReceiptErrorCount == 0 {
		return errors.New("SafeAbortReceiptErrorCount must not be 0")
	}
	return nil
}
