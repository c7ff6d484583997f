package testutils

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"

	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
)

// SimulatedEthClient is an in-memory chain with one funded wallet,
// for ledger tests without a live node.
type SimulatedEthClient struct {
	key     *ecdsa.PrivateKey
	addr    common.Address
	backend *simulated.Backend
	simulated.Client
}

type SimulatedEthClientConfig struct {
	WalletBalance *big.Int
	BlockGasLimit uint64
	Accounts      types.GenesisAlloc
}

func WithWalletBalance(balance eth.ETH) func(*SimulatedEthClientConfig) {
	return func(c *SimulatedEthClientConfig) {
		c.WalletBalance = balance.ToBig()
	}
}

// WithAccountCode deploys the given runtime code at addr in genesis.
func WithAccountCode(addr common.Address, code []byte) func(*SimulatedEthClientConfig) {
	return func(c *SimulatedEthClientConfig) {
		c.Accounts[addr] = types.Account{Code: code, Balance: new(big.Int)}
	}
}

func NewSimulatedEthClient(t testing.TB, opts ...func(*SimulatedEthClientConfig)) *SimulatedEthClient {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := &SimulatedEthClientConfig{
		WalletBalance: eth.HundredEther.ToBig(),
		BlockGasLimit: 10_000_000,
		Accounts:      types.GenesisAlloc{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	addr := crypto.PubkeyToAddress(key.PublicKey)
	alloc := types.GenesisAlloc{addr: {Balance: cfg.WalletBalance}}
	for a, acc := range cfg.Accounts {
		alloc[a] = acc
	}
	backend := simulated.NewBackend(alloc, simulated.WithBlockGasLimit(cfg.BlockGasLimit))
	t.Cleanup(func() {
		_ = backend.Close()
	})
	return &SimulatedEthClient{
		key:     key,
		addr:    addr,
		backend: backend,
		Client:  backend.Client(),
	}
}

// ChainID of the simulated chain.
func (c *SimulatedEthClient) ChainIDBig() *big.Int {
	return params.AllDevChainProtocolChanges.ChainID
}

// PrivateKey of the funded wallet, hex encoded and 0x prefixed.
func (c *SimulatedEthClient) PrivateKey() string {
	return hexutil.Encode(crypto.FromECDSA(c.key))
}

func (c *SimulatedEthClient) Key() *ecdsa.PrivateKey {
	return c.key
}

func (c *SimulatedEthClient) Address() common.Address {
	return c.addr
}

// Commit seals the pending transactions into a new block.
func (c *SimulatedEthClient) Commit() common.Hash {
	return c.backend.Commit()
}
