package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
)

const (
	DefaultSymbol               = "MON"
	DefaultCooldown             = 12 * time.Hour
	DefaultExplorerURL          = "https://testnet.monvision.io"
	DefaultCommand              = "/faucet"
	DefaultConfirmTimeout       = 5 * time.Minute
	DefaultReceiptQueryInterval = time.Second
)

var DefaultAmount = eth.OneTenthEther

var (
	ErrMissingRPC        = errors.New("missing el_rpc")
	ErrMissingKey        = errors.New("missing private key")
	ErrMissingChannel    = errors.New("missing chat channel ID")
	ErrMissingCommand    = errors.New("missing command keyword")
	ErrInvalidCommand    = errors.New("command keyword must be a single word")
	ErrZeroAmount        = errors.New("faucet amount must be non-zero")
	ErrInvalidCooldown   = errors.New("cooldown must be positive")
	ErrInvalidPollPeriod = errors.New("receipt query interval must be positive")
)

type TxConfig struct {
	// PrivateKey of the funded wallet. hex encoded, optionally 0x prefixed.
	PrivateKey string `yaml:"private_key,omitempty"`

	// ConfirmTimeout bounds the wait for a receipt. Zero waits until shutdown.
	ConfirmTimeout time.Duration `yaml:"confirm_timeout,omitempty"`

	ReceiptQueryInterval time.Duration `yaml:"receipt_query_interval,omitempty"`
}

// ChatConfig configures where and how users request funds.
type ChatConfig struct {
	ChannelID string `yaml:"channel_id"`
	Command   string `yaml:"command,omitempty"`
}

// Config configures the faucet wallet and faucet usage.
type Config struct {
	ELRPC string `yaml:"el_rpc"`

	// ChainID is used to sanity-check we are connected to the right chain,
	// and never accidentally try to use a different chain for faucet work.
	// Zero skips the check.
	ChainID uint64 `yaml:"chain_id,omitempty"`

	TxCfg TxConfig `yaml:"tx_cfg"`

	// Amount sent per request, fixed for the lifetime of the process.
	Amount eth.ETH `yaml:"amount"`
	Symbol string  `yaml:"symbol,omitempty"`

	// Cooldown is the minimum time between two successful requests of the same user.
	Cooldown time.Duration `yaml:"cooldown,omitempty"`

	ExplorerURL string `yaml:"explorer_url,omitempty"`

	Chat ChatConfig `yaml:"chat"`
}

var _ Loader = (*Config)(nil)

// Load is implemented on the Config itself,
// so that a static already-instantiated config can be used for in-process service setup,
// to bypass the YAML loading.
func (c *Config) Load(ctx context.Context) (*Config, error) {
	return c, nil
}

// ApplyDefaults fills in the optional settings that were left empty.
// Cooldown is not one of them: an explicit zero is rejected by Check.
func (c *Config) ApplyDefaults() {
	if c.Symbol == "" {
		c.Symbol = DefaultSymbol
	}
	if c.ExplorerURL == "" {
		c.ExplorerURL = DefaultExplorerURL
	}
	if c.Chat.Command == "" {
		c.Chat.Command = DefaultCommand
	}
	if c.TxCfg.ReceiptQueryInterval == 0 {
		c.TxCfg.ReceiptQueryInterval = DefaultReceiptQueryInterval
	}
}

func (c *Config) Check() error {
	var result error
	if c.ELRPC == "" {
		result = errors.Join(result, ErrMissingRPC)
	}
	if c.TxCfg.PrivateKey == "" {
		result = errors.Join(result, ErrMissingKey)
	} else if _, err := crypto.HexToECDSA(strings.TrimPrefix(c.TxCfg.PrivateKey, "0x")); err != nil {
		result = errors.Join(result, fmt.Errorf("invalid private key: %w", err))
	}
	if c.Chat.ChannelID == "" {
		result = errors.Join(result, ErrMissingChannel)
	}
	if c.Chat.Command == "" {
		result = errors.Join(result, ErrMissingCommand)
	} else if len(strings.Fields(c.Chat.Command)) != 1 {
		result = errors.Join(result, ErrInvalidCommand)
	}
	if c.Amount.IsZero() {
		result = errors.Join(result, ErrZeroAmount)
	}
	if c.Cooldown <= 0 {
		result = errors.Join(result, ErrInvalidCooldown)
	}
	if c.TxCfg.ConfirmTimeout < 0 {
		result = errors.Join(result, fmt.Errorf("confirm timeout must not be negative: %s", c.TxCfg.ConfirmTimeout))
	}
	if c.TxCfg.ReceiptQueryInterval <= 0 {
		result = errors.Join(result, ErrInvalidPollPeriod)
	}
	if c.ExplorerURL != "" {
		if _, err := url.ParseRequestURI(c.ExplorerURL); err != nil {
			result = errors.Join(result, fmt.Errorf("invalid explorer URL: %w", err))
		}
	}
	return result
}

// TxURL links the transaction on the block explorer.
func (c *Config) TxURL(txHash string) string {
	return strings.TrimSuffix(c.ExplorerURL, "/") + "/tx/" + txHash
}
