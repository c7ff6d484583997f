package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/faucet-bot/op-faucet/config"
	fconf "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/config"
	"github.com/mantlenetworkio/faucet-bot/op-service/cliapp"
	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
)

var (
	rpcURL       = "http://example.com:8545"
	privateKey   = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	discordToken = "test-token"
	channelID    = "1373624652496240681"
)

func TestLogLevel(t *testing.T) {
	t.Run("RejectInvalid", func(t *testing.T) {
		verifyArgsInvalid(t, "unknown level: foo", addRequiredArgs("--log.level=foo"))
	})

	for _, lvl := range []string{"trace", "debug", "info", "error", "crit"} {
		t.Run("AcceptValid_"+lvl, func(t *testing.T) {
			logger, _, err := dryRunWithArgs(addRequiredArgs("--log.level", lvl))
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := configForArgs(t, addRequiredArgs())
	require.Equal(t, discordToken, cfg.DiscordToken)
	require.False(t, cfg.MetricsConfig.Enabled)
	fCfg := faucetConfig(t, cfg)
	require.Equal(t, &fconf.Config{
		ELRPC: rpcURL,
		TxCfg: fconf.TxConfig{
			PrivateKey:           privateKey,
			ConfirmTimeout:       fconf.DefaultConfirmTimeout,
			ReceiptQueryInterval: fconf.DefaultReceiptQueryInterval,
		},
		Amount:      fconf.DefaultAmount,
		Symbol:      fconf.DefaultSymbol,
		Cooldown:    fconf.DefaultCooldown,
		ExplorerURL: fconf.DefaultExplorerURL,
		Chat: fconf.ChatConfig{
			ChannelID: channelID,
			Command:   fconf.DefaultCommand,
		},
	}, fCfg)
	require.NoError(t, fCfg.Check())
}

func TestDiscordToken(t *testing.T) {
	t.Run("Required", func(t *testing.T) {
		verifyArgsInvalid(t, "flag discord-token is required", addRequiredArgsExcept("--discord-token"))
	})

	t.Run("CompatEnvVar", func(t *testing.T) {
		t.Setenv("DISCORD_BOT_TOKEN", "from-env")
		cfg := configForArgs(t, addRequiredArgsExcept("--discord-token"))
		require.Equal(t, "from-env", cfg.DiscordToken)
	})
}

func TestFaucetFlagsRequired(t *testing.T) {
	for _, name := range []string{"rpc-url", "private-key", "channel-id"} {
		t.Run(name, func(t *testing.T) {
			verifyArgsInvalid(t, fmt.Sprintf("flag %s is required, unless --config is set", name),
				addRequiredArgsExcept("--"+name))
		})
	}
}

func TestConfigFile(t *testing.T) {
	cfg := configForArgs(t, []string{
		"--discord-token", discordToken,
		"--config", "faucet.yaml",
	})
	require.Equal(t, &fconf.YamlLoader{Path: "faucet.yaml"}, cfg.Faucet)
}

func TestRPCURLCompatEnvVar(t *testing.T) {
	url := "http://example.com:9999"
	t.Setenv("MONAD_RPC_URL", url)
	cfg := configForArgs(t, addRequiredArgsExcept("--rpc-url"))
	require.Equal(t, url, faucetConfig(t, cfg).ELRPC)
}

func TestPrivateKeyCompatEnvVar(t *testing.T) {
	t.Setenv("WALLET_PRIVATE_KEY", "0x01")
	cfg := configForArgs(t, addRequiredArgsExcept("--private-key"))
	require.Equal(t, "0x01", faucetConfig(t, cfg).TxCfg.PrivateKey)
}

func TestAmount(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		cfg := configForArgs(t, addRequiredArgs("--amount", "0.5"))
		require.Equal(t, eth.GWei(500_000_000), faucetConfig(t, cfg).Amount)
	})

	t.Run("Invalid", func(t *testing.T) {
		verifyArgsInvalid(t, "invalid ether amount", addRequiredArgs("--amount", "lots"))
	})
}

func TestFaucetOptions(t *testing.T) {
	cfg := configForArgs(t, addRequiredArgs(
		"--symbol", "ETH",
		"--cooldown", "30m",
		"--explorer-url", "https://explorer.example.com",
		"--command", "!drip",
		"--chain-id", "10143",
		"--confirm-timeout", "0",
		"--receipt-query-interval", "250ms",
	))
	fCfg := faucetConfig(t, cfg)
	require.Equal(t, "ETH", fCfg.Symbol)
	require.Equal(t, 30*time.Minute, fCfg.Cooldown)
	require.Equal(t, "https://explorer.example.com", fCfg.ExplorerURL)
	require.Equal(t, "!drip", fCfg.Chat.Command)
	require.Equal(t, uint64(10143), fCfg.ChainID)
	require.Zero(t, fCfg.TxCfg.ConfirmTimeout)
	require.Equal(t, 250*time.Millisecond, fCfg.TxCfg.ReceiptQueryInterval)
}

func TestEnvFile(t *testing.T) {
	t.Run("Loaded", func(t *testing.T) {
		t.Setenv("OP_FAUCET_SYMBOL", "")
		require.NoError(t, os.Unsetenv("OP_FAUCET_SYMBOL"))
		p := filepath.Join(t.TempDir(), "faucet.env")
		require.NoError(t, os.WriteFile(p, []byte("OP_FAUCET_SYMBOL=tMON\n"), 0o600))

		cfg := configForArgs(t, addRequiredArgs("--env-file", p))
		require.Equal(t, "tMON", faucetConfig(t, cfg).Symbol)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "missing.env")
		verifyArgsInvalid(t, "failed to load env file", addRequiredArgs("--env-file", p))
	})
}

func TestMetrics(t *testing.T) {
	t.Run("Enabled", func(t *testing.T) {
		cfg := configForArgs(t, addRequiredArgs("--metrics.enabled", "--metrics.port", "7301"))
		require.True(t, cfg.MetricsConfig.Enabled)
		require.Equal(t, 7301, cfg.MetricsConfig.ListenPort)
	})

	t.Run("InvalidPort", func(t *testing.T) {
		verifyArgsInvalid(t, "invalid CLI flags", addRequiredArgs("--metrics.enabled", "--metrics.port", "70000"))
	})
}

func faucetConfig(t *testing.T, cfg *config.Config) *fconf.Config {
	fCfg, ok := cfg.Faucet.(*fconf.Config)
	require.True(t, ok, "expected static faucet config, got %T", cfg.Faucet)
	return fCfg
}

func verifyArgsInvalid(t *testing.T, messageContains string, cliArgs []string) {
	_, _, err := dryRunWithArgs(cliArgs)
	require.ErrorContains(t, err, messageContains)
}

func configForArgs(t *testing.T, cliArgs []string) *config.Config {
	_, cfg, err := dryRunWithArgs(cliArgs)
	require.NoError(t, err)
	return cfg
}

func dryRunWithArgs(cliArgs []string) (log.Logger, *config.Config, error) {
	cfg := new(config.Config)
	var logger log.Logger
	fullArgs := append([]string{"faucet-bot"}, cliArgs...)
	testErr := errors.New("dry-run")
	err := run(context.Background(), io.Discard, io.Discard, fullArgs, func(ctx context.Context, config *config.Config, log log.Logger) (cliapp.Lifecycle, error) {
		logger = log
		cfg = config
		return nil, testErr
	})
	if errors.Is(err, testErr) { // expected error
		err = nil
	}
	return logger, cfg, err
}

func addRequiredArgs(args ...string) []string {
	req := requiredArgs()
	combined := toArgList(req)
	return append(combined, args...)
}

func addRequiredArgsExcept(name string, optionalArgs ...string) []string {
	req := requiredArgs()
	delete(req, name)
	return append(toArgList(req), optionalArgs...)
}

func requiredArgs() map[string]string {
	args := map[string]string{
		"--discord-token": discordToken,
		"--rpc-url":       rpcURL,
		"--private-key":   privateKey,
		"--channel-id":    channelID,
	}
	return args
}

func toArgList(req map[string]string) []string {
	var combined []string
	for name, value := range req {
		combined = append(combined, fmt.Sprintf("%s=%s", name, value))
	}
	return combined
}
