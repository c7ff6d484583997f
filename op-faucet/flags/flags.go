package flags

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/faucet-bot/op-faucet/config"
	fconf "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/config"
	opservice "github.com/mantlenetworkio/faucet-bot/op-service"
	"github.com/mantlenetworkio/faucet-bot/op-service/cliapp"
	oplog "github.com/mantlenetworkio/faucet-bot/op-service/log"
	opmetrics "github.com/mantlenetworkio/faucet-bot/op-service/metrics"
)

const EnvVarPrefix = "OP_FAUCET"

const (
	DefaultEnvFile = ".env"
	faucetCategory = "FAUCET"
)

func prefixEnvVars(name string) []string {
	return opservice.PrefixEnvVar(EnvVarPrefix, name)
}

// withEnv appends env var names that are not prefixed, for compatibility with existing deployments.
func withEnv(envs []string, extra ...string) []string {
	return append(envs, extra...)
}

var (
	EnvFileFlag = &cli.StringFlag{
		Name:    "env-file",
		Usage:   "Path of a .env file to load into the environment before the other flags are read",
		EnvVars: prefixEnvVars("ENV_FILE"),
		Value:   DefaultEnvFile,
	}
	DiscordTokenFlag = &cli.StringFlag{
		Name:    "discord-token",
		Usage:   "Discord bot token",
		EnvVars: withEnv(prefixEnvVars("DISCORD_TOKEN"), "DISCORD_BOT_TOKEN"),
	}
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "Faucet configuration file path. When set, the faucet flags are ignored",
		EnvVars: prefixEnvVars("CONFIG"),
	}
	RPCURLFlag = &cli.StringFlag{
		Name:     "rpc-url",
		Usage:    "RPC endpoint of the chain the faucet sends funds on",
		EnvVars:  withEnv(prefixEnvVars("RPC_URL"), "MONAD_RPC_URL"),
		Category: faucetCategory,
	}
	PrivateKeyFlag = &cli.StringFlag{
		Name:     "private-key",
		Usage:    "Hex encoded private key of the faucet wallet",
		EnvVars:  withEnv(prefixEnvVars("PRIVATE_KEY"), "WALLET_PRIVATE_KEY"),
		Category: faucetCategory,
	}
	ChannelIDFlag = &cli.StringFlag{
		Name:     "channel-id",
		Usage:    "Discord channel the faucet listens to",
		EnvVars:  prefixEnvVars("CHANNEL_ID"),
		Category: faucetCategory,
	}
	AmountFlag = &cli.GenericFlag{
		Name:     "amount",
		Usage:    "Amount sent per request, in ether units",
		EnvVars:  prefixEnvVars("AMOUNT"),
		Value:    NewEtherFlagValue(fconf.DefaultAmount),
		Category: faucetCategory,
	}
	SymbolFlag = &cli.StringFlag{
		Name:     "symbol",
		Usage:    "Currency symbol shown in replies",
		EnvVars:  prefixEnvVars("SYMBOL"),
		Value:    fconf.DefaultSymbol,
		Category: faucetCategory,
	}
	CooldownFlag = &cli.DurationFlag{
		Name:     "cooldown",
		Usage:    "Minimum time between two successful requests of the same user. Must be positive",
		EnvVars:  prefixEnvVars("COOLDOWN"),
		Value:    fconf.DefaultCooldown,
		Category: faucetCategory,
	}
	ExplorerURLFlag = &cli.StringFlag{
		Name:     "explorer-url",
		Usage:    "Block explorer base URL, transactions are linked as <explorer-url>/tx/<hash>",
		EnvVars:  prefixEnvVars("EXPLORER_URL"),
		Value:    fconf.DefaultExplorerURL,
		Category: faucetCategory,
	}
	CommandFlag = &cli.StringFlag{
		Name:     "command",
		Usage:    "Command keyword users request funds with, matched case-insensitively",
		EnvVars:  prefixEnvVars("COMMAND"),
		Value:    fconf.DefaultCommand,
		Category: faucetCategory,
	}
	ChainIDFlag = &cli.Uint64Flag{
		Name:     "chain-id",
		Usage:    "Expected chain ID of the RPC endpoint. 0 skips the check",
		EnvVars:  prefixEnvVars("CHAIN_ID"),
		Category: faucetCategory,
	}
	ConfirmTimeoutFlag = &cli.DurationFlag{
		Name:     "confirm-timeout",
		Usage:    "Maximum time to wait for a funding tx to be included. 0 waits until shutdown",
		EnvVars:  prefixEnvVars("CONFIRM_TIMEOUT"),
		Value:    fconf.DefaultConfirmTimeout,
		Category: faucetCategory,
	}
	ReceiptQueryIntervalFlag = &cli.DurationFlag{
		Name:     "receipt-query-interval",
		Usage:    "Frequency to poll for the receipt of a funding tx",
		EnvVars:  prefixEnvVars("RECEIPT_QUERY_INTERVAL"),
		Value:    fconf.DefaultReceiptQueryInterval,
		Category: faucetCategory,
	}
)

var requiredFlags = []cli.Flag{
	DiscordTokenFlag,
}

// faucetRequiredFlags are required unless the faucet is configured with a config file.
var faucetRequiredFlags = []cli.Flag{
	RPCURLFlag,
	PrivateKeyFlag,
	ChannelIDFlag,
}

var optionalFlags = []cli.Flag{
	EnvFileFlag,
	ConfigFlag,
	AmountFlag,
	SymbolFlag,
	CooldownFlag,
	ExplorerURLFlag,
	CommandFlag,
	ChainIDFlag,
	ConfirmTimeoutFlag,
	ReceiptQueryIntervalFlag,
}

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(Flags, requiredFlags...)
	Flags = append(Flags, faucetRequiredFlags...)
	Flags = append(Flags, optionalFlags...)
}

// Flags contains the list of configuration options available to the binary.
var Flags []cli.Flag

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	if ctx.IsSet(ConfigFlag.Name) {
		return nil
	}
	for _, f := range faucetRequiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required, unless %s is set", f.Names()[0], cliapp.FlagNameList(ConfigFlag))
		}
	}
	return nil
}

func ConfigFromCLI(ctx *cli.Context, version string) *config.Config {
	return &config.Config{
		Version:       version,
		LogConfig:     oplog.ReadCLIConfig(ctx),
		MetricsConfig: opmetrics.ReadCLIConfig(ctx),
		DiscordToken:  ctx.String(DiscordTokenFlag.Name),
		Faucet:        faucetLoaderFromCLI(ctx),
	}
}

func faucetLoaderFromCLI(ctx *cli.Context) fconf.Loader {
	if ctx.IsSet(ConfigFlag.Name) {
		return &fconf.YamlLoader{Path: ctx.String(ConfigFlag.Name)}
	}
	return &fconf.Config{
		ELRPC:   ctx.String(RPCURLFlag.Name),
		ChainID: ctx.Uint64(ChainIDFlag.Name),
		TxCfg: fconf.TxConfig{
			PrivateKey:           ctx.String(PrivateKeyFlag.Name),
			ConfirmTimeout:       ctx.Duration(ConfirmTimeoutFlag.Name),
			ReceiptQueryInterval: ctx.Duration(ReceiptQueryIntervalFlag.Name),
		},
		Amount:      ctx.Generic(AmountFlag.Name).(*EtherFlagValue).ETH(),
		Symbol:      ctx.String(SymbolFlag.Name),
		Cooldown:    ctx.Duration(CooldownFlag.Name),
		ExplorerURL: ctx.String(ExplorerURLFlag.Name),
		Chat: fconf.ChatConfig{
			ChannelID: ctx.String(ChannelIDFlag.Name),
			Command:   ctx.String(CommandFlag.Name),
		},
	}
}

// EnvFileFromArgs finds the .env file to load, before the app parses its flags.
// The --env-file argument takes precedence over the env var.
func EnvFileFromArgs(args []string) (path string, explicit bool) {
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != EnvFileFlag.Name {
			continue
		}
		if hasValue {
			return value, true
		}
		if i+1 < len(args) {
			return args[i+1], true
		}
	}
	for _, env := range EnvFileFlag.EnvVars {
		if v := os.Getenv(env); v != "" {
			return v, true
		}
	}
	return EnvFileFlag.Value, false
}

// LoadEnvFile loads the .env file into the process environment.
// Variables that are already set are not overridden.
// A missing file is only an error if it was explicitly requested.
func LoadEnvFile(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %q: %w", path, err)
}
