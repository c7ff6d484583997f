package faucet

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/faucet-bot/op-faucet/config"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/flags"
	opservice "github.com/mantlenetworkio/faucet-bot/op-service"
	"github.com/mantlenetworkio/faucet-bot/op-service/cliapp"
	oplog "github.com/mantlenetworkio/faucet-bot/op-service/log"
)

type MainFn func(ctx context.Context, cfg *config.Config, logger log.Logger) (cliapp.Lifecycle, error)

// Main is the entrypoint into the faucet bot.
// This method returns a cliapp.LifecycleAction, to create an op-service CLI-lifecycle-managed service with.
func Main(version string, fn MainFn) cliapp.LifecycleAction {
	return func(cliCtx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
		if err := flags.CheckRequired(cliCtx); err != nil {
			return nil, err
		}
		cfg := flags.ConfigFromCLI(cliCtx, version)
		if err := cfg.Check(); err != nil {
			return nil, fmt.Errorf("invalid CLI flags: %w", err)
		}

		l := oplog.NewLogger(oplog.AppOut(cliCtx), cfg.LogConfig)
		oplog.SetGlobalLogHandler(l.Handler())
		opservice.ValidateEnvVars(flags.EnvVarPrefix, flags.Flags, l)

		l.Info("Initializing faucet bot", "version", version)
		return fn(cliCtx.Context, cfg, l)
	}
}
