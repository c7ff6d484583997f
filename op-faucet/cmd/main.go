package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/faucet-bot/op-faucet/config"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/flags"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/metrics"
	opservice "github.com/mantlenetworkio/faucet-bot/op-service"
	"github.com/mantlenetworkio/faucet-bot/op-service/cliapp"
	"github.com/mantlenetworkio/faucet-bot/op-service/ctxinterrupt"
	oplog "github.com/mantlenetworkio/faucet-bot/op-service/log"
	"github.com/mantlenetworkio/faucet-bot/op-service/metrics/doc"
)

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	ctx := ctxinterrupt.WithSignalWaiterMain(context.Background())
	err := run(ctx, os.Stdout, os.Stderr, os.Args, fromConfig)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx context.Context, w io.Writer, ew io.Writer, args []string, fn faucet.MainFn) error {
	oplog.SetupDefaults()

	// the env file may provide any of the flag env vars, so it is loaded before the flags are parsed
	if err := flags.LoadEnvFile(flags.EnvFileFromArgs(args)); err != nil {
		return err
	}

	app := cli.NewApp()
	app.Writer = w
	app.ErrWriter = ew
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Version = opservice.FormatVersion(Version, GitCommit, GitDate, "")
	app.Name = "faucet-bot"
	app.Usage = "Discord bot that sends test currency to the wallets users ask for."
	app.Description = "Listens to one Discord channel for `/faucet <wallet_address>` commands,\n" +
		" and sends a fixed amount from the faucet wallet, at most once per cooldown per user."
	app.Action = cliapp.LifecycleCmd(faucet.Main(app.Version, fn))
	app.Commands = []*cli.Command{
		{
			Name:        "doc",
			Subcommands: doc.NewSubcommands(metrics.NewMetrics("default")),
		},
	}
	return app.RunContext(ctx, args)
}

func fromConfig(ctx context.Context, cfg *config.Config, logger log.Logger) (cliapp.Lifecycle, error) {
	return faucet.FromConfig(ctx, cfg, logger)
}
