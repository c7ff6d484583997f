package config

import (
	"errors"

	fconf "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/config"
	oplog "github.com/mantlenetworkio/faucet-bot/op-service/log"
	opmetrics "github.com/mantlenetworkio/faucet-bot/op-service/metrics"
)

var ErrMissingDiscordToken = errors.New("missing discord bot token")

type Config struct {
	Version string

	LogConfig     oplog.CLIConfig
	MetricsConfig opmetrics.CLIConfig

	// DiscordToken authenticates the bot with the Discord gateway.
	DiscordToken string

	Faucet fconf.Loader
}

func (c *Config) Check() error {
	var result error
	result = errors.Join(result, c.MetricsConfig.Check())
	if c.DiscordToken == "" {
		result = errors.Join(result, ErrMissingDiscordToken)
	}
	if c.Faucet == nil {
		result = errors.Join(result, errors.New("missing faucet config"))
	}
	return result
}

func DefaultCLIConfig() *Config {
	return &Config{
		Version:       "dev",
		LogConfig:     oplog.DefaultCLIConfig(),
		MetricsConfig: opmetrics.DefaultCLIConfig(),
	}
}
