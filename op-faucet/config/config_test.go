package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	fconf "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/config"
	opmetrics "github.com/mantlenetworkio/faucet-bot/op-service/metrics"
)

func TestDefaultConfigIsIncomplete(t *testing.T) {
	cfg := DefaultCLIConfig()
	err := cfg.Check()
	require.ErrorIs(t, err, ErrMissingDiscordToken)
	require.ErrorContains(t, err, "missing faucet config")
}

func TestCheck(t *testing.T) {
	cfg := DefaultCLIConfig()
	cfg.DiscordToken = "token"
	cfg.Faucet = &fconf.YamlLoader{Path: "faucet.yaml"}
	require.NoError(t, cfg.Check())

	cfg.MetricsConfig.Enabled = true
	cfg.MetricsConfig.ListenPort = 70000
	require.ErrorIs(t, cfg.Check(), opmetrics.ErrInvalidPort)
}
