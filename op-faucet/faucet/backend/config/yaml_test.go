package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
)

func TestYamlLoader_Load(t *testing.T) {
	x := &YamlLoader{Path: filepath.Join(".", "testdata", "config.yaml")}
	result, err := x.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, result.Check())
	require.Equal(t, "http://localhost:8545", result.ELRPC)
	require.Equal(t, uint64(10143), result.ChainID)
	require.Equal(t, eth.GWei(500_000_000), result.Amount)
	require.Equal(t, 24*time.Hour, result.Cooldown)
	require.Equal(t, 2*time.Minute, result.TxCfg.ConfirmTimeout)
	require.Equal(t, DefaultReceiptQueryInterval, result.TxCfg.ReceiptQueryInterval, "default applied")
	require.Equal(t, "1234567890", result.Chat.ChannelID)
	require.Equal(t, "!faucet", result.Chat.Command)
}

func TestYamlLoader_NotFound(t *testing.T) {
	x := &YamlLoader{Path: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := x.Load(context.Background())
	require.ErrorContains(t, err, "failed to read config")
}

func TestYamlLoader_Invalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "invalid.yaml")
	// Strictly speaking a valid yaml map, but missing all the data.
	// The config decoder is strict
	require.NoError(t, os.WriteFile(p, []byte("foobar: invalid"), 0755))

	x := &YamlLoader{Path: p}
	_, err := x.Load(context.Background())
	require.ErrorContains(t, err, "field foobar not found")
}

func TestYamlLoader_InvalidAmount(t *testing.T) {
	p := filepath.Join(t.TempDir(), "amount.yaml")
	require.NoError(t, os.WriteFile(p, []byte("amount: lots"), 0755))

	x := &YamlLoader{Path: p}
	_, err := x.Load(context.Background())
	require.ErrorIs(t, err, eth.ErrInvalidEtherText)
}

func TestYamlLoader_Cooldown(t *testing.T) {
	write := func(t *testing.T, body string) *YamlLoader {
		p := filepath.Join(t.TempDir(), "cooldown.yaml")
		require.NoError(t, os.WriteFile(p, []byte(body), 0755))
		return &YamlLoader{Path: p}
	}
	t.Run("omitted", func(t *testing.T) {
		result, err := write(t, "amount: \"1\"").Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, DefaultCooldown, result.Cooldown)
	})
	t.Run("explicit zero", func(t *testing.T) {
		result, err := write(t, "amount: \"1\"\ncooldown: 0s").Load(context.Background())
		require.NoError(t, err)
		require.Zero(t, result.Cooldown)
		require.ErrorIs(t, result.Check(), ErrInvalidCooldown)
	})
}
