package faucet

import (
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mantlenetworkio/faucet-bot/op-faucet/config"
	fconf "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/config"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/frontend"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/gateway"
	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
	opmetrics "github.com/mantlenetworkio/faucet-bot/op-service/metrics"
	"github.com/mantlenetworkio/faucet-bot/op-service/testlog"
)

const (
	// anvil dev account 0
	testKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testWallet  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testChainID = 10143
	testChannel = "1373624652496240681"
)

// ethAPI serves the subset of the eth namespace the service reads at startup.
type ethAPI struct {
	chainID *big.Int
	balance *big.Int
}

func (a *ethAPI) ChainId() *hexutil.Big {
	return (*hexutil.Big)(a.chainID)
}

func (a *ethAPI) GetBalance(addr common.Address, block string) *hexutil.Big {
	return (*hexutil.Big)(a.balance)
}

func startRPC(t *testing.T, api *ethAPI) string {
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", api))
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(func() {
		httpSrv.Close()
		srv.Stop()
	})
	return httpSrv.URL
}

type fakeGateway struct {
	mu      sync.Mutex
	token   string
	handler gateway.MessageHandler
	started bool
	stopped int
	err     error
}

func (g *fakeGateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.started = true
	return nil
}

func (g *fakeGateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped++
	return nil
}

func (g *fakeGateway) factory(logger log.Logger, token string, handler gateway.MessageHandler) (chatGateway, error) {
	g.token = token
	g.handler = handler
	return g, nil
}

type recordingReplier struct {
	replies []string
}

func (r *recordingReplier) Reply(ctx context.Context, msg *frontend.Message, content string) error {
	r.replies = append(r.replies, content)
	return nil
}

func testConfig(rpcURL string) *config.Config {
	return &config.Config{
		Version:      "v0.0.1",
		DiscordToken: "test-token",
		Faucet: &fconf.Config{
			ELRPC:   rpcURL,
			ChainID: testChainID,
			TxCfg: fconf.TxConfig{
				PrivateKey: testKey,
			},
			Amount:   eth.OneTenthEther,
			Cooldown: fconf.DefaultCooldown,
			Chat: fconf.ChatConfig{
				ChannelID: testChannel,
			},
		},
		MetricsConfig: opmetrics.CLIConfig{
			Enabled:    true,
			ListenAddr: "127.0.0.1",
			ListenPort: 0,
		},
	}
}

// TestService is a quick smoke-test to check the service is up and running
func TestService(t *testing.T) {
	logger := testlog.Logger(t, log.LevelInfo)
	rpcURL := startRPC(t, &ethAPI{chainID: big.NewInt(testChainID), balance: eth.OneEther.ToBig()})
	gw := new(fakeGateway)

	srv, err := fromConfig(context.Background(), testConfig(rpcURL), logger, gw.factory)
	require.NoError(t, err)
	require.Equal(t, "test-token", gw.token)
	require.Equal(t, common.HexToAddress(testWallet).Hex(), srv.Wallet())
	require.NotEmpty(t, srv.MetricsEndpoint())

	require.NoError(t, srv.Start(context.Background()))
	require.True(t, gw.started)

	// the gateway delivers messages to the faucet frontend
	var r recordingReplier
	gw.handler.HandleMessage(context.Background(), &frontend.Message{
		ID:        "1",
		ChannelID: testChannel,
		AuthorID:  "111",
		Content:   "/faucet",
	}, &r)
	require.Equal(t, []string{"Usage: `/faucet <wallet_address>`"}, r.replies)

	require.False(t, srv.Stopped())
	require.NoError(t, srv.Stop(context.Background()))
	require.True(t, srv.Stopped())
	require.NoError(t, srv.Stop(context.Background()), "stop is idempotent")
	require.Equal(t, 1, gw.stopped)
	require.Empty(t, srv.MetricsEndpoint())
}

func TestServiceChainIDMismatch(t *testing.T) {
	logger := testlog.Logger(t, log.LevelInfo)
	rpcURL := startRPC(t, &ethAPI{chainID: big.NewInt(1), balance: eth.OneEther.ToBig()})
	cfg := testConfig(rpcURL)
	cfg.MetricsConfig.Enabled = false

	_, err := fromConfig(context.Background(), cfg, logger, new(fakeGateway).factory)
	require.ErrorContains(t, err, "unexpected chain ID")
}

func TestServiceInvalidFaucetConfig(t *testing.T) {
	logger := testlog.Logger(t, log.LevelInfo)
	cfg := testConfig("http://127.0.0.1:0")
	cfg.MetricsConfig.Enabled = false
	cfg.Faucet.(*fconf.Config).Chat.ChannelID = ""

	_, err := fromConfig(context.Background(), cfg, logger, new(fakeGateway).factory)
	require.ErrorIs(t, err, fconf.ErrMissingChannel)
}

func TestServiceGatewayStartFailure(t *testing.T) {
	logger := testlog.Logger(t, log.LevelInfo)
	rpcURL := startRPC(t, &ethAPI{chainID: big.NewInt(testChainID), balance: big.NewInt(0)})
	cfg := testConfig(rpcURL)
	cfg.MetricsConfig.Enabled = false
	gw := &fakeGateway{err: errors.New("authentication failed")}

	srv, err := fromConfig(context.Background(), cfg, logger, gw.factory)
	require.NoError(t, err)
	require.ErrorContains(t, srv.Start(context.Background()), "authentication failed")
	require.NoError(t, srv.Stop(context.Background()))
	require.Equal(t, 1, gw.stopped)
}
