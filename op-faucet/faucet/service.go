package faucet

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/faucet-bot/op-faucet/config"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend"
	fconf "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/config"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/frontend"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/gateway"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/ratelimit"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/metrics"
	"github.com/mantlenetworkio/faucet-bot/op-service/cliapp"
	"github.com/mantlenetworkio/faucet-bot/op-service/clock"
	"github.com/mantlenetworkio/faucet-bot/op-service/httputil"
	opmetrics "github.com/mantlenetworkio/faucet-bot/op-service/metrics"
)

// chatGateway delivers chat messages to the faucet frontend.
type chatGateway interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type gatewayFactory func(logger log.Logger, token string, handler gateway.MessageHandler) (chatGateway, error)

func discordGateway(logger log.Logger, token string, handler gateway.MessageHandler) (chatGateway, error) {
	d, err := gateway.NewDiscord(logger, token, handler)
	if err != nil {
		return nil, err
	}
	return d, nil
}

type Service struct {
	closing atomic.Bool

	log log.Logger

	metrics    metrics.Metricer
	metricsSrv *httputil.HTTPServer

	faucetCfg *fconf.Config
	faucet    *backend.Faucet
	table     *ratelimit.Table
	frontend  *frontend.ChatFrontend
	gateway   chatGateway
}

var _ cliapp.Lifecycle = (*Service)(nil)

func FromConfig(ctx context.Context, cfg *config.Config, logger log.Logger) (*Service, error) {
	return fromConfig(ctx, cfg, logger, discordGateway)
}

func fromConfig(ctx context.Context, cfg *config.Config, logger log.Logger, newGateway gatewayFactory) (*Service, error) {
	su := &Service{log: logger}
	if err := su.initFromCLIConfig(ctx, cfg, newGateway); err != nil {
		return nil, errors.Join(err, su.Stop(ctx)) // try to clean up our failed initialization attempt
	}
	return su, nil
}

func (s *Service) initFromCLIConfig(ctx context.Context, cfg *config.Config, newGateway gatewayFactory) error {
	s.initMetrics(cfg)
	if err := s.initMetricsServer(cfg); err != nil {
		return fmt.Errorf("failed to start Metrics server: %w", err)
	}
	if err := s.initFaucet(ctx, cfg); err != nil {
		return fmt.Errorf("failed to start faucet: %w", err)
	}
	s.initFrontend()
	if err := s.initGateway(cfg, newGateway); err != nil {
		return fmt.Errorf("failed to setup chat gateway: %w", err)
	}
	return nil
}

func (s *Service) initMetrics(cfg *config.Config) {
	if cfg.MetricsConfig.Enabled {
		procName := "default"
		s.metrics = metrics.NewMetrics(procName)
		s.metrics.RecordInfo(cfg.Version)
	} else {
		s.metrics = metrics.NoopMetrics{}
	}
}

func (s *Service) initMetricsServer(cfg *config.Config) error {
	if !cfg.MetricsConfig.Enabled {
		s.log.Info("Metrics disabled")
		return nil
	}
	m, ok := s.metrics.(opmetrics.RegistryMetricer)
	if !ok {
		return fmt.Errorf("metrics were enabled, but metricer %T does not expose registry for metrics-server", s.metrics)
	}
	s.log.Debug("Starting metrics server", "addr", cfg.MetricsConfig.ListenAddr, "port", cfg.MetricsConfig.ListenPort)
	metricsSrv, err := opmetrics.StartServer(m.Registry(), cfg.MetricsConfig.ListenAddr, cfg.MetricsConfig.ListenPort)
	if err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	s.log.Info("Started metrics server", "addr", metricsSrv.Addr())
	s.metricsSrv = metricsSrv
	return nil
}

func (s *Service) initFaucet(ctx context.Context, cfg *config.Config) error {
	fCfg, err := cfg.Faucet.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load faucet config: %w", err)
	}
	fCfg.ApplyDefaults()
	if err := fCfg.Check(); err != nil {
		return fmt.Errorf("invalid faucet config: %w", err)
	}
	f, err := backend.FaucetFromConfig(ctx, s.log, s.metrics, fCfg)
	if err != nil {
		return fmt.Errorf("failed to setup faucet wallet: %w", err)
	}
	s.faucetCfg = fCfg
	s.faucet = f
	return nil
}

func (s *Service) initFrontend() {
	s.table = new(ratelimit.Table)
	s.frontend = frontend.NewChatFrontend(s.log, s.metrics, clock.SystemClock, s.faucetCfg, s.faucet, s.table)
}

func (s *Service) initGateway(cfg *config.Config, newGateway gatewayFactory) error {
	g, err := newGateway(s.log.New("gateway", "discord"), cfg.DiscordToken, s.frontend)
	if err != nil {
		return err
	}
	s.gateway = g
	return nil
}

func (s *Service) Start(ctx context.Context) error {
	balance, err := s.faucet.Balance(ctx)
	if err != nil {
		s.log.Warn("Failed to read faucet balance", "err", err)
	} else if balance.Lt(s.faucetCfg.Amount) {
		s.log.Error("Faucet wallet cannot fund a single request", "balance", balance, "amount", s.faucetCfg.Amount)
	} else {
		s.log.Info("Faucet wallet funded", "balance", balance)
	}

	s.log.Info("Starting chat gateway", "channel", s.faucetCfg.Chat.ChannelID, "command", s.faucetCfg.Chat.Command)
	if err := s.gateway.Start(ctx); err != nil {
		return fmt.Errorf("unable to start chat gateway: %w", err)
	}

	s.metrics.RecordUp()
	s.log.Info("Faucet bot started",
		"wallet", s.faucet.Address(), "amount", s.faucetCfg.Amount.EtherString(), "symbol", s.faucetCfg.Symbol,
		"cooldown", s.faucetCfg.Cooldown)
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if !s.closing.CompareAndSwap(false, true) {
		s.log.Warn("Already closing")
		return nil // already closing
	}
	s.log.Info("Stopping faucet bot")
	var result error
	if s.gateway != nil {
		if err := s.gateway.Stop(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop chat gateway: %w", err))
		}
	}
	s.log.Info("Stopped chat gateway")
	if s.faucet != nil {
		s.faucet.Close()
	}
	if s.metricsSrv != nil {
		if err := s.metricsSrv.Stop(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop metrics server: %w", err))
		}
	}
	s.log.Info("Faucet bot stopped", "users", s.usersServed())
	return result
}

func (s *Service) Stopped() bool {
	return s.closing.Load()
}

func (s *Service) usersServed() int {
	if s.table == nil {
		return 0
	}
	return s.table.Len()
}

// Wallet returns the address funds are sent from.
func (s *Service) Wallet() string {
	return s.faucet.Address().Hex()
}

// MetricsEndpoint returns the metrics HTTP endpoint, or an empty string if metrics are disabled.
func (s *Service) MetricsEndpoint() string {
	if s.metricsSrv == nil {
		return ""
	}
	return s.metricsSrv.HTTPEndpoint()
}
