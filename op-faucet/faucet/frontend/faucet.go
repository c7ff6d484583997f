package frontend

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/config"
	ftypes "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/metrics"
	"github.com/mantlenetworkio/faucet-bot/op-service/clock"
	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
)

// Request outcomes, as recorded in metrics.
const (
	OutcomeUsage          = "usage"
	OutcomeInvalidAddress = "invalid_address"
	OutcomeCooldown       = "cooldown"
	OutcomeOutOfFunds     = "out_of_funds"
	OutcomeFailed         = "failed"
	OutcomeUnconfirmed    = "unconfirmed"
	OutcomeSent           = "sent"
)

type FaucetBackend interface {
	Balance(ctx context.Context) (eth.ETH, error)
	Submit(ctx context.Context, request *ftypes.FaucetRequest) (common.Hash, error)
	AwaitConfirmation(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// RateLimitTable remembers the last successful submission of each user.
type RateLimitTable interface {
	// Lock serializes requests of one user. The returned unlock may be called more than once.
	Lock(id ftypes.UserID) (unlock func())
	Remaining(id ftypes.UserID, now time.Time, cooldown time.Duration) time.Duration
	Set(id ftypes.UserID, at time.Time)
}

// Message is an inbound chat message, independent of the chat platform.
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    ftypes.UserID
	AuthorName  string
	AuthorIsBot bool
	Content     string
}

// Replier answers a chat message in its channel.
type Replier interface {
	Reply(ctx context.Context, msg *Message, content string) error
}

// ChatFrontend turns faucet commands into funding transactions.
type ChatFrontend struct {
	log   log.Logger
	m     metrics.Metricer
	clock clock.Clock

	cfg   *config.Config
	b     FaucetBackend
	table RateLimitTable
}

func NewChatFrontend(logger log.Logger, m metrics.Metricer, clk clock.Clock, cfg *config.Config, b FaucetBackend, table RateLimitTable) *ChatFrontend {
	return &ChatFrontend{
		log:   logger,
		m:     m,
		clock: clk,
		cfg:   cfg,
		b:     b,
		table: table,
	}
}

// HandleMessage answers a faucet command with exactly one reply.
// Messages outside the faucet channel, from bots, or without the command keyword are ignored.
// Safe for concurrent use; each message may be handled on its own goroutine.
func (f *ChatFrontend) HandleMessage(ctx context.Context, msg *Message, r Replier) {
	if msg.ChannelID != f.cfg.Chat.ChannelID || msg.AuthorIsBot {
		return
	}
	cmd, ok := ParseCommand(msg.Content, f.cfg.Chat.Command)
	if !ok {
		return
	}
	logger := f.log.New("user", msg.AuthorID, "name", msg.AuthorName, "msg", msg.ID)
	outcome, reply := f.handleCommand(ctx, logger, msg, cmd)
	f.m.RecordRequest(outcome)
	logger.Debug("Handled faucet command", "outcome", outcome)
	if err := r.Reply(ctx, msg, reply); err != nil {
		logger.Warn("Failed to send reply", "outcome", outcome, "err", err)
	}
}

func (f *ChatFrontend) handleCommand(ctx context.Context, logger log.Logger, msg *Message, cmd Command) (outcome string, reply string) {
	if len(cmd.Args) != 1 {
		return OutcomeUsage, usageReply(f.cfg.Chat.Command)
	}
	target, err := ParseAddress(cmd.Args[0])
	if err != nil {
		return OutcomeInvalidAddress, replyInvalidAddress
	}

	// Held from the cooldown check until the entry is written,
	// so a second request of the same user observes the first submission.
	unlock := f.table.Lock(msg.AuthorID)
	defer unlock()

	now := f.clock.Now()
	if remaining := f.table.Remaining(msg.AuthorID, now, f.cfg.Cooldown); remaining > 0 {
		return OutcomeCooldown, cooldownReply(remaining)
	}

	balance, err := f.b.Balance(ctx)
	if err != nil {
		logger.Error("Failed to get faucet balance", "err", err)
		return OutcomeFailed, failedReply(f.cfg.Symbol)
	}
	if balance.Lt(f.cfg.Amount) {
		logger.Error("Insufficient balance", "balance", balance, "amount", f.cfg.Amount)
		return OutcomeOutOfFunds, replyOutOfFunds
	}

	req := &ftypes.FaucetRequest{
		Requester:     msg.AuthorID,
		RequesterName: msg.AuthorName,
		Target:        target,
		Amount:        f.cfg.Amount,
		Arrival:       now,
	}
	onDone := f.m.RecordFundAction(req.Amount)
	txHash, err := f.b.Submit(ctx, req)
	if err != nil {
		onDone(err)
		logger.Error("Failed to send funds", "to", target, "err", err)
		return OutcomeFailed, failedReply(f.cfg.Symbol)
	}
	// The cooldown starts once the ledger accepted the transfer, whatever the confirmation outcome.
	f.table.Set(msg.AuthorID, f.clock.Now())
	unlock()

	_, err = f.b.AwaitConfirmation(ctx, txHash)
	onDone(err)
	if err != nil {
		logger.Error("Funding tx not confirmed", "to", target, "tx", txHash, "err", err)
		return OutcomeUnconfirmed, failedReply(f.cfg.Symbol)
	}
	return OutcomeSent, sentReply(req.Amount, f.cfg.Symbol, cmd.Args[0], f.cfg.TxURL(txHash.Hex()))
}
