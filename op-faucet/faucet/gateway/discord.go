// Package gateway connects the faucet to the Discord gateway.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/ethereum/go-ethereum/log"

	ftypes "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/frontend"
)

// Intents needed to read the content of guild channel messages.
const Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent

type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *frontend.Message, r frontend.Replier)
}

// Discord delivers every message-create event to the handler, each on its own goroutine,
// and sends the handler replies as Discord message replies.
type Discord struct {
	log     log.Logger
	session *discordgo.Session
	handler MessageHandler

	// handlerCtx is passed to message handlers, and canceled when the gateway stops
	handlerCtx    context.Context
	cancelHandler context.CancelCauseFunc

	mu             sync.Mutex
	started        bool
	closed         bool
	inflight       sync.WaitGroup
	removeHandlers []func()
}

var _ frontend.Replier = (*Discord)(nil)

func NewDiscord(logger log.Logger, token string, handler MessageHandler) (*Discord, error) {
	if token == "" {
		return nil, errors.New("missing discord bot token")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	session.LogLevel = discordgo.LogWarning
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Discord{
		log:           logger,
		session:       session,
		handler:       handler,
		handlerCtx:    ctx,
		cancelHandler: cancel,
	}, nil
}

// Start subscribes to gateway events and opens the websocket session.
// An invalid token makes Start fail.
func (d *Discord) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("discord gateway is closed")
	}
	if d.started {
		return errors.New("discord gateway already started")
	}
	d.removeHandlers = append(d.removeHandlers,
		d.session.AddHandler(d.onReady),
		d.session.AddHandler(d.onMessageCreate),
	)
	d.log.Info("Connecting to Discord gateway")
	if err := d.session.Open(); err != nil {
		for _, remove := range d.removeHandlers {
			remove()
		}
		d.removeHandlers = nil
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	d.started = true
	return nil
}

// Stop stops accepting new messages, waits for in-flight handlers until ctx is done,
// cancels the ones still running, and closes the session.
func (d *Discord) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, remove := range d.removeHandlers {
		remove()
	}
	d.removeHandlers = nil
	started := d.started
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		d.log.Warn("Canceling in-flight faucet requests", "err", ctx.Err())
	}
	d.cancelHandler(errors.New("discord gateway stopped"))

	if !started {
		return nil
	}
	if err := d.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	d.log.Info("Disconnected from Discord gateway")
	return nil
}

// Reply answers the message in its channel, referencing the original message.
func (d *Discord) Reply(ctx context.Context, msg *frontend.Message, content string) error {
	ref := &discordgo.MessageReference{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
	}
	if _, err := d.session.ChannelMessageSendReply(msg.ChannelID, content, ref, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to reply to message %s: %w", msg.ID, err)
	}
	return nil
}

func (d *Discord) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	d.log.Info("Logged in to Discord", "user", r.User.String(), "guilds", len(r.Guilds))
}

func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	msg := toMessage(m.Message)
	if msg == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.inflight.Add(1)
	d.mu.Unlock()
	defer d.inflight.Done()
	d.handler.HandleMessage(d.handlerCtx, msg, d)
}

// toMessage converts a Discord message, or returns nil if it has no valid author.
func toMessage(m *discordgo.Message) *frontend.Message {
	if m == nil || m.Author == nil {
		return nil
	}
	author, err := ftypes.ParseUserID(m.Author.ID)
	if err != nil {
		return nil
	}
	return &frontend.Message{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		AuthorID:    author,
		AuthorName:  m.Author.Username,
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
	}
}
