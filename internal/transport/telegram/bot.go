// Package telegram connects the dialogue flow to the Telegram Bot API using
// long polling.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dosug/internal/chunking"
	"dosug/internal/dialogue"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Commands the bot reacts to.
const (
	CommandStart  = "start"
	CommandCancel = "cancel"
)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler consumes dialogue events. Implemented by *dialogue.Flow.
type Handler interface {
	Handle(ctx context.Context, ev dialogue.Event) error
}

// Options configures a Bot.
type Options struct {
	PollTimeout   time.Duration // long polling timeout
	MaxMessageLen int           // split outbound messages longer than this
}

// Bot receives updates, turns them into dialogue events and implements
// dialogue.Responder for the replies.
type Bot struct {
	api         botAPI
	pollTimeout time.Duration
	maxLen      int
}

var _ dialogue.Responder = (*Bot)(nil)

// NewBotAPI connects to Telegram with token.
func NewBotAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	api.Debug = debug
	log.Infof("Authorized on Telegram account @%s", api.Self.UserName)
	return api, nil
}

// New wraps an API client.
func New(api botAPI, opts Options) *Bot {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 60 * time.Second
	}
	if opts.MaxMessageLen <= 0 || opts.MaxMessageLen > chunking.TelegramMessageLimit {
		opts.MaxMessageLen = chunking.DefaultLimit
	}
	return &Bot{api: api, pollTimeout: opts.PollTimeout, maxLen: opts.MaxMessageLen}
}

// Run polls for updates and feeds them to h until ctx is cancelled. It
// returns after in-flight events have been handled.
func (b *Bot) Run(ctx context.Context, h Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(b.pollTimeout / time.Second)
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := b.api.GetUpdatesChan(cfg)

	d := newDispatcher(func(ctx context.Context, ev dialogue.Event) {
		if err := h.Handle(ctx, ev); err != nil {
			log.WithFields(log.Fields{"chat_id": ev.Key.ChatID, "event": ev.Kind}).WithError(err).Error("Failed to handle event")
		}
	})
	defer d.wait()

	log.Info("Telegram bot started, waiting for updates")
	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping Telegram bot")
			b.api.StopReceivingUpdates()
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := b.toEvent(u)
			if !ok {
				continue
			}
			d.dispatch(ctx, ev)
		}
	}
}

// toEvent maps an update to a dialogue event. Callback queries are answered
// here so the client stops its loading indicator.
func (b *Bot) toEvent(u tgbotapi.Update) (dialogue.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			log.WithError(err).Warn("Failed to answer callback query")
		}
		if q.Message == nil || q.Message.Chat == nil || q.From == nil {
			return dialogue.Event{}, false
		}
		return dialogue.Event{
			Kind:      dialogue.EventChoice,
			Key:       dialogue.Key{ChatID: q.Message.Chat.ID, UserID: q.From.ID},
			Text:      q.Data,
			MessageID: q.Message.MessageID,
		}, true

	case u.Message != nil:
		m := u.Message
		if m.Chat == nil || m.From == nil {
			return dialogue.Event{}, false
		}
		key := dialogue.Key{ChatID: m.Chat.ID, UserID: m.From.ID}
		if m.IsCommand() {
			switch m.Command() {
			case CommandStart:
				return dialogue.Event{Kind: dialogue.EventStart, Key: key}, true
			case CommandCancel:
				return dialogue.Event{Kind: dialogue.EventCancel, Key: key}, true
			default:
				return dialogue.Event{}, false
			}
		}
		if strings.TrimSpace(m.Text) == "" {
			return dialogue.Event{}, false
		}
		return dialogue.Event{Kind: dialogue.EventText, Key: key, Text: m.Text}, true
	}
	return dialogue.Event{}, false
}
