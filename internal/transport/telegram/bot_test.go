package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dosug/internal/chunking"
	"dosug/internal/dialogue"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  func(c tgbotapi.Chattable) error
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if f.sendErr != nil {
		if err := f.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeBot) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

type recordingHandler struct {
	mu     sync.Mutex
	events []dialogue.Event
	done   chan struct{}
	want   int
}

func (r *recordingHandler) Handle(ctx context.Context, ev dialogue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

func command(chatID, userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: userID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}},
	}}
}

func text(chatID, userID int64, s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: s,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID},
	}}
}

func TestToEvent(t *testing.T) {
	b := New(newFakeBot(), Options{})
	key := dialogue.Key{ChatID: 10, UserID: 20}

	ev, ok := b.toEvent(command(10, 20, "/start"))
	require.True(t, ok)
	assert.Equal(t, dialogue.Event{Kind: dialogue.EventStart, Key: key}, ev)

	ev, ok = b.toEvent(command(10, 20, "/cancel"))
	require.True(t, ok)
	assert.Equal(t, dialogue.EventCancel, ev.Kind)

	_, ok = b.toEvent(command(10, 20, "/help"))
	assert.False(t, ok, "unknown commands are ignored")

	ev, ok = b.toEvent(text(10, 20, "до 2000 рублей"))
	require.True(t, ok)
	assert.Equal(t, dialogue.Event{Kind: dialogue.EventText, Key: key, Text: "до 2000 рублей"}, ev)

	_, ok = b.toEvent(text(10, 20, "  "))
	assert.False(t, ok)

	_, ok = b.toEvent(tgbotapi.Update{})
	assert.False(t, ok)
}

func TestToEvent_CallbackIsAnswered(t *testing.T) {
	api := newFakeBot()
	b := New(api, Options{})

	ev, ok := b.toEvent(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 20},
		Data:    "ru",
		Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: 10}},
	}})
	require.True(t, ok)
	assert.Equal(t, dialogue.Event{
		Kind:      dialogue.EventChoice,
		Key:       dialogue.Key{ChatID: 10, UserID: 20},
		Text:      "ru",
		MessageID: 77,
	}, ev)

	require.Len(t, api.requests, 1)
	cb, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", cb.CallbackQueryID)
}

func TestRun_DeliversInOrderAndStops(t *testing.T) {
	api := newFakeBot()
	b := New(api, Options{})
	h := &recordingHandler{done: make(chan struct{}), want: 4}

	api.updates <- command(1, 1, "/start")
	api.updates <- text(1, 1, "first")
	api.updates <- text(2, 2, "other chat")
	api.updates <- text(1, 1, "second")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx, h) }()

	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("events were not delivered")
	}
	cancel()
	require.NoError(t, <-errCh)

	h.mu.Lock()
	defer h.mu.Unlock()
	var chat1 []string
	for _, ev := range h.events {
		if ev.Key.ChatID == 1 {
			chat1 = append(chat1, ev.Kind.String()+":"+ev.Text)
		}
	}
	assert.Equal(t, []string{"start:", "text:first", "text:second"}, chat1)
	assert.True(t, api.stopped)
}

func TestSendText_Modes(t *testing.T) {
	api := newFakeBot()
	b := New(api, Options{})

	require.NoError(t, b.SendText(context.Background(), 5, "plain", dialogue.ModePlain))
	require.NoError(t, b.SendText(context.Background(), 5, "*rich*", dialogue.ModeRich))

	msgs := api.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "", msgs[0].ParseMode)
	assert.Equal(t, tgbotapi.ModeMarkdown, msgs[1].ParseMode)
	assert.Equal(t, int64(5), msgs[1].ChatID)
}

func TestSendText_FallsBackToPlain(t *testing.T) {
	api := newFakeBot()
	api.sendErr = func(c tgbotapi.Chattable) error {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ParseMode != "" {
			return errors.New("Bad Request: can't parse entities: Can't find end of the entity starting at byte offset 3")
		}
		return nil
	}
	b := New(api, Options{})

	require.NoError(t, b.SendText(context.Background(), 5, "1. *Jazz_Club", dialogue.ModeRich))

	msgs := api.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "", msgs[1].ParseMode)
	assert.Equal(t, "1. JazzClub", msgs[1].Text)
}

func TestSendText_OtherErrorsAreReturned(t *testing.T) {
	api := newFakeBot()
	api.sendErr = func(tgbotapi.Chattable) error { return errors.New("Forbidden: bot was blocked by the user") }
	b := New(api, Options{})

	err := b.SendText(context.Background(), 5, "*rich*", dialogue.ModeRich)
	assert.Error(t, err)
	assert.Len(t, api.messages(), 1, "no plain resend for non-parse errors")
}

func TestSendText_SplitsLongMessages(t *testing.T) {
	api := newFakeBot()
	b := New(api, Options{MaxMessageLen: 100})

	long := strings.Repeat("Парк Горького — прогулки у реки.\n", 10)
	require.NoError(t, b.SendText(context.Background(), 5, long, dialogue.ModePlain))

	msgs := api.messages()
	require.Greater(t, len(msgs), 1)
	for _, m := range msgs {
		assert.LessOrEqual(t, chunking.Length(m.Text), 100)
	}
}

func TestSendChoicesAndEdit(t *testing.T) {
	api := newFakeBot()
	b := New(api, Options{})

	require.NoError(t, b.SendChoices(context.Background(), 5, "Выберите язык", []dialogue.Choice{{Label: "Русский 🇷🇺", Data: "ru"}}))
	msgs := api.messages()
	require.Len(t, msgs, 1)
	kb, ok := msgs[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "Русский 🇷🇺", kb.InlineKeyboard[0][0].Text)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "ru", *kb.InlineKeyboard[0][0].CallbackData)

	require.NoError(t, b.EditText(context.Background(), 5, 42, "Отлично"))
	require.Len(t, api.requests, 1)
	edit, ok := api.requests[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 42, edit.MessageID)
	assert.Equal(t, "Отлично", edit.Text)
}

func TestSendText_CancelledContext(t *testing.T) {
	api := newFakeBot()
	b := New(api, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.SendText(ctx, 5, "hi", dialogue.ModePlain), context.Canceled)
	assert.Empty(t, api.messages())
}
