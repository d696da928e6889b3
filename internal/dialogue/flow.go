package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dosug/internal/i18n"
	"dosug/internal/recommend"

	log "github.com/sirupsen/logrus"
)

// Recommender runs the interests pipeline.
type Recommender interface {
	Run(ctx context.Context, interests string) (*recommend.Result, error)
}

// step handles one event for a session and returns the next state.
// StateNone ends the conversation.
type step func(ctx context.Context, s *Session, ev Event) (State, error)

// Flow drives every conversation through the questionnaire. Events for one
// key must be delivered one at a time; different keys may be handled
// concurrently.
type Flow struct {
	recommender Recommender
	responder   Responder
	now         func() time.Time

	transitions map[State]map[EventKind]step

	mu       sync.Mutex
	sessions map[Key]*Session
}

// NewFlow creates a flow that replies through responder.
func NewFlow(recommender Recommender, responder Responder) *Flow {
	f := &Flow{
		recommender: recommender,
		responder:   responder,
		now:         time.Now,
		sessions:    make(map[Key]*Session),
	}
	f.transitions = map[State]map[EventKind]step{
		StateSelectLanguage: {EventChoice: f.selectLanguage, EventCancel: f.cancel},
		StateBudget:         {EventText: f.budget, EventCancel: f.cancel},
		StatePeople:         {EventText: f.people, EventCancel: f.cancel},
		StateDuration:       {EventText: f.duration, EventCancel: f.cancel},
		StateInterests:      {EventText: f.interests, EventCancel: f.cancel},
	}
	return f
}

// Handle applies one event. Events the current state does not accept are
// ignored. The returned error is a delivery failure; the session has
// already moved on when it is reported.
func (f *Flow) Handle(ctx context.Context, ev Event) error {
	logger := log.WithFields(log.Fields{"chat_id": ev.Key.ChatID, "user_id": ev.Key.UserID, "event": ev.Kind})

	if ev.Kind == EventStart {
		return f.start(ctx, ev)
	}

	f.mu.Lock()
	s := f.sessions[ev.Key]
	f.mu.Unlock()
	if s == nil {
		logger.Debug("Ignoring event without an active session")
		return nil
	}

	handler, ok := f.transitions[s.State][ev.Kind]
	if !ok {
		logger.WithField("state", s.State).Debug("Ignoring event not accepted in this state")
		return nil
	}

	next, err := handler(ctx, s, ev)
	f.mu.Lock()
	if next == StateNone {
		if f.sessions[ev.Key] == s {
			delete(f.sessions, ev.Key)
		}
	} else {
		s.State = next
		s.LastActive = f.now()
	}
	f.mu.Unlock()
	return err
}

func (f *Flow) start(ctx context.Context, ev Event) error {
	s := &Session{Key: ev.Key, State: StateSelectLanguage, LastActive: f.now()}

	f.mu.Lock()
	f.sessions[ev.Key] = s
	f.mu.Unlock()

	options := i18n.Options()
	choices := make([]Choice, 0, len(options))
	for _, o := range options {
		choices = append(choices, Choice{Label: o.Label, Data: o.Tag})
	}
	return f.responder.SendChoices(ctx, ev.Key.ChatID, i18n.For(i18n.DefaultLanguage).Welcome, choices)
}

func (f *Flow) selectLanguage(ctx context.Context, s *Session, ev Event) (State, error) {
	texts, ok := i18n.Lookup(ev.Text)
	if !ok {
		log.WithField("payload", ev.Text).Debug("Ignoring unknown language choice")
		return s.State, nil
	}
	s.Answers.Language = ev.Text

	// The edit only acknowledges the button; the budget question goes out regardless.
	editErr := f.responder.EditText(ctx, ev.Key.ChatID, ev.MessageID, texts.LanguageSelected)
	if editErr != nil {
		log.WithField("chat_id", ev.Key.ChatID).WithError(editErr).Warn("Failed to mark language as selected")
		editErr = fmt.Errorf("edit language message: %w", editErr)
	}
	sendErr := f.responder.SendText(ctx, ev.Key.ChatID, texts.AskBudget, ModePlain)
	return StateBudget, errors.Join(editErr, sendErr)
}

func (f *Flow) budget(ctx context.Context, s *Session, ev Event) (State, error) {
	s.Answers.Budget = ev.Text
	return StatePeople, f.responder.SendText(ctx, ev.Key.ChatID, i18n.For(s.Answers.Language).AskPeople, ModePlain)
}

func (f *Flow) people(ctx context.Context, s *Session, ev Event) (State, error) {
	s.Answers.People = ev.Text
	return StateDuration, f.responder.SendText(ctx, ev.Key.ChatID, i18n.For(s.Answers.Language).AskDuration, ModePlain)
}

func (f *Flow) duration(ctx context.Context, s *Session, ev Event) (State, error) {
	s.Answers.Duration = ev.Text
	return StateInterests, f.responder.SendText(ctx, ev.Key.ChatID, i18n.For(s.Answers.Language).AskInterests, ModePlain)
}

func (f *Flow) interests(ctx context.Context, s *Session, ev Event) (State, error) {
	s.Answers.Interests = ev.Text
	return StateNone, f.recommend(ctx, ev.Key.ChatID, s.Answers)
}

func (f *Flow) cancel(ctx context.Context, s *Session, ev Event) (State, error) {
	return StateNone, f.responder.SendText(ctx, ev.Key.ChatID, i18n.For(s.Answers.Language).Cancel, ModePlain)
}

// recommend runs the pipeline for completed answers and sends the outcome.
func (f *Flow) recommend(ctx context.Context, chatID int64, answers Answers) error {
	texts := i18n.For(answers.Language)
	logger := log.WithFields(log.Fields{
		"chat_id":  chatID,
		"budget":   answers.Budget,
		"people":   answers.People,
		"duration": answers.Duration,
	})

	if err := f.responder.SendText(ctx, chatID, texts.Processing, ModePlain); err != nil {
		return err
	}

	res, err := f.recommender.Run(ctx, answers.Interests)
	switch {
	case errors.Is(err, recommend.ErrNoVenues):
		logger.Info(err)
		return f.responder.SendText(ctx, chatID, texts.NoResults, ModePlain)
	case err != nil:
		logger.WithError(err).Error("Recommendation failed")
		return f.responder.SendText(ctx, chatID, texts.Error, ModePlain)
	}

	logger.WithField("category", res.Category).Infof("Sending %d recommendations", len(res.Venues))
	return f.responder.SendText(ctx, chatID, i18n.ComposeResult(texts, res.Text), ModeRich)
}

// ExpireIdle drops sessions with no activity for longer than maxIdle and
// returns how many were removed.
func (f *Flow) ExpireIdle(maxIdle time.Duration) int {
	cutoff := f.now().Add(-maxIdle)

	f.mu.Lock()
	defer f.mu.Unlock()
	removed := 0
	for key, s := range f.sessions {
		if s.LastActive.Before(cutoff) {
			delete(f.sessions, key)
			removed++
		}
	}
	return removed
}

// Active is the number of live sessions.
func (f *Flow) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// Session returns a copy of the session for key.
func (f *Flow) Session(key Key) (Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[key]
	if !ok {
		return Session{}, false
	}
	return *s, true
}
