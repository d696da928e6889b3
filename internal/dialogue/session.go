// Package dialogue implements the per-conversation questionnaire that
// collects a user's preferences and hands their interests to the pipeline.
package dialogue

import "time"

// State is the step a conversation is waiting on.
type State int

const (
	StateNone State = iota // no conversation, or a finished one
	StateSelectLanguage
	StateBudget
	StatePeople
	StateDuration
	StateInterests
)

func (s State) String() string {
	switch s {
	case StateSelectLanguage:
		return "select_language"
	case StateBudget:
		return "budget"
	case StatePeople:
		return "people"
	case StateDuration:
		return "duration"
	case StateInterests:
		return "interests"
	default:
		return "none"
	}
}

// Key identifies one conversation: a user in a chat.
type Key struct {
	ChatID int64
	UserID int64
}

// Answers are the values collected over one completed questionnaire.
type Answers struct {
	Language  string
	Budget    string
	People    string
	Duration  string
	Interests string
}

// Session is the state of one conversation.
type Session struct {
	Key        Key
	State      State
	Answers    Answers
	LastActive time.Time
}
