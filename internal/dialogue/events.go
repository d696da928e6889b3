package dialogue

import "context"

// EventKind classifies inbound events.
type EventKind int

const (
	EventStart  EventKind = iota // entry command
	EventCancel                  // cancel command
	EventChoice                  // button press; payload in Text
	EventText                    // free text that is not a command
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventCancel:
		return "cancel"
	case EventChoice:
		return "choice"
	case EventText:
		return "text"
	default:
		return "unknown"
	}
}

// Event is one inbound interaction.
type Event struct {
	Kind EventKind
	Key  Key
	Text string
	// MessageID is the message that carried the pressed button (EventChoice only).
	MessageID int
}

// Mode selects how a message is rendered.
type Mode int

const (
	ModePlain Mode = iota
	ModeRich       // Markdown
)

// Choice is one button offered to the user.
type Choice struct {
	Label string
	Data  string
}

// Responder delivers outbound messages. Implemented by the transport.
type Responder interface {
	SendText(ctx context.Context, chatID int64, text string, mode Mode) error
	SendChoices(ctx context.Context, chatID int64, text string, choices []Choice) error
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
}
