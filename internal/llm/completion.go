// Package llm defines the boundary to remote chat-completion models.
package llm

import (
	"context"
	"errors"
)

// ErrNoChoices is returned when the model answers with zero candidates.
var ErrNoChoices = errors.New("no choices returned from model")

// Role defines the role of the message sender (system, user, assistant).
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single message in a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// Request is one chat completion call. Operation names the caller
// ("classification", "formatting") for usage accounting only.
type Request struct {
	Operation   string
	Messages    []Message
	Temperature float32
}

// Choice is one candidate answer.
type Choice struct {
	Content string
}

// Usage reports token counts for a call, when the provider returns them.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response carries the candidates in provider order.
type Response struct {
	Choices []Choice
	Usage   Usage
}

// ProviderStatus describes whether a provider can currently serve calls.
type ProviderStatus int

const (
	ProviderStatusUnknown  ProviderStatus = iota
	ProviderStatusActive                  // configured and ready
	ProviderStatusDisabled                // not configured
)

func (s ProviderStatus) String() string {
	switch s {
	case ProviderStatusActive:
		return "active"
	case ProviderStatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Completer is implemented by every chat model provider.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Status() ProviderStatus
	Name() string      // provider name, e.g. "gigachat", "gemini"
	ModelName() string // specific model used
}

// FirstChoice returns the content of the first candidate.
func FirstChoice(resp *Response) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}
