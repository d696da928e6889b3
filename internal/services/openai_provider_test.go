package services

import (
	"context"
	"errors"
	"testing"

	"dosug/internal/config"
	"dosug/internal/costtracker"
	"dosug/internal/llm"
	"dosug/internal/models"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock OpenAI Client ---
type mockOpenAIClient struct {
	mockResponse openai.ChatCompletionResponse
	mockError    error
	lastRequest  openai.ChatCompletionRequest
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastRequest = req
	if m.mockError != nil {
		return openai.ChatCompletionResponse{}, m.mockError
	}
	return m.mockResponse, nil
}

type recordingTracker struct {
	events []costtracker.CostEvent
}

func (r *recordingTracker) RecordCost(ctx context.Context, event costtracker.CostEvent) error {
	r.events = append(r.events, event)
	return nil
}

func TestOpenAIProvider_Complete(t *testing.T) {
	client := &mockOpenAIClient{mockResponse: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "first"}},
			{Message: openai.ChatCompletionMessage{Content: "second"}},
		},
		Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
	}}
	tracker := &recordingTracker{}
	pricing := map[string]config.PricingInfo{"GigaChat:latest": {InputPerToken: 1, OutputPerToken: 2}}
	p := NewOpenAIProviderWithClient(client, config.ProviderGigaChat, "GigaChat:latest", tracker, pricing)

	resp, err := p.Complete(context.Background(), llm.Request{
		Operation: models.ServiceClassification,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "sys"},
			{Role: llm.RoleUser, Content: "user"},
		},
		Temperature: 0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, []llm.Choice{{Content: "first"}, {Content: "second"}}, resp.Choices)
	assert.Equal(t, llm.Usage{InputTokens: 12, OutputTokens: 3}, resp.Usage)

	assert.Equal(t, "GigaChat:latest", client.lastRequest.Model)
	assert.InDelta(t, 0.1, client.lastRequest.Temperature, 1e-6)
	require.Len(t, client.lastRequest.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, client.lastRequest.Messages[0].Role)
	assert.Equal(t, "user", client.lastRequest.Messages[1].Content)

	require.Len(t, tracker.events, 1)
	assert.Equal(t, models.ServiceClassification, tracker.events[0].Operation)
	assert.Equal(t, config.ProviderGigaChat, tracker.events[0].Provider)
	assert.InDelta(t, 18.0, tracker.events[0].AmountUSD, 1e-9)
}

func TestOpenAIProvider_APIError(t *testing.T) {
	mockErr := errors.New("simulated API error 429 Too Many Requests")
	p := NewOpenAIProviderWithClient(&mockOpenAIClient{mockError: mockErr}, "openai", "gpt-test", nil, nil)

	_, err := p.Complete(context.Background(), llm.Request{Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, mockErr)
	assert.Contains(t, err.Error(), "openai chat completion failed")
}

func TestOpenAIProvider_NoUsageNoTracking(t *testing.T) {
	tracker := &recordingTracker{}
	client := &mockOpenAIClient{mockResponse: openai.ChatCompletionResponse{}}
	p := NewOpenAIProviderWithClient(client, "openai", "gpt-test", tracker, nil)

	resp, err := p.Complete(context.Background(), llm.Request{Messages: []llm.Message{{Role: llm.RoleUser, Content: "x"}}})
	require.NoError(t, err)
	assert.Empty(t, resp.Choices)
	assert.Empty(t, tracker.events)
}

func TestOpenAIProvider_Status(t *testing.T) {
	assert.Equal(t, llm.ProviderStatusActive, NewOpenAIProviderWithClient(&mockOpenAIClient{}, "openai", "m", nil, nil).Status())
	assert.Equal(t, llm.ProviderStatusDisabled, NewOpenAIProviderWithClient(nil, "openai", "m", nil, nil).Status())
}
