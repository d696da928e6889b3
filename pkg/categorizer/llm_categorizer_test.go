package categorizer

import (
	"context"
	"errors"
	"testing"

	"dosug/internal/llm"
	"dosug/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Completer ---
type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*llm.Response)
	return resp, args.Error(1)
}

func (m *mockCompleter) Status() llm.ProviderStatus { return llm.ProviderStatusActive }
func (m *mockCompleter) Name() string               { return "mock" }
func (m *mockCompleter) ModelName() string          { return "mock-model" }

// --- End Mock Completer ---

func choices(contents ...string) *llm.Response {
	resp := &llm.Response{}
	for _, c := range contents {
		resp.Choices = append(resp.Choices, llm.Choice{Content: c})
	}
	return resp
}

func TestLLMCategorizer_Classify(t *testing.T) {
	m := &mockCompleter{}
	m.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Operation == models.ServiceClassification &&
			req.Temperature == DefaultTemperature &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == llm.RoleSystem &&
			req.Messages[0].Content == DefaultPrompt &&
			req.Messages[1].Role == llm.RoleUser &&
			req.Messages[1].Content == "хочу послушать живой джаз"
	})).Return(choices("  MUSIC\n", "THEATER"), nil).Once()

	c := NewLLMCategorizer(m, "", DefaultTemperature)
	label, err := c.Classify(context.Background(), "хочу послушать живой джаз")

	require.NoError(t, err)
	assert.Equal(t, CategoryMusic, label)
	m.AssertExpectations(t)
}

func TestLLMCategorizer_ReturnsUnknownLabelsAsIs(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		want    string
	}{
		{"unknown label", "SPACE_TRAVEL", "SPACE_TRAVEL"},
		{"lower case", " food ", "food"},
		{"whitespace only", " \n\t", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockCompleter{}
			m.On("Complete", mock.Anything, mock.Anything).Return(choices(tc.content), nil)

			label, err := NewLLMCategorizer(m, "custom prompt", 0.2).Classify(context.Background(), "anything")
			require.NoError(t, err)
			assert.Equal(t, tc.want, label)
		})
	}
}

func TestLLMCategorizer_UsesConfiguredPrompt(t *testing.T) {
	m := &mockCompleter{}
	m.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Messages[0].Content == "custom prompt" && req.Temperature == 0.2
	})).Return(choices("BAR"), nil).Once()

	_, err := NewLLMCategorizer(m, "custom prompt", 0.2).Classify(context.Background(), "cocktails")
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestLLMCategorizer_APIError(t *testing.T) {
	mockErr := errors.New("simulated API error 429 Too Many Requests")
	m := &mockCompleter{}
	m.On("Complete", mock.Anything, mock.Anything).Return(nil, mockErr)

	_, err := NewLLMCategorizer(m, "", DefaultTemperature).Classify(context.Background(), "jazz")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClassification)
	assert.ErrorIs(t, err, mockErr, "Returned error should wrap the client error")
	assert.Contains(t, err.Error(), "mock chat completion failed")
}

func TestLLMCategorizer_EmptyResponse(t *testing.T) {
	m := &mockCompleter{}
	m.On("Complete", mock.Anything, mock.Anything).Return(choices(), nil)

	_, err := NewLLMCategorizer(m, "", DefaultTemperature).Classify(context.Background(), "jazz")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClassification)
	assert.ErrorIs(t, err, llm.ErrNoChoices)
}

func TestLLMCategorizer_NoCompleter(t *testing.T) {
	_, err := NewLLMCategorizer(nil, "", DefaultTemperature).Classify(context.Background(), "jazz")
	assert.ErrorIs(t, err, ErrClassification)
}
