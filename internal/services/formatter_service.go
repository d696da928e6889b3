package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dosug/internal/catalog"
	"dosug/internal/llm"
	"dosug/internal/models"
)

// ErrFormatting wraps every failure to turn venues into a reply.
var ErrFormatting = errors.New("response formatting failed")

// DefaultFormatterTemperature leaves the model room for friendly wording.
const DefaultFormatterTemperature float32 = 0.7

// DefaultFormatterPrompt is the system instruction for the formatter.
const DefaultFormatterPrompt = `Ты — дружелюбный городской гид. Тебе передают список мест в формате JSON.
Оформи его как короткую подборку для пользователя в Telegram:
- для каждого места — название жирным (*Название*), одна-две фразы описания, адрес и цена, если они есть;
- нумерованный список, без вступления и без заключения;
- не придумывай мест, которых нет в списке, и не меняй их названия;
- используй только простую разметку Markdown: *жирный*, _курсив_.`

// formatterUserTemplate wraps the serialized venue list.
const formatterUserTemplate = "Список мест в формате JSON:\n%s\n\nСделай из этого списка красивый ответ для пользователя."

// LLMFormatter renders a venue list into user-facing prose with a chat model.
type LLMFormatter struct {
	completer   llm.Completer
	prompt      string
	temperature float32
}

// NewLLMFormatter creates a formatter. An empty prompt selects DefaultFormatterPrompt.
func NewLLMFormatter(completer llm.Completer, prompt string, temperature float32) *LLMFormatter {
	if prompt == "" {
		prompt = DefaultFormatterPrompt
	}
	return &LLMFormatter{completer: completer, prompt: prompt, temperature: temperature}
}

// Format returns the model's first answer verbatim.
func (f *LLMFormatter) Format(ctx context.Context, venues []catalog.Venue) (string, error) {
	if f.completer == nil {
		return "", fmt.Errorf("%w: no model configured", ErrFormatting)
	}

	payload, err := json.MarshalIndent(venues, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: serialize venues: %w", ErrFormatting, err)
	}

	resp, err := f.completer.Complete(ctx, llm.Request{
		Operation: models.ServiceFormatting,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: f.prompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf(formatterUserTemplate, payload)},
		},
		Temperature: f.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormatting, err)
	}

	text, err := llm.FirstChoice(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormatting, err)
	}
	return text, nil
}
