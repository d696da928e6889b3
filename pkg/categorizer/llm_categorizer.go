package categorizer

import (
	"context"
	"fmt"
	"strings"

	"dosug/internal/llm"
	"dosug/internal/models"

	log "github.com/sirupsen/logrus"
)

// DefaultTemperature keeps the label choice close to deterministic.
const DefaultTemperature float32 = 0.1

// DefaultPrompt is the system instruction sent with every classification.
const DefaultPrompt = `Ты — классификатор интересов для сервиса досуга.
Пользователь описывает, чем хочет заняться. Определи ОДНУ наиболее подходящую категорию из списка:
MUSIC — концерты, живая музыка, клубы;
THEATER — театр, спектакли, стендап;
MUSEUM — музеи, выставки, галереи, искусство;
CINEMA — кино, фильмы;
FOOD — рестораны, кафе, вкусная еда;
BAR — бары, пабы, коктейли;
SPORT — спорт, активный отдых, квесты;
NATURE — парки, прогулки, природа;
KIDS — развлечения для детей и семей;
GENERAL — если ничего не подходит.
Ответь только названием категории латинскими заглавными буквами, без пояснений и знаков препинания.`

// LLMCategorizer implements Classifier with a chat completion model.
type LLMCategorizer struct {
	completer   llm.Completer
	prompt      string
	temperature float32
}

var _ Classifier = (*LLMCategorizer)(nil)

// NewLLMCategorizer creates a classifier. An empty prompt selects DefaultPrompt.
func NewLLMCategorizer(completer llm.Completer, prompt string, temperature float32) *LLMCategorizer {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &LLMCategorizer{
		completer:   completer,
		prompt:      prompt,
		temperature: temperature,
	}
}

// Classify returns the trimmed first answer of the model. The label is not
// checked against the known categories.
func (c *LLMCategorizer) Classify(ctx context.Context, interests string) (string, error) {
	if c.completer == nil {
		return "", fmt.Errorf("%w: categorizer is not initialized with a model", ErrClassification)
	}

	resp, err := c.completer.Complete(ctx, llm.Request{
		Operation: models.ServiceClassification,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: c.prompt},
			{Role: llm.RoleUser, Content: interests},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s chat completion failed: %w", ErrClassification, c.completer.Name(), err)
	}

	content, err := llm.FirstChoice(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrClassification, err)
	}

	label := strings.TrimSpace(content)
	log.Debugf("Classified interests as '%s' using %s", label, c.completer.ModelName())
	return label, nil
}
