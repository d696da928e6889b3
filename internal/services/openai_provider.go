package services

import (
	"context"
	"fmt"
	"net/http"

	"dosug/internal/config"
	"dosug/internal/costtracker"
	"dosug/internal/llm"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// chatCompletionClient is the part of *openai.Client the provider uses.
type chatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider implements llm.Completer for any OpenAI-compatible chat API,
// including GigaChat.
type OpenAIProvider struct {
	client chatCompletionClient
	name   string
	model  string
	usageRecorder
}

var _ llm.Completer = (*OpenAIProvider)(nil)

// OpenAIOptions configures NewOpenAIProvider.
type OpenAIOptions struct {
	Name       string // provider name used in logs and usage records
	APIKey     string
	BaseURL    string // empty means api.openai.com
	Model      string
	HTTPClient *http.Client
	Tracker    costtracker.CostTracker
	Pricing    map[string]config.PricingInfo
}

// NewOpenAIProvider creates a chat provider on top of go-openai.
func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientCfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		clientCfg.HTTPClient = opts.HTTPClient
	}
	name := opts.Name
	if name == "" {
		name = config.ProviderOpenAI
	}
	log.Infof("%s chat provider initialized with model %s", name, opts.Model)
	return NewOpenAIProviderWithClient(openai.NewClientWithConfig(clientCfg), name, opts.Model, opts.Tracker, opts.Pricing)
}

// NewOpenAIProviderWithClient wraps an existing client.
func NewOpenAIProviderWithClient(client chatCompletionClient, name, model string, tracker costtracker.CostTracker, pricing map[string]config.PricingInfo) *OpenAIProvider {
	return &OpenAIProvider{
		client:        client,
		name:          name,
		model:         model,
		usageRecorder: usageRecorder{tracker: tracker, pricing: pricing},
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) ModelName() string { return p.model }

func (p *OpenAIProvider) Status() llm.ProviderStatus {
	if p.client == nil {
		return llm.ProviderStatusDisabled
	}
	return llm.ProviderStatusActive
}

// Complete sends one chat completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%s provider is not initialized", p.name)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%s chat completion failed: %w", p.name, err)
	}

	out := &llm.Response{
		Choices: make([]llm.Choice, 0, len(resp.Choices)),
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, llm.Choice{Content: c.Message.Content})
	}

	p.record(ctx, p.name, p.model, req, out.Usage)
	return out, nil
}
