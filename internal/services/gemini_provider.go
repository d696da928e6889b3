package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dosug/internal/config"
	"dosug/internal/costtracker"
	"dosug/internal/llm"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiProvider implements llm.Completer using the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	usageRecorder
}

var _ llm.Completer = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini chat provider.
func NewGeminiProvider(ctx context.Context, apiKey, model string, tracker costtracker.CostTracker, pricing map[string]config.PricingInfo) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key not provided")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Infof("Gemini chat provider initialized with model %s", model)
	return &GeminiProvider{
		client:        client,
		model:         model,
		usageRecorder: usageRecorder{tracker: tracker, pricing: pricing},
	}, nil
}

func (p *GeminiProvider) Name() string { return config.ProviderGemini }

func (p *GeminiProvider) ModelName() string { return p.model }

func (p *GeminiProvider) Status() llm.ProviderStatus {
	if p.client == nil {
		return llm.ProviderStatusDisabled
	}
	return llm.ProviderStatusActive
}

// Complete sends the conversation as a chat session: system messages become
// the system instruction and the last user message is the prompt.
func (p *GeminiProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if p.client == nil {
		return nil, fmt.Errorf("gemini provider is not initialized")
	}
	system, history, prompt, err := splitGeminiMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	// Per-call model: temperature and system instruction live on it.
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(req.Temperature)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	session := model.StartChat()
	session.History = history
	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini chat completion failed: %w", err)
	}

	out := geminiResponse(resp)
	p.record(ctx, p.Name(), p.model, req, out.Usage)
	return out, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func splitGeminiMessages(messages []llm.Message) (system string, history []*genai.Content, prompt string, err error) {
	var systemParts []string
	var turns []llm.Message
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			systemParts = append(systemParts, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != llm.RoleUser {
		return "", nil, "", errors.New("gemini request must end with a user message")
	}

	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return strings.Join(systemParts, "\n\n"), history, turns[len(turns)-1].Content, nil
}

func geminiResponse(resp *genai.GenerateContentResponse) *llm.Response {
	out := &llm.Response{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		out.Choices = append(out.Choices, llm.Choice{Content: sb.String()})
	}
	if resp.UsageMetadata != nil {
		out.Usage = llm.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out
}
