package services

import (
	"context"
	"time"

	"dosug/internal/config"
	"dosug/internal/costtracker"
	"dosug/internal/llm"
)

// usageRecorder is embedded by providers to report token usage after each call.
type usageRecorder struct {
	tracker costtracker.CostTracker
	pricing map[string]config.PricingInfo
}

func (u usageRecorder) record(ctx context.Context, provider, model string, req llm.Request, usage llm.Usage) {
	if u.tracker == nil || (usage.InputTokens == 0 && usage.OutputTokens == 0) {
		return
	}
	costtracker.Track(ctx, u.tracker, u.pricing, costtracker.CostEvent{
		Operation:    req.Operation,
		Provider:     provider,
		Model:        model,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Timestamp:    time.Now().UTC(),
	})
}
