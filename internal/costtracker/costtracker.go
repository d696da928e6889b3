package costtracker

import (
	"context"
	"strings"
	"time"

	"dosug/internal/config"
	"dosug/internal/models"
	"dosug/internal/store"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CostEvent represents a single AI usage event and its cost.
type CostEvent struct {
	Operation    string // e.g. "classification", "formatting"
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	AmountUSD    float64
	RequestID    uuid.UUID
	Timestamp    time.Time
}

// CostTracker records usage events.
type CostTracker interface {
	RecordCost(ctx context.Context, event CostEvent) error
}

// New returns a tracker that drops every event.
func New() CostTracker {
	return &noopCostTracker{}
}

type noopCostTracker struct{}

func (n *noopCostTracker) RecordCost(ctx context.Context, event CostEvent) error { return nil }

// NewStoreTracker writes events straight to a usage store.
func NewStoreTracker(s store.UsageStore) CostTracker {
	return &storeTracker{store: s}
}

type storeTracker struct {
	store store.UsageStore
}

func (t *storeTracker) RecordCost(ctx context.Context, event CostEvent) error {
	return t.store.RecordUsage(ctx, toUsageLog(event))
}

// NewQueueTracker hands events to the background worker through the job client.
func NewQueueTracker(jobs store.JobClient) CostTracker {
	return &queueTracker{jobs: jobs}
}

type queueTracker struct {
	jobs store.JobClient
}

func (t *queueTracker) RecordCost(ctx context.Context, event CostEvent) error {
	return t.jobs.EnqueueUsageRecord(ctx, toUsageLog(event))
}

func toUsageLog(event CostEvent) *models.AIUsageLog {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	entry := &models.AIUsageLog{
		Timestamp:    ts,
		ProviderName: event.Provider,
		ServiceType:  event.Operation,
		ModelName:    event.Model,
		InputTokens:  event.InputTokens,
		OutputTokens: event.OutputTokens,
		Cost:         event.AmountUSD,
	}
	if event.RequestID != uuid.Nil {
		id := event.RequestID
		entry.RequestID = &id
	}
	return entry
}

// Price computes the cost of a call from per-token pricing. Model names match
// case-insensitively since config keys are lower-cased on load. ok is false
// when the model has no pricing entry.
func Price(pricing map[string]config.PricingInfo, model string, inputTokens, outputTokens int) (cost float64, ok bool) {
	info, ok := pricing[model]
	if !ok {
		info, ok = pricing[strings.ToLower(model)]
	}
	if !ok {
		return 0, false
	}
	return float64(inputTokens)*info.InputPerToken + float64(outputTokens)*info.OutputPerToken, true
}

// Track prices and records one call. Failures are logged and never returned;
// usage accounting must not affect the caller.
func Track(ctx context.Context, tracker CostTracker, pricing map[string]config.PricingInfo, event CostEvent) {
	if tracker == nil {
		return
	}
	cost, ok := Price(pricing, event.Model, event.InputTokens, event.OutputTokens)
	if !ok {
		log.Warnf("Pricing info not found for model '%s'. Recording usage with zero cost.", event.Model)
	}
	event.AmountUSD = cost
	if event.RequestID == uuid.Nil {
		event.RequestID = uuid.New()
	}

	if err := tracker.RecordCost(ctx, event); err != nil {
		log.Errorf("Failed to record AI usage for %s: %v", event.Operation, err)
		return
	}
	log.Debugf("Recorded AI usage: Provider=%s, Service=%s, Model=%s, InputTokens=%d, OutputTokens=%d, Cost=%.8f",
		event.Provider, event.Operation, event.Model, event.InputTokens, event.OutputTokens, event.AmountUSD)
}
