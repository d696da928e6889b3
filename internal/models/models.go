package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service types recorded with each model call.
const (
	ServiceClassification = "classification"
	ServiceFormatting     = "formatting"
)

// AIUsageLog represents a record of AI API usage for cost tracking.
type AIUsageLog struct {
	ID           int64      `db:"id" json:"id"`
	Timestamp    time.Time  `db:"timestamp" json:"timestamp"`
	ProviderName string     `db:"provider_name" json:"provider_name"`
	ServiceType  string     `db:"service_type" json:"service_type"`
	ModelName    string     `db:"model_name" json:"model_name"`
	InputTokens  int        `db:"input_tokens" json:"input_tokens"`
	OutputTokens int        `db:"output_tokens" json:"output_tokens"`
	Cost         float64    `db:"cost" json:"cost"`
	RequestID    *uuid.UUID `db:"request_id" json:"request_id,omitempty"` // nullable
}

// Validate checks the fields every store requires.
func (l *AIUsageLog) Validate() error {
	switch {
	case l == nil:
		return fmt.Errorf("%w: nil usage log", ErrValidation)
	case l.ProviderName == "":
		return fmt.Errorf("%w: provider name is required", ErrValidation)
	case l.ServiceType == "":
		return fmt.Errorf("%w: service type is required", ErrValidation)
	case l.InputTokens < 0 || l.OutputTokens < 0:
		return fmt.Errorf("%w: token counts must not be negative", ErrValidation)
	}
	return nil
}

// UsageSummary aggregates all recorded usage.
type UsageSummary struct {
	TotalCost         float64 `json:"total_cost"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	Calls             int64   `json:"calls"`
}
