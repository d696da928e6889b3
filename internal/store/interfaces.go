package store

import (
	"context"

	"dosug/internal/models"
)

// UsageStore persists model usage records for cost reporting.
type UsageStore interface {
	RecordUsage(ctx context.Context, log *models.AIUsageLog) error
	ListUsage(ctx context.Context, limit, offset int) ([]*models.AIUsageLog, error)
	GetUsageSummary(ctx context.Context) (models.UsageSummary, error)
	Ping(ctx context.Context) error
	Close() error
}

// JobClient hands usage records to the background worker.
type JobClient interface {
	EnqueueUsageRecord(ctx context.Context, log *models.AIUsageLog) error
	Close() error
}
