package services

import (
	"context"
	"fmt"

	"dosug/internal/models"
	"dosug/internal/store"
)

// CostService provides methods for accessing AI usage cost data.
type CostService struct {
	store store.UsageStore
}

// NewCostService creates a new CostService. A nil store yields a service
// whose methods return store.ErrNotAvailable.
func NewCostService(s store.UsageStore) *CostService {
	return &CostService{store: s}
}

// Enabled reports whether usage is being persisted.
func (s *CostService) Enabled() bool {
	return s != nil && s.store != nil
}

// ListUsage retrieves a paginated list of AI usage logs.
func (s *CostService) ListUsage(ctx context.Context, limit, offset int) ([]*models.AIUsageLog, error) {
	if !s.Enabled() {
		return nil, store.ErrNotAvailable
	}
	logs, err := s.store.ListUsage(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage logs from store: %w", err)
	}
	return logs, nil
}

// GetSummary retrieves the total cost and token usage summary.
func (s *CostService) GetSummary(ctx context.Context) (models.UsageSummary, error) {
	if !s.Enabled() {
		return models.UsageSummary{}, store.ErrNotAvailable
	}
	sum, err := s.store.GetUsageSummary(ctx)
	if err != nil {
		return models.UsageSummary{}, fmt.Errorf("failed to get usage summary from store: %w", err)
	}
	return sum, nil
}
