package sqlite

import (
	"context"
	"testing"
	"time"

	"dosug/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListUsage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Ping(ctx))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reqID := uuid.New()
	first := &models.AIUsageLog{
		Timestamp:    base,
		ProviderName: "gigachat",
		ServiceType:  models.ServiceClassification,
		ModelName:    "GigaChat:latest",
		InputTokens:  100,
		OutputTokens: 2,
		Cost:         0.001,
		RequestID:    &reqID,
	}
	second := &models.AIUsageLog{
		Timestamp:    base.Add(time.Minute),
		ProviderName: "gigachat",
		ServiceType:  models.ServiceFormatting,
		ModelName:    "GigaChat:latest",
		InputTokens:  400,
		OutputTokens: 250,
		Cost:         0.01,
	}
	require.NoError(t, s.RecordUsage(ctx, first))
	require.NoError(t, s.RecordUsage(ctx, second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	logs, err := s.ListUsage(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ServiceFormatting, logs[0].ServiceType, "newest first")
	assert.Nil(t, logs[0].RequestID)
	require.NotNil(t, logs[1].RequestID)
	assert.Equal(t, reqID, *logs[1].RequestID)
	assert.True(t, base.Equal(logs[1].Timestamp))

	page, err := s.ListUsage(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestGetUsageSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sum, err := s.GetUsageSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UsageSummary{}, sum)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordUsage(ctx, &models.AIUsageLog{
			ProviderName: "gigachat",
			ServiceType:  models.ServiceFormatting,
			InputTokens:  10,
			OutputTokens: 5,
			Cost:         0.5,
		}))
	}

	sum, err = s.GetUsageSummary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, sum.TotalCost, 1e-9)
	assert.Equal(t, int64(30), sum.TotalInputTokens)
	assert.Equal(t, int64(15), sum.TotalOutputTokens)
	assert.Equal(t, int64(3), sum.Calls)
}

func TestRecordUsage_Invalid(t *testing.T) {
	s := newTestStore(t)
	err := s.RecordUsage(context.Background(), &models.AIUsageLog{ServiceType: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestNewStore_EmptyDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}
