package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"dosug/internal/models"
	"dosug/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	got []*models.AIUsageLog
	err error
}

func (f *fakeRecorder) RecordUsage(ctx context.Context, log *models.AIUsageLog) error {
	f.got = append(f.got, log)
	return f.err
}

func usageLog() *models.AIUsageLog {
	return &models.AIUsageLog{
		Timestamp:    time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		ProviderName: "gigachat",
		ServiceType:  models.ServiceFormatting,
		ModelName:    "GigaChat:latest",
		InputTokens:  120,
		OutputTokens: 300,
		Cost:         0.02,
	}
}

func TestHandleUsageRecord(t *testing.T) {
	task, err := tasks.NewUsageRecordTask(usageLog())
	require.NoError(t, err)

	rec := &fakeRecorder{}
	require.NoError(t, HandleUsageRecord(rec)(context.Background(), task))

	require.Len(t, rec.got, 1)
	assert.Equal(t, "gigachat", rec.got[0].ProviderName)
	assert.Equal(t, 300, rec.got[0].OutputTokens)
	assert.True(t, usageLog().Timestamp.Equal(rec.got[0].Timestamp))
}

func TestHandleUsageRecord_MalformedPayloadSkipsRetry(t *testing.T) {
	rec := &fakeRecorder{}
	err := HandleUsageRecord(rec)(context.Background(), asynq.NewTask(tasks.TypeUsageRecord, []byte("{not json")))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, rec.got)
}

func TestHandleUsageRecord_StoreErrorIsRetried(t *testing.T) {
	task, err := tasks.NewUsageRecordTask(usageLog())
	require.NoError(t, err)
	cause := errors.New("database is locked")

	err = HandleUsageRecord(&fakeRecorder{err: cause})(context.Background(), task)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
