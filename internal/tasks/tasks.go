package tasks

import (
	"encoding/json"
	"fmt"

	"dosug/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TypeUsageRecord is the task type for persisting one model usage record.
	TypeUsageRecord = "usage:record"

	// QueueUsage is the queue usage records are enqueued on.
	QueueUsage = "usage"

	// MaxUsageRetries bounds redelivery of a usage record that fails to persist.
	MaxUsageRetries = 5
)

// NewUsageRecordTask wraps a usage log into an asynq task.
func NewUsageRecordTask(log *models.AIUsageLog) (*asynq.Task, error) {
	if err := log.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(log)
	if err != nil {
		return nil, fmt.Errorf("marshal usage record: %w", err)
	}
	return asynq.NewTask(TypeUsageRecord, payload, asynq.Queue(QueueUsage), asynq.MaxRetry(MaxUsageRetries)), nil
}

// ParseUsageRecord decodes the payload of a TypeUsageRecord task.
func ParseUsageRecord(payload []byte) (*models.AIUsageLog, error) {
	var log models.AIUsageLog
	if err := json.Unmarshal(payload, &log); err != nil {
		return nil, fmt.Errorf("unmarshal usage record: %w", err)
	}
	if err := log.Validate(); err != nil {
		return nil, err
	}
	return &log, nil
}
