// Package worker holds the asynq task handlers run by `dosug worker`.
package worker

import (
	"context"
	"fmt"

	"dosug/internal/models"
	"dosug/internal/tasks"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// UsageRecorder persists usage records. Implemented by store.UsageStore.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, log *models.AIUsageLog) error
}

// RegisterHandlers registers all task handlers on mux.
func RegisterHandlers(mux *asynq.ServeMux, recorder UsageRecorder) {
	log.Infof("Registering %s handler", tasks.TypeUsageRecord)
	mux.HandleFunc(tasks.TypeUsageRecord, HandleUsageRecord(recorder))
}

// HandleUsageRecord persists one queued usage record. Malformed payloads are
// not retried; storage errors are, up to the task's retry limit.
func HandleUsageRecord(recorder UsageRecorder) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		usage, err := tasks.ParseUsageRecord(t.Payload())
		if err != nil {
			log.Errorf("Dropping malformed %s task: %v", t.Type(), err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		if err := recorder.RecordUsage(ctx, usage); err != nil {
			return fmt.Errorf("record usage for %s/%s: %w", usage.ProviderName, usage.ServiceType, err)
		}
		log.Debugf("Persisted usage record: provider=%s service=%s tokens=%d/%d cost=%.8f",
			usage.ProviderName, usage.ServiceType, usage.InputTokens, usage.OutputTokens, usage.Cost)
		return nil
	}
}
