package store

import (
	"context"
	"fmt"

	"dosug/internal/models"
	"dosug/internal/tasks"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// enqueuer is the part of *asynq.Client the job client needs.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// AsynqJobClient enqueues usage records on redis for the worker to persist.
type AsynqJobClient struct {
	client enqueuer
}

var _ JobClient = (*AsynqJobClient)(nil)

// NewAsynqJobClient connects to redis with the given options.
func NewAsynqJobClient(opt asynq.RedisClientOpt) (*AsynqJobClient, error) {
	if opt.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty for AsynqJobClient")
	}
	return &AsynqJobClient{client: asynq.NewClient(opt)}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue enqueues an arbitrary task.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("AsynqJobClient internal client is not initialized")
	}
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	log.Debugf("Enqueued task type '%s' (id=%s, queue=%s)", task.Type(), info.ID, info.Queue)
	return info, nil
}

// EnqueueUsageRecord enqueues one usage record.
func (jc *AsynqJobClient) EnqueueUsageRecord(ctx context.Context, usage *models.AIUsageLog) error {
	task, err := tasks.NewUsageRecordTask(usage)
	if err != nil {
		return fmt.Errorf("build usage record task: %w", err)
	}
	if _, err := jc.Enqueue(ctx, task); err != nil {
		return err
	}
	return nil
}
