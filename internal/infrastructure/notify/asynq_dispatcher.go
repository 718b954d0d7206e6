package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"library-backend/internal/shared"
)

// AsynqDispatcher enqueues notifications onto the worker queue.
type AsynqDispatcher struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

func NewAsynqDispatcher(redisAddr, queue string, maxRetry int) *AsynqDispatcher {
	return &AsynqDispatcher{
		client:   asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		queue:    queue,
		maxRetry: maxRetry,
	}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	task := asynq.NewTask(shared.TypeNotifyReader, payload)
	if _, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue(d.queue),
		asynq.MaxRetry(d.maxRetry),
	); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}
