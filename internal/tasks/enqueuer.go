package tasks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/pkg/queue"
)

const mirrorMaxRetry = 3

// TaskClient is the part of *asynq.Client the enqueuer needs.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer schedules spreadsheet repairs on the default queue.
type Enqueuer struct {
	client TaskClient
}

func NewEnqueuer(client TaskClient) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueMirror(ctx context.Context, userID uuid.UUID) error {
	task, err := NewSheetMirrorTask(SheetMirrorPayload{UserID: userID})
	if err != nil {
		return fmt.Errorf("creating mirror task: %w", err)
	}

	if _, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(queue.QueueDefault),
		asynq.MaxRetry(mirrorMaxRetry),
	); err != nil {
		return fmt.Errorf("enqueueing mirror task: %w", err)
	}
	return nil
}

var _ member.RepairEnqueuer = (*Enqueuer)(nil)
