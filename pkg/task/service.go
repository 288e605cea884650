package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

// ErrAlreadyQueued is returned when a live task with the same id is already
// waiting or running. Nothing was enqueued.
var ErrAlreadyQueued = errors.New("task already queued")

type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type enqueuerImpl struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func NewEnqueuer(client *asynq.Client, inspector *asynq.Inspector) Enqueuer {
	return &enqueuerImpl{client: client, inspector: inspector}
}

// Enqueue publishes task. A task id still held by an archived or completed
// task is freed and the task enqueued again; a live one yields
// ErrAlreadyQueued.
func (e *enqueuerImpl) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return e.replaceFinished(ctx, task, opts)
	}
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil, ErrAlreadyQueued
	}
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}
	return info, nil
}

func (e *enqueuerImpl) replaceFinished(ctx context.Context, task *asynq.Task, opts []asynq.Option) (*asynq.TaskInfo, error) {
	queue, id := target(opts)

	existing, err := e.inspector.GetTaskInfo(queue, id)
	switch {
	case errors.Is(err, asynq.ErrTaskNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to inspect task %s: %w", id, err)
	case existing.State == asynq.TaskStateArchived || existing.State == asynq.TaskStateCompleted:
		if err := e.inspector.DeleteTask(queue, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return nil, fmt.Errorf("failed to delete finished task %s: %w", id, err)
		}
	default:
		return nil, ErrAlreadyQueued
	}

	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil, ErrAlreadyQueued
	}
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}
	return info, nil
}

func target(opts []asynq.Option) (queue, id string) {
	queue = "default"
	for _, opt := range opts {
		switch opt.Type() {
		case asynq.QueueOpt:
			queue, _ = opt.Value().(string)
		case asynq.TaskIDOpt:
			id, _ = opt.Value().(string)
		}
	}
	return queue, id
}
