package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer puts archive tasks on the Redis-backed asynq queue.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func NewArchiveTask(payload ArchiveBackupPayload) (*asynq.Task, error) {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeArchiveBackup, taskPayload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
	), nil
}

func (e *Enqueuer) EnqueueArchive(ctx context.Context, databaseUUID, filename string) (string, error) {
	payload := ArchiveBackupPayload{DatabaseUUID: databaseUUID, Filename: filename}

	task, err := NewArchiveTask(payload)
	if err != nil {
		return "", err
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	slog.Info("archive task enqueued", "task_id", info.ID, "database", databaseUUID, "filename", filename)
	return info.ID, nil
}
