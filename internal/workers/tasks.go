// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

// Task type names registered on the asynq mux.
const (
	TypeFileCleanup = "file:cleanup"
)

// FileCleanupPayload is the payload for a deferred file discard.
type FileCleanupPayload struct {
	Path string `json:"path"`
}

// AsynqEnqueuer implements ports.TaskEnqueuer over an asynq client.
type AsynqEnqueuer struct {
	client *asynq.Client
	logger *slog.Logger
}

var _ ports.TaskEnqueuer = (*AsynqEnqueuer)(nil)

// NewAsynqEnqueuer creates a task enqueuer backed by asynq.
func NewAsynqEnqueuer(client *asynq.Client, logger *slog.Logger) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client: client,
		logger: logger.With(slog.String("component", "enqueuer")),
	}
}

// EnqueueFileCleanup schedules a retry for a file discard that failed
// inline. Retries back off through asynq's retry schedule.
func (e *AsynqEnqueuer) EnqueueFileCleanup(ctx context.Context, path string) error {
	payload, err := json.Marshal(FileCleanupPayload{Path: path})
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup payload: %w", err)
	}

	task := asynq.NewTask(TypeFileCleanup, payload)
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(10),
		asynq.ProcessIn(30*time.Second),
		asynq.Queue("cleanup"),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue file cleanup: %w", err)
	}

	e.logger.InfoContext(ctx, "file cleanup enqueued",
		slog.String("path", path),
		slog.String("task_id", info.ID))

	return nil
}
