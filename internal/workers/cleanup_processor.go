// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

// CleanupProcessor retries file discards that failed during request
// handling, so orphaned image files eventually disappear from storage.
type CleanupProcessor struct {
	files  ports.FileStore
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(files ports.FileStore, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		files:  files,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// ProcessFileCleanup discards one orphaned file. Returning an error lets
// asynq retry with backoff; a file that no longer exists counts as done.
func (p *CleanupProcessor) ProcessFileCleanup(ctx context.Context, t *asynq.Task) error {
	var payload FileCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal cleanup payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Path == "" {
		return fmt.Errorf("empty cleanup path: %w", asynq.SkipRetry)
	}

	exists, err := p.files.Exists(ctx, payload.Path)
	if err != nil {
		return fmt.Errorf("failed to check file %s: %w", payload.Path, err)
	}
	if !exists {
		p.logger.InfoContext(ctx, "file already gone",
			slog.String("path", payload.Path))
		return nil
	}

	if err := p.files.Discard(ctx, payload.Path); err != nil {
		return fmt.Errorf("failed to discard file %s: %w", payload.Path, err)
	}

	p.logger.InfoContext(ctx, "orphaned file cleaned up",
		slog.String("path", payload.Path))

	return nil
}
