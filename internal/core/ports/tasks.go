// internal/core/ports/tasks.go
package ports

import "context"

// TaskEnqueuer defines the port for scheduling background work. The
// catalog service uses it to retry file discards that failed inline.
type TaskEnqueuer interface {
	EnqueueFileCleanup(ctx context.Context, path string) error
}
