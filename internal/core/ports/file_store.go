// internal/core/ports/file_store.go
package ports

import (
	"context"
	"io"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
)

// FileStore defines the port for image file persistence.
//
// Accept validates the payload (media type allow-list, size ceiling),
// persists it under a generated name and returns the stored descriptor.
// The client-supplied filename never influences the stored name.
//
// Discard is best-effort removal: implementations return their error so
// callers can log and schedule a retry, but callers never propagate it
// to the client.
type FileStore interface {
	Accept(ctx context.Context, r io.Reader, declaredType string) (*domain.StoredFile, error)
	Discard(ctx context.Context, path string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
}
