// internal/adapters/storage/local.go
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

// LocalStore implements ports.FileStore on the local filesystem. Files
// live in a single flat directory; stored paths are the bare generated
// filenames so records stay portable across base directories.
type LocalStore struct {
	basePath string
	logger   *slog.Logger
}

var _ ports.FileStore = (*LocalStore)(nil)

// NewLocalStore creates a local file store rooted at basePath, creating
// the directory if needed.
func NewLocalStore(basePath string, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		basePath: basePath,
		logger:   logger.With(slog.String("storage", "local")),
	}, nil
}

// Accept validates and persists an uploaded image. The file is written to
// a temporary name and renamed into place so a crash mid-write never
// leaves a half-written file under a referenced name.
func (l *LocalStore) Accept(ctx context.Context, r io.Reader, declaredType string) (*domain.StoredFile, error) {
	name, data, contentType, err := acceptPayload(r, declaredType)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(l.basePath, name)
	tmp, err := os.CreateTemp(l.basePath, ".upload-*")
	if err != nil {
		return nil, domain.WrapErr(domain.KindStorageUnavailable, "failed to stage upload", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, domain.WrapErr(domain.KindStorageUnavailable, "failed to write upload", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, domain.WrapErr(domain.KindStorageUnavailable, "failed to finalize upload", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return nil, domain.WrapErr(domain.KindStorageUnavailable, "failed to store upload", err)
	}

	l.logger.InfoContext(ctx, "file stored",
		slog.String("path", name),
		slog.Int("size", len(data)),
		slog.String("content_type", contentType))

	return &domain.StoredFile{
		Path:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

// Discard removes a stored file. A file that is already gone counts as
// discarded.
func (l *LocalStore) Discard(ctx context.Context, path string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to discard file %s: %w", path, err)
	}
	l.logger.InfoContext(ctx, "file discarded", slog.String("path", path))
	return nil
}

// Open returns a reader over a stored file.
func (l *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.Ef(domain.KindNotFound, "file %s not found", path)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	return f, nil
}

// Exists reports whether a stored file is present.
func (l *LocalStore) Exists(ctx context.Context, path string) (bool, error) {
	full, err := l.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	return true, nil
}

// BasePath returns the directory files are stored under, for static
// serving.
func (l *LocalStore) BasePath() string {
	return l.basePath
}

// resolve rejects paths that would escape the storage directory.
func (l *LocalStore) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file path %q", path)
	}
	return filepath.Join(l.basePath, clean), nil
}
