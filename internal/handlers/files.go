// internal/handlers/files.go
package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

// FileHandler serves stored item images through the file store, so the
// same route works for the local and S3 drivers.
type FileHandler struct {
	store  ports.FileStore
	logger *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(store ports.FileStore, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		store:  store,
		logger: logger.With(slog.String("handler", "files")),
	}
}

// ServeFile handles GET /uploads/{path...}
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := r.PathValue("path")
	if path == "" {
		respondError(w, h.logger, http.StatusNotFound, "File not found")
		return
	}

	rc, err := h.store.Open(ctx, path)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			respondError(w, h.logger, http.StatusNotFound, "File not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to open stored file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer rc.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(path)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(ctx, "failed to stream file",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
