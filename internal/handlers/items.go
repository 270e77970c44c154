// internal/handlers/items.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/kennethmarkhui/inventory-api/internal/adapters/storage"
	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

// maxFormMemory bounds the multipart form kept in memory; the image cap
// plus headroom for the text fields.
const maxFormMemory = storage.MaxFileSize + 1<<20

// ItemHandler handles catalog item HTTP requests
type ItemHandler struct {
	service ports.CatalogService
	logger  *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(service ports.CatalogService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "items")),
	}
}

// GetItem handles GET /api/v1/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get item",
			slog.String("id", r.PathValue("id")),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, item)
}

// ListItems handles GET /api/v1/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.List(ctx, h.parseListParams(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list items",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// CreateItem handles POST /api/v1/items. The request is multipart: text
// fields carry the metadata (location and sizes as JSON-encoded values)
// and the "image" part carries the file.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, h.logger, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondError(w, h.logger, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	item, err := itemFromForm(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	upload, err := uploadFromForm(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	if upload != nil {
		if c, ok := upload.Reader.(io.Closer); ok {
			defer c.Close()
		}
	}

	created, err := h.service.Create(ctx, item, upload)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create item",
			slog.String("ref_id", item.RefID),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "item created",
		slog.String("id", created.ID.String()),
		slog.String("ref_id", created.RefID))

	respondJSON(w, h.logger, http.StatusCreated, created)
}

// UpdateItem handles PATCH /api/v1/items/{id}. Only fields present in the
// form are changed; an "image" part replaces the bound file.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, h.logger, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondError(w, h.logger, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	changes, err := changesFromForm(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	upload, err := uploadFromForm(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	if upload != nil {
		if c, ok := upload.Reader.(io.Closer); ok {
			defer c.Close()
		}
	}

	updated, err := h.service.Update(ctx, id, changes, upload)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update item",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "item updated", slog.String("id", id.String()))

	respondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/v1/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	deleted, err := h.service.Delete(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete item",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": "Item deleted successfully",
		"id":      deleted.ID.String(),
		"refId":   deleted.RefID,
	})
}

// parseListParams parses paging query parameters. Absent or invalid
// values fall back to the first page.
func (h *ItemHandler) parseListParams(r *http.Request) ports.ListParams {
	params := ports.ListParams{
		Page:     1,
		PageSize: ports.DefaultPageSize,
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}
	if size := r.URL.Query().Get("page_size"); size != "" {
		if s, err := strconv.Atoi(size); err == nil && s > 0 {
			params.PageSize = s
		}
	}

	return params
}

// itemFromForm builds a new item from multipart text fields.
func itemFromForm(r *http.Request) (*domain.Item, error) {
	item := &domain.Item{
		RefID:    r.FormValue("refId"),
		Name:     r.FormValue("name"),
		Storage:  r.FormValue("storage"),
		Category: r.FormValue("category"),
	}

	if period := r.FormValue("period"); period != "" {
		item.Period = &period
	}

	location, err := parseLocation(r.FormValue("location"))
	if err != nil {
		return nil, err
	}
	if location != nil {
		item.Location = *location
	}

	sizes, err := parseSizes(r.FormValue("sizes"))
	if err != nil {
		return nil, err
	}
	item.Sizes = sizes

	return item, nil
}

// changesFromForm builds a partial change set: only keys present in the
// form become non-nil pointers.
func changesFromForm(r *http.Request) (*ports.ItemChanges, error) {
	changes := &ports.ItemChanges{}
	form := r.MultipartForm

	set := func(key string) *string {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			return &vals[0]
		}
		return nil
	}

	changes.RefID = set("refId")
	changes.Name = set("name")
	changes.Storage = set("storage")
	changes.Category = set("category")
	changes.Period = set("period")

	if raw := set("location"); raw != nil {
		location, err := parseLocation(*raw)
		if err != nil {
			return nil, err
		}
		changes.Location = location
	}

	if raw := set("sizes"); raw != nil {
		sizes, err := parseSizes(*raw)
		if err != nil {
			return nil, err
		}
		changes.Sizes = &sizes
	}

	return changes, nil
}

// uploadFromForm extracts the optional "image" file part. Returns
// (nil, nil) when the part is absent.
func uploadFromForm(r *http.Request) (*ports.ItemUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, domain.WrapErr(domain.KindValidation, "invalid image part", err)
	}

	return &ports.ItemUpload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

func parseLocation(raw string) (*domain.Location, error) {
	if raw == "" {
		return nil, nil
	}
	var location domain.Location
	if err := json.Unmarshal([]byte(raw), &location); err != nil {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "location",
			Message: "location must be a JSON object with country and optional area",
		})
	}
	return &location, nil
}

func parseSizes(raw string) ([]domain.Size, error) {
	if raw == "" {
		return []domain.Size{}, nil
	}
	var sizes []domain.Size
	if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "sizes",
			Message: fmt.Sprintf("sizes must be a JSON array of {len, wid} measurements: %v", err),
		})
	}
	return sizes, nil
}
