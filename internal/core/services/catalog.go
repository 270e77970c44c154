// internal/core/services/catalog.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

const (
	cacheKeyPrefix = "catalog:"
	cacheTTL       = 5 * time.Minute
)

// CatalogService coordinates item metadata persistence with image file
// lifecycle: uploads, replacements and compensating cleanup when one side
// of an operation fails.
type CatalogService struct {
	repo   ports.ItemRepository
	files  ports.FileStore
	cache  ports.CacheRepository
	tasks  ports.TaskEnqueuer
	logger *slog.Logger
}

// Statically assert that *CatalogService implements the CatalogService interface.
var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service. cache and tasks may be
// nil; reads then always hit the repository and failed discards are only
// logged.
func NewCatalogService(repo ports.ItemRepository, files ports.FileStore, cache ports.CacheRepository, tasks ports.TaskEnqueuer, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		files:  files,
		cache:  cache,
		tasks:  tasks,
		logger: logger.With(slog.String("service", "catalog")),
	}
}

// Create registers a new item. The image file is accepted first; if any
// later step fails the accepted file is discarded so no orphan remains.
func (s *CatalogService) Create(ctx context.Context, item *domain.Item, upload *ports.ItemUpload) (*domain.Item, error) {
	if upload == nil {
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "image",
			Message: "an image file is required",
		})
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.files.Accept(ctx, upload.Reader, upload.ContentType)
	if err != nil {
		return nil, err
	}

	if err := s.ensureRefIDAvailable(ctx, item.RefID, uuid.Nil); err != nil {
		s.discardFile(ctx, stored.Path)
		return nil, err
	}

	item.Image = stored.Path
	item.PrepareForStorage()

	if err := s.repo.Save(ctx, item); err != nil {
		s.discardFile(ctx, stored.Path)
		return nil, s.asStorageErr("failed to save item", err)
	}

	s.invalidateCache(ctx)
	s.logger.InfoContext(ctx, "created item",
		slog.String("id", item.ID.String()),
		slog.String("ref_id", item.RefID),
		slog.String("image", item.Image))

	return item, nil
}

// Update applies a partial change set to an existing item. A supplied file
// replaces the bound image only once the metadata persists; on any failure
// after acceptance the new file is discarded and the previous image stays
// untouched. The previous reference code and image path are taken from the
// loaded record, never from the client.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, changes *ports.ItemChanges, upload *ports.ItemUpload) (*domain.Item, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.asStorageErr("failed to load item", err)
	}
	if existing == nil {
		return nil, domain.Ef(domain.KindNotFound, "item %s not found", id)
	}

	prevImage := existing.Image
	updated := *existing
	applyChanges(&updated, changes)

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	var newImage string
	if upload != nil {
		stored, err := s.files.Accept(ctx, upload.Reader, upload.ContentType)
		if err != nil {
			return nil, err
		}
		newImage = stored.Path
		updated.Image = newImage
	}

	if updated.RefID != existing.RefID {
		if err := s.ensureRefIDAvailable(ctx, updated.RefID, id); err != nil {
			if newImage != "" {
				s.discardFile(ctx, newImage)
			}
			return nil, err
		}
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, &updated); err != nil {
		if newImage != "" {
			s.discardFile(ctx, newImage)
		}
		return nil, s.asStorageErr("failed to update item", err)
	}

	// Only once the new metadata is durable does the old image become
	// orphaned and safe to remove.
	if newImage != "" && prevImage != "" && prevImage != newImage {
		s.discardFile(ctx, prevImage)
	}

	s.invalidateCache(ctx)
	s.logger.InfoContext(ctx, "updated item",
		slog.String("id", id.String()),
		slog.String("ref_id", updated.RefID),
		slog.Bool("image_replaced", newImage != ""))

	return &updated, nil
}

// Delete removes an item and then its bound image. The image is discarded
// only after the record is gone so a failed delete never strands metadata
// pointing at a missing file.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.asStorageErr("failed to delete item", err)
	}
	if deleted == nil {
		return nil, domain.Ef(domain.KindNotFound, "item %s not found", id)
	}

	if deleted.Image != "" {
		s.discardFile(ctx, deleted.Image)
	}

	s.invalidateCache(ctx)
	s.logger.InfoContext(ctx, "deleted item",
		slog.String("id", id.String()),
		slog.String("ref_id", deleted.RefID))

	return deleted, nil
}

// GetByID retrieves a single item.
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	if s.cache != nil {
		var cached domain.Item
		key := fmt.Sprintf("%sitem:%s", cacheKeyPrefix, id)
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.asStorageErr("failed to get item", err)
	}
	if item == nil {
		return nil, domain.Ef(domain.KindNotFound, "item %s not found", id)
	}

	if s.cache != nil {
		key := fmt.Sprintf("%sitem:%s", cacheKeyPrefix, id)
		if err := s.cache.SetWithTTL(ctx, key, item, cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "failed to cache item", slog.String("error", err.Error()))
		}
	}

	return item, nil
}

// GetByRefID retrieves a single item by its reference code.
func (s *CatalogService) GetByRefID(ctx context.Context, refID string) (*domain.Item, error) {
	item, err := s.repo.FindByRefID(ctx, refID)
	if err != nil {
		return nil, s.asStorageErr("failed to get item by refId", err)
	}
	if item == nil {
		return nil, domain.Ef(domain.KindNotFound, "item with refId %q not found", refID)
	}
	return item, nil
}

// List retrieves one page of items ordered by reference code, together
// with the navigation envelope.
func (s *CatalogService) List(ctx context.Context, params ports.ListParams) (*ports.ListResult, error) {
	params.Normalize()

	key := fmt.Sprintf("%slist:p%d:s%d", cacheKeyPrefix, params.Page, params.PageSize)
	if s.cache != nil {
		var cached ports.ListResult
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, s.asStorageErr("failed to list items", err)
	}
	if items == nil {
		items = []*domain.Item{}
	}

	result := &ports.ListResult{
		Items:      items,
		Pagination: ports.NewPagination(total, params),
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, result, cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "failed to cache list page", slog.String("error", err.Error()))
		}
	}

	return result, nil
}

// ensureRefIDAvailable reports Conflict when another item already uses the
// reference code. A lookup failure is surfaced as a storage error, never
// treated as "not a duplicate".
func (s *CatalogService) ensureRefIDAvailable(ctx context.Context, refID string, exclude uuid.UUID) error {
	found, err := s.repo.FindByRefID(ctx, refID)
	if err != nil {
		return s.asStorageErr("failed to check refId uniqueness", err)
	}
	if found != nil && found.ID != exclude {
		return domain.Ef(domain.KindConflict, "an item with refId %q already exists", refID)
	}
	return nil
}

// discardFile removes a now-orphaned file. Failures are logged and handed
// to the background cleanup queue; they never surface to the caller.
func (s *CatalogService) discardFile(ctx context.Context, path string) {
	if err := s.files.Discard(ctx, path); err != nil {
		s.logger.WarnContext(ctx, "failed to discard file, scheduling cleanup",
			slog.String("path", path),
			slog.String("error", err.Error()))
		if s.tasks != nil {
			if qerr := s.tasks.EnqueueFileCleanup(ctx, path); qerr != nil {
				s.logger.ErrorContext(ctx, "failed to enqueue file cleanup",
					slog.String("path", path),
					slog.String("error", qerr.Error()))
			}
		}
	}
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cacheKeyPrefix+"*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cache", slog.String("error", err.Error()))
	}
}

// asStorageErr wraps an untagged repository error as a storage failure
// while letting already-classified errors (Conflict, NotFound) through.
func (s *CatalogService) asStorageErr(msg string, err error) error {
	var tagged *domain.Error
	if errors.As(err, &tagged) {
		return err
	}
	return domain.WrapErr(domain.KindStorageUnavailable, msg, err)
}

func applyChanges(item *domain.Item, changes *ports.ItemChanges) {
	if changes == nil {
		return
	}
	if changes.RefID != nil {
		item.RefID = *changes.RefID
	}
	if changes.Name != nil {
		item.Name = *changes.Name
	}
	if changes.Storage != nil {
		item.Storage = *changes.Storage
	}
	if changes.Category != nil {
		item.Category = *changes.Category
	}
	if changes.Period != nil {
		// An explicit empty string clears the optional period.
		if *changes.Period == "" {
			item.Period = nil
		} else {
			item.Period = changes.Period
		}
	}
	if changes.Location != nil {
		item.Location = *changes.Location
	}
	if changes.Sizes != nil {
		item.Sizes = *changes.Sizes
	}
}
