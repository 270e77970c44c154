// internal/core/ports/item_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
)

// ItemRepository defines the persistence port for catalog items.
// This interface is implemented by the database adapter.
//
// FindByID and FindByRefID return (nil, nil) when no record matches.
// Save surfaces a unique-constraint violation on ref_id as a Conflict
// domain error; the constraint is the final arbiter of uniqueness.
type ItemRepository interface {
	Save(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	FindByRefID(ctx context.Context, refID string) (*domain.Item, error)
	// Delete removes the record and returns it so the caller can release
	// the bound image file.
	Delete(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	List(ctx context.Context, params ListParams) ([]*domain.Item, int64, error)
	Count(ctx context.Context) (int64, error)
}
