// internal/adapters/db/item_repository.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

const uniqueViolation = "23505"

var itemColumns = []string{
	"id", "ref_id", "image", "name", "storage", "category",
	"period", "country", "area", "sizes", "date_created", "updated_at",
}

// itemRepository implements ports.ItemRepository
type itemRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *Database, logger *slog.Logger) ports.ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "items")),
	}
}

// Save creates a new catalog item. A unique-constraint violation on ref_id
// is reported as a Conflict; the constraint closes the check-then-insert
// race the service's duplicate lookup leaves open.
func (r *itemRepository) Save(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (
			id, ref_id, image, name, storage, category,
			period, country, area, sizes, date_created, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)`

	sizesJSON, err := json.Marshal(item.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		item.ID, item.RefID, item.Image, item.Name, item.Storage, item.Category,
		item.Period, item.Location.Country, item.Location.Area,
		sizesJSON, item.DateCreated, item.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.WrapErr(domain.KindConflict,
				fmt.Sprintf("an item with refId %q already exists", item.RefID), err)
		}
		return fmt.Errorf("failed to save item: %w", err)
	}

	r.logger.DebugContext(ctx, "item saved",
		slog.String("id", item.ID.String()),
		slog.String("ref_id", item.RefID))

	return nil
}

// Update rewrites an existing item. Zero affected rows means the record is
// gone and is reported as NotFound.
func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items SET
			ref_id = $2, image = $3, name = $4, storage = $5, category = $6,
			period = $7, country = $8, area = $9, sizes = $10, updated_at = $11
		WHERE id = $1`

	sizesJSON, err := json.Marshal(item.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}

	tag, err := r.db.Exec(ctx, query,
		item.ID, item.RefID, item.Image, item.Name, item.Storage, item.Category,
		item.Period, item.Location.Country, item.Location.Area,
		sizesJSON, item.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.WrapErr(domain.KindConflict,
				fmt.Sprintf("an item with refId %q already exists", item.RefID), err)
		}
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Ef(domain.KindNotFound, "item %s not found", item.ID)
	}

	r.logger.DebugContext(ctx, "item updated",
		slog.String("id", item.ID.String()),
		slog.String("ref_id", item.RefID))

	return nil
}

// FindByID retrieves an item by its identifier. Returns (nil, nil) when no
// record matches.
func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `
		SELECT id, ref_id, image, name, storage, category,
			period, country, area, sizes, date_created, updated_at
		FROM items
		WHERE id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return item, nil
}

// FindByRefID retrieves an item by its reference code. Returns (nil, nil)
// when no record matches.
func (r *itemRepository) FindByRefID(ctx context.Context, refID string) (*domain.Item, error) {
	query := `
		SELECT id, ref_id, image, name, storage, category,
			period, country, area, sizes, date_created, updated_at
		FROM items
		WHERE ref_id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, refID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item by ref_id: %w", err)
	}
	return item, nil
}

// Delete removes an item and returns the deleted record so the caller can
// release the bound image file. Returns (nil, nil) when no record matched.
func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `
		DELETE FROM items
		WHERE id = $1
		RETURNING id, ref_id, image, name, storage, category,
			period, country, area, sizes, date_created, updated_at`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}

	r.logger.InfoContext(ctx, "item deleted",
		slog.String("id", id.String()),
		slog.String("ref_id", item.RefID))

	return item, nil
}

// List retrieves one page of items ordered by reference code. The ref_id
// column carries an ICU collation with numeric ordering, so "ITEM-10"
// sorts after "ITEM-9" and case folds the way a person expects.
func (r *itemRepository) List(ctx context.Context, params ports.ListParams) ([]*domain.Item, int64, error) {
	totalCount, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	qb := squirrel.Select(itemColumns...).
		From("items").
		PlaceholderFormat(squirrel.Dollar).
		OrderBy("ref_id ASC").
		Limit(uint64(params.PageSize)).
		Offset(uint64(params.Offset()))

	sqlQuery, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, totalCount, nil
}

// Count returns the total number of catalog items.
func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// scanItem reads one item row from a pgx.Row or pgx.Rows.
func scanItem(row pgx.Row) (*domain.Item, error) {
	item := &domain.Item{}
	var period, area sql.NullString
	var sizesJSON []byte

	err := row.Scan(
		&item.ID, &item.RefID, &item.Image, &item.Name, &item.Storage, &item.Category,
		&period, &item.Location.Country, &area,
		&sizesJSON, &item.DateCreated, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if period.Valid {
		item.Period = &period.String
	}
	if area.Valid {
		item.Location.Area = &area.String
	}
	if len(sizesJSON) > 0 {
		if err := json.Unmarshal(sizesJSON, &item.Sizes); err != nil {
			return nil, fmt.Errorf("failed to decode sizes: %w", err)
		}
	}
	if item.Sizes == nil {
		item.Sizes = []domain.Size{}
	}

	return item, nil
}
