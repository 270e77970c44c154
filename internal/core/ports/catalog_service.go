// internal/core/ports/catalog_service.go
package ports

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
)

// ItemUpload carries an uploaded image file through the service boundary.
// Filename and ContentType are client-declared and treated as hints only.
type ItemUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// CatalogService defines the application service port for the catalog.
// This interface is implemented by the application service.
type CatalogService interface {
	Create(ctx context.Context, item *domain.Item, upload *ItemUpload) (*domain.Item, error)
	Update(ctx context.Context, id uuid.UUID, changes *ItemChanges, upload *ItemUpload) (*domain.Item, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	GetByRefID(ctx context.Context, refID string) (*domain.Item, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ItemChanges holds the fields a PATCH may supply. Nil pointers mean
// "leave unchanged"; the bound image is replaced through the upload
// argument, never through a field here.
type ItemChanges struct {
	RefID    *string
	Name     *string
	Storage  *string
	Category *string
	Period   *string
	Location *domain.Location
	Sizes    *[]domain.Size
}

// ListParams holds parameters for listing catalog items.
type ListParams struct {
	Page     int
	PageSize int
}

// Normalize clamps out-of-range paging values to their defaults.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the number of records to skip for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination is the navigation envelope returned with every listing.
type Pagination struct {
	TotalItems      int64 `json:"totalItems"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	NextPage        *int  `json:"nextPage"`
	PreviousPage    *int  `json:"previousPage"`
	FirstPage       int   `json:"firstPage"`
	LastPage        int   `json:"lastPage"`
	CurrentPage     int   `json:"currentPage"`
}

// NewPagination derives the full envelope from the total count and the
// normalized paging parameters. LastPage is at least 1 even for an empty
// catalog.
func NewPagination(total int64, params ListParams) Pagination {
	lastPage := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	if lastPage < 1 {
		lastPage = 1
	}

	p := Pagination{
		TotalItems:  total,
		FirstPage:   1,
		LastPage:    lastPage,
		CurrentPage: params.Page,
	}

	if params.Page < lastPage {
		p.HasNextPage = true
		next := params.Page + 1
		p.NextPage = &next
	}
	if params.Page > 1 {
		p.HasPreviousPage = true
		prev := params.Page - 1
		p.PreviousPage = &prev
	}

	return p
}

// ListResult holds one page of catalog items plus its navigation envelope.
type ListResult struct {
	Items      []*domain.Item `json:"items"`
	Pagination Pagination     `json:"pagination"`
}
