// internal/core/domain/item.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Measurements serialize as bare JSON numbers, matching the wire format
	// clients already consume.
	decimal.MarshalJSONWithoutQuotes = true
}

// Size is a single ordered dimensional measurement of an item.
type Size struct {
	Len decimal.Decimal `json:"len"`
	Wid decimal.Decimal `json:"wid"`
}

// Location is the geographic origin of an item. Country is required whenever
// a location is supplied; Area is an optional refinement.
type Location struct {
	Country string  `json:"country"`
	Area    *string `json:"area,omitempty"`
}

// Item represents a single catalogued physical item. RefID is the
// human-assigned reference code and must be unique across the catalog;
// Image is the stored path of the bound image file and is never empty
// after creation.
type Item struct {
	ID          uuid.UUID `json:"id"`
	RefID       string    `json:"refId"`
	Image       string    `json:"image"`
	Name        string    `json:"name"`
	Storage     string    `json:"storage"`
	Category    string    `json:"category"`
	Period      *string   `json:"period,omitempty"`
	Location    Location  `json:"location"`
	Sizes       []Size    `json:"sizes"`
	DateCreated time.Time `json:"dateCreated"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks every required field and collects all failures so a
// client sees the full list in one round trip.
func (i *Item) Validate() error {
	var fields []FieldError

	if i.RefID == "" {
		fields = append(fields, FieldError{Field: "refId", Message: "refId is required"})
	}
	if i.Name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "name is required"})
	}
	if i.Storage == "" {
		fields = append(fields, FieldError{Field: "storage", Message: "storage is required"})
	}
	if i.Category == "" {
		fields = append(fields, FieldError{Field: "category", Message: "category is required"})
	}
	if i.Location.Country == "" {
		fields = append(fields, FieldError{Field: "location.country", Message: "location.country is required"})
	}
	for _, s := range i.Sizes {
		if s.Len.IsNegative() || s.Wid.IsNegative() {
			fields = append(fields, FieldError{
				Field:   "sizes",
				Message: "measurements cannot be negative",
			})
			break
		}
	}

	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

// PrepareForStorage assigns the identity and timestamps before the first
// persist.
func (i *Item) PrepareForStorage() {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}

	now := time.Now().UTC()
	if i.DateCreated.IsZero() {
		i.DateCreated = now
	}
	i.UpdatedAt = now
}

// StoredFile describes a file accepted by a file store.
type StoredFile struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
