// internal/core/ports/catalog_service_test.go
package ports_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

func TestListParams_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		input    ports.ListParams
		expected ports.ListParams
	}{
		{
			name:     "valid_values_untouched",
			input:    ports.ListParams{Page: 3, PageSize: 25},
			expected: ports.ListParams{Page: 3, PageSize: 25},
		},
		{
			name:     "zero_page_becomes_one",
			input:    ports.ListParams{Page: 0, PageSize: 10},
			expected: ports.ListParams{Page: 1, PageSize: 10},
		},
		{
			name:     "negative_page_becomes_one",
			input:    ports.ListParams{Page: -5, PageSize: 10},
			expected: ports.ListParams{Page: 1, PageSize: 10},
		},
		{
			name:     "zero_page_size_gets_default",
			input:    ports.ListParams{Page: 1, PageSize: 0},
			expected: ports.ListParams{Page: 1, PageSize: ports.DefaultPageSize},
		},
		{
			name:     "oversized_page_size_clamped",
			input:    ports.ListParams{Page: 1, PageSize: 5000},
			expected: ports.ListParams{Page: 1, PageSize: ports.MaxPageSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.input
			params.Normalize()
			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestListParams_Offset(t *testing.T) {
	assert.Equal(t, 0, ports.ListParams{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 10, ports.ListParams{Page: 2, PageSize: 10}.Offset())
	assert.Equal(t, 50, ports.ListParams{Page: 6, PageSize: 10}.Offset())
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name             string
		total            int64
		params           ports.ListParams
		expectedLastPage int
		expectedNext     *int
		expectedPrev     *int
	}{
		{
			name:             "single_page",
			total:            5,
			params:           ports.ListParams{Page: 1, PageSize: 10},
			expectedLastPage: 1,
		},
		{
			name:             "first_of_three",
			total:            25,
			params:           ports.ListParams{Page: 1, PageSize: 10},
			expectedLastPage: 3,
			expectedNext:     intPtr(2),
		},
		{
			name:             "middle_page",
			total:            25,
			params:           ports.ListParams{Page: 2, PageSize: 10},
			expectedLastPage: 3,
			expectedNext:     intPtr(3),
			expectedPrev:     intPtr(1),
		},
		{
			name:             "last_page",
			total:            25,
			params:           ports.ListParams{Page: 3, PageSize: 10},
			expectedLastPage: 3,
			expectedPrev:     intPtr(2),
		},
		{
			name:             "exact_multiple_of_page_size",
			total:            20,
			params:           ports.ListParams{Page: 2, PageSize: 10},
			expectedLastPage: 2,
			expectedPrev:     intPtr(1),
		},
		{
			name:             "empty_catalog_still_has_page_one",
			total:            0,
			params:           ports.ListParams{Page: 1, PageSize: 10},
			expectedLastPage: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ports.NewPagination(tt.total, tt.params)

			assert.Equal(t, tt.total, p.TotalItems)
			assert.Equal(t, 1, p.FirstPage)
			assert.Equal(t, tt.expectedLastPage, p.LastPage)
			assert.Equal(t, tt.params.Page, p.CurrentPage)

			if tt.expectedNext != nil {
				assert.True(t, p.HasNextPage)
				require.NotNil(t, p.NextPage)
				assert.Equal(t, *tt.expectedNext, *p.NextPage)
			} else {
				assert.False(t, p.HasNextPage)
				assert.Nil(t, p.NextPage)
			}

			if tt.expectedPrev != nil {
				assert.True(t, p.HasPreviousPage)
				require.NotNil(t, p.PreviousPage)
				assert.Equal(t, *tt.expectedPrev, *p.PreviousPage)
			} else {
				assert.False(t, p.HasPreviousPage)
				assert.Nil(t, p.PreviousPage)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
