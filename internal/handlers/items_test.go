// internal/handlers/items_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
	"github.com/kennethmarkhui/inventory-api/internal/handlers"
	"github.com/kennethmarkhui/inventory-api/test/helpers"
	"github.com/kennethmarkhui/inventory-api/test/mocks"
)

func newTestMux(service ports.CatalogService) *http.ServeMux {
	h := handlers.NewItemHandler(service, helpers.TestLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/items", h.ListItems)
	mux.HandleFunc("POST /api/v1/items", h.CreateItem)
	mux.HandleFunc("GET /api/v1/items/{id}", h.GetItem)
	mux.HandleFunc("PATCH /api/v1/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/v1/items/{id}", h.DeleteItem)
	return mux
}

// multipartBody builds a multipart form from text fields plus an optional
// "image" file part.
func multipartBody(t *testing.T, fields map[string]string, imageName string, imageContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write(imageContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func defaultItemFields() map[string]string {
	return map[string]string{
		"refId":    "ITEM-001",
		"name":     "Blue and White Porcelain Vase",
		"storage":  "Shelf A-3",
		"category": "Ceramics",
		"period":   "Ming Dynasty",
		"location": `{"country":"China","area":"Jingdezhen"}`,
		"sizes":    `[{"len":24.5,"wid":12.0}]`,
	}
}

func TestItemHandler_GetItem(t *testing.T) {
	testItem := helpers.CreateTestItem(func(i *domain.Item) {
		i.ID = uuid.New()
	})

	tests := []struct {
		name           string
		itemID         string
		setupMocks     func(*mocks.MockCatalogService)
		expectedStatus int
	}{
		{
			name:   "successfully_returns_item",
			itemID: testItem.ID.String(),
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					GetByID(gomock.Any(), testItem.ID).
					Return(testItem, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_id_format",
			itemID:         "not-a-uuid",
			setupMocks:     func(service *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "item_not_found",
			itemID: uuid.New().String(),
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					GetByID(gomock.Any(), gomock.Any()).
					Return(nil, domain.Ef(domain.KindNotFound, "item not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "storage_failure",
			itemID: testItem.ID.String(),
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					GetByID(gomock.Any(), gomock.Any()).
					Return(nil, domain.WrapErr(domain.KindStorageUnavailable, "failed to get item", errors.New("db down")))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockCatalogService(ctrl)
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/items/"+tt.itemID, nil)
			rec := httptest.NewRecorder()

			newTestMux(mockService).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var got domain.Item
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, testItem.RefID, got.RefID)
			}
		})
	}
}

func TestItemHandler_ListItems(t *testing.T) {
	t.Run("returns_page_with_navigation_envelope", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockCatalogService(ctrl)
		next := 3
		prev := 1
		mockService.EXPECT().
			List(gomock.Any(), ports.ListParams{Page: 2, PageSize: 5}).
			Return(&ports.ListResult{
				Items: []*domain.Item{helpers.CreateTestItem()},
				Pagination: ports.Pagination{
					TotalItems:      12,
					HasNextPage:     true,
					HasPreviousPage: true,
					NextPage:        &next,
					PreviousPage:    &prev,
					FirstPage:       1,
					LastPage:        3,
					CurrentPage:     2,
				},
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items?page=2&page_size=5", nil)
		rec := httptest.NewRecorder()

		newTestMux(mockService).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var result ports.ListResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.Len(t, result.Items, 1)
		assert.Equal(t, int64(12), result.Pagination.TotalItems)
		assert.Equal(t, 3, result.Pagination.LastPage)
		require.NotNil(t, result.Pagination.NextPage)
		assert.Equal(t, 3, *result.Pagination.NextPage)
	})

	t.Run("defaults_absent_and_garbage_query_values", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockCatalogService(ctrl)
		mockService.EXPECT().
			List(gomock.Any(), ports.ListParams{Page: 1, PageSize: ports.DefaultPageSize}).
			Return(&ports.ListResult{
				Items:      []*domain.Item{},
				Pagination: ports.NewPagination(0, ports.ListParams{Page: 1, PageSize: ports.DefaultPageSize}),
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items?page=abc&page_size=-4", nil)
		rec := httptest.NewRecorder()

		newTestMux(mockService).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("storage_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockCatalogService(ctrl)
		mockService.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(nil, domain.WrapErr(domain.KindStorageUnavailable, "failed to list items", errors.New("db down")))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		rec := httptest.NewRecorder()

		newTestMux(mockService).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestItemHandler_CreateItem(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		imageName      string
		setupMocks     func(*mocks.MockCatalogService)
		expectedStatus int
	}{
		{
			name:      "successfully_creates_item",
			fields:    defaultItemFields(),
			imageName: "vase.png",
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, item *domain.Item, upload *ports.ItemUpload) (*domain.Item, error) {
						assert.Equal(t, "ITEM-001", item.RefID)
						assert.Equal(t, "China", item.Location.Country)
						require.NotNil(t, item.Period)
						assert.Equal(t, "Ming Dynasty", *item.Period)
						require.Len(t, item.Sizes, 1)
						require.NotNil(t, upload)
						assert.Equal(t, "vase.png", upload.Filename)
						item.ID = uuid.New()
						item.Image = "stored.png"
						return item, nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:      "missing_image_rejected",
			fields:    defaultItemFields(),
			imageName: "",
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), nil).
					Return(nil, domain.NewValidationError(domain.FieldError{
						Field:   "image",
						Message: "an image file is required",
					}))
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "malformed_sizes_rejected_before_service",
			fields: func() map[string]string {
				fields := defaultItemFields()
				fields["sizes"] = "not json"
				return fields
			}(),
			imageName:      "vase.png",
			setupMocks:     func(service *mocks.MockCatalogService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "malformed_location_rejected_before_service",
			fields: func() map[string]string {
				fields := defaultItemFields()
				fields["location"] = "{broken"
				return fields
			}(),
			imageName:      "vase.png",
			setupMocks:     func(service *mocks.MockCatalogService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:      "duplicate_ref_id",
			fields:    defaultItemFields(),
			imageName: "vase.png",
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, domain.Ef(domain.KindConflict, "an item with refId %q already exists", "ITEM-001"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "unsupported_file_type",
			fields:    defaultItemFields(),
			imageName: "vase.pdf",
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, domain.E(domain.KindUnsupportedMedia, "media type is not allowed"))
			},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:      "oversized_file",
			fields:    defaultItemFields(),
			imageName: "huge.png",
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, domain.E(domain.KindPayloadTooLarge, "file exceeds the limit"))
			},
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockCatalogService(ctrl)
			tt.setupMocks(mockService)

			body, contentType := multipartBody(t, tt.fields, tt.imageName, []byte("image data"))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/items", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newTestMux(mockService).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusUnprocessableEntity {
				var resp struct {
					Error  string              `json:"error"`
					Fields []domain.FieldError `json:"fields"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.NotEmpty(t, resp.Fields)
			}
		})
	}
}

func TestItemHandler_CreateItem_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockCatalogService(ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader("not a multipart form"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestMux(mockService).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemHandler_UpdateItem(t *testing.T) {
	itemID := uuid.New()

	tests := []struct {
		name           string
		itemID         string
		fields         map[string]string
		imageName      string
		setupMocks     func(*mocks.MockCatalogService)
		expectedStatus int
	}{
		{
			name:   "partial_update_only_sends_present_fields",
			itemID: itemID.String(),
			fields: map[string]string{"name": "Renamed Vase"},
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Update(gomock.Any(), itemID, gomock.Any(), nil).
					DoAndReturn(func(ctx context.Context, id uuid.UUID, changes *ports.ItemChanges, upload *ports.ItemUpload) (*domain.Item, error) {
						require.NotNil(t, changes.Name)
						assert.Equal(t, "Renamed Vase", *changes.Name)
						assert.Nil(t, changes.RefID)
						assert.Nil(t, changes.Storage)
						assert.Nil(t, changes.Period)
						assert.Nil(t, changes.Location)
						assert.Nil(t, changes.Sizes)
						return helpers.CreateTestItem(func(i *domain.Item) {
							i.ID = id
							i.Name = "Renamed Vase"
						}), nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "explicit_empty_period_is_forwarded",
			itemID: itemID.String(),
			fields: map[string]string{"period": ""},
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Update(gomock.Any(), itemID, gomock.Any(), nil).
					DoAndReturn(func(ctx context.Context, id uuid.UUID, changes *ports.ItemChanges, upload *ports.ItemUpload) (*domain.Item, error) {
						require.NotNil(t, changes.Period)
						assert.Empty(t, *changes.Period)
						return helpers.CreateTestItem(func(i *domain.Item) {
							i.ID = id
							i.Period = nil
						}), nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "image_replacement",
			itemID:    itemID.String(),
			fields:    map[string]string{},
			imageName: "replacement.png",
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Update(gomock.Any(), itemID, gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, id uuid.UUID, changes *ports.ItemChanges, upload *ports.ItemUpload) (*domain.Item, error) {
						require.NotNil(t, upload)
						assert.Equal(t, "replacement.png", upload.Filename)
						return helpers.CreateTestItem(func(i *domain.Item) { i.ID = id }), nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_id_format",
			itemID:         "not-a-uuid",
			fields:         map[string]string{"name": "x"},
			setupMocks:     func(service *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "item_not_found",
			itemID: itemID.String(),
			fields: map[string]string{"name": "x"},
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Update(gomock.Any(), itemID, gomock.Any(), nil).
					Return(nil, domain.Ef(domain.KindNotFound, "item %s not found", itemID))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "ref_id_conflict",
			itemID: itemID.String(),
			fields: map[string]string{"refId": "ITEM-9"},
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Update(gomock.Any(), itemID, gomock.Any(), nil).
					Return(nil, domain.Ef(domain.KindConflict, "an item with refId %q already exists", "ITEM-9"))
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockCatalogService(ctrl)
			tt.setupMocks(mockService)

			body, contentType := multipartBody(t, tt.fields, tt.imageName, []byte("image data"))
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/items/"+tt.itemID, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newTestMux(mockService).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestItemHandler_DeleteItem(t *testing.T) {
	itemID := uuid.New()

	tests := []struct {
		name           string
		itemID         string
		setupMocks     func(*mocks.MockCatalogService)
		expectedStatus int
	}{
		{
			name:   "successfully_deletes_item",
			itemID: itemID.String(),
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Delete(gomock.Any(), itemID).
					Return(helpers.CreateTestItem(func(i *domain.Item) {
						i.ID = itemID
					}), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_id_format",
			itemID:         "not-a-uuid",
			setupMocks:     func(service *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "item_not_found",
			itemID: uuid.New().String(),
			setupMocks: func(service *mocks.MockCatalogService) {
				service.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil, domain.Ef(domain.KindNotFound, "item not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockCatalogService(ctrl)
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/items/"+tt.itemID, nil)
			rec := httptest.NewRecorder()

			newTestMux(mockService).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, itemID.String(), resp["id"])
				assert.NotEmpty(t, resp["refId"])
			}
		})
	}
}

func BenchmarkItemHandler_ListItems(b *testing.B) {
	ctrl := gomock.NewController(b)
	defer ctrl.Finish()

	mockService := mocks.NewMockCatalogService(ctrl)
	items := make([]*domain.Item, 10)
	for i := range items {
		items[i] = helpers.CreateTestItem(func(it *domain.Item) {
			it.RefID = fmt.Sprintf("ITEM-%d", i+1)
		})
	}
	mockService.EXPECT().
		List(gomock.Any(), gomock.Any()).
		Return(&ports.ListResult{
			Items:      items,
			Pagination: ports.NewPagination(10, ports.ListParams{Page: 1, PageSize: 10}),
		}, nil).
		AnyTimes()

	mux := newTestMux(mockService)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		io.Copy(io.Discard, rec.Body)
	}
}
