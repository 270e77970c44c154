// internal/handlers/export_test.go
package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
	"github.com/kennethmarkhui/inventory-api/internal/handlers"
	"github.com/kennethmarkhui/inventory-api/test/helpers"
	"github.com/kennethmarkhui/inventory-api/test/mocks"
)

func TestExportHandler_ExportJSON(t *testing.T) {
	t.Run("exports_all_items", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockItemRepository(ctrl)
		items := []*domain.Item{
			helpers.CreateTestItem(func(i *domain.Item) { i.RefID = "ITEM-1" }),
			helpers.CreateTestItem(func(i *domain.Item) { i.RefID = "ITEM-2" }),
		}
		mockRepo.EXPECT().
			List(gomock.Any(), ports.ListParams{Page: 1, PageSize: 500}).
			Return(items, int64(2), nil)

		handler := handlers.NewExportHandler(mockRepo, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/export/json", nil)
		rec := httptest.NewRecorder()

		handler.ExportJSON(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response handlers.JSONExportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Len(t, response.Items, 2)
		assert.Equal(t, 2, response.Metadata.TotalItems)
		assert.False(t, response.Metadata.ExportDate.IsZero())
	})

	t.Run("drains_multiple_pages", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockItemRepository(ctrl)
		firstPage := make([]*domain.Item, 500)
		for i := range firstPage {
			firstPage[i] = helpers.CreateTestItem(func(it *domain.Item) {
				it.RefID = fmt.Sprintf("ITEM-%d", i+1)
			})
		}
		secondPage := []*domain.Item{
			helpers.CreateTestItem(func(i *domain.Item) { i.RefID = "ITEM-501" }),
		}
		gomock.InOrder(
			mockRepo.EXPECT().
				List(gomock.Any(), ports.ListParams{Page: 1, PageSize: 500}).
				Return(firstPage, int64(501), nil),
			mockRepo.EXPECT().
				List(gomock.Any(), ports.ListParams{Page: 2, PageSize: 500}).
				Return(secondPage, int64(501), nil),
		)

		handler := handlers.NewExportHandler(mockRepo, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/export/json", nil)
		rec := httptest.NewRecorder()

		handler.ExportJSON(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response handlers.JSONExportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, 501, response.Metadata.TotalItems)
	})

	t.Run("empty_catalog", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockItemRepository(ctrl)
		mockRepo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(nil, int64(0), nil)

		handler := handlers.NewExportHandler(mockRepo, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/export/json", nil)
		rec := httptest.NewRecorder()

		handler.ExportJSON(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response handlers.JSONExportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.NotNil(t, response.Items)
		assert.Empty(t, response.Items)
	})

	t.Run("repository_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockItemRepository(ctrl)
		mockRepo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(nil, int64(0), errors.New("database down"))

		handler := handlers.NewExportHandler(mockRepo, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/export/json", nil)
		rec := httptest.NewRecorder()

		handler.ExportJSON(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestExportHandler_ExportExcel(t *testing.T) {
	t.Run("generates_spreadsheet", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockItemRepository(ctrl)
		items := []*domain.Item{
			helpers.CreateTestItem(func(i *domain.Item) { i.RefID = "ITEM-1" }),
			helpers.CreateTestItem(func(i *domain.Item) {
				i.RefID = "ITEM-2"
				i.Period = nil
				i.Sizes = nil
			}),
		}
		mockRepo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(items, int64(2), nil)

		handler := handlers.NewExportHandler(mockRepo, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/export/xlsx", nil)
		rec := httptest.NewRecorder()

		handler.ExportExcel(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "catalog_export_")

		file, err := xlsx.OpenBinary(rec.Body.Bytes())
		require.NoError(t, err)
		require.Len(t, file.Sheets, 1)

		sheet := file.Sheets[0]
		assert.Equal(t, "Items", sheet.Name)
		// Header row plus one row per item.
		assert.Equal(t, 3, sheet.MaxRow)

		headerCell, err := sheet.Cell(0, 0)
		require.NoError(t, err)
		assert.Equal(t, "Ref ID", headerCell.Value)

		firstRefID, err := sheet.Cell(1, 0)
		require.NoError(t, err)
		assert.Equal(t, "ITEM-1", firstRefID.Value)
	})

	t.Run("repository_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockItemRepository(ctrl)
		mockRepo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(nil, int64(0), errors.New("database down"))

		handler := handlers.NewExportHandler(mockRepo, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/export/xlsx", nil)
		rec := httptest.NewRecorder()

		handler.ExportExcel(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
