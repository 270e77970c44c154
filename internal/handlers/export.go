// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
)

// exportPageSize is the repository page size used while draining the
// catalog for an export.
const exportPageSize = 500

// ExportHandler streams the full catalog as a spreadsheet or JSON
// document.
type ExportHandler struct {
	repo   ports.ItemRepository
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(repo ports.ItemRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		repo:   repo,
		logger: logger.With(slog.String("handler", "export")),
	}
}

// ExportMetadata contains metadata about the export
type ExportMetadata struct {
	ExportDate time.Time `json:"exportDate"`
	TotalItems int       `json:"totalItems"`
}

// JSONExportResponse is the JSON export document
type JSONExportResponse struct {
	Items    []*domain.Item `json:"items"`
	Metadata ExportMetadata `json:"metadata"`
}

// ExportExcel handles GET /api/v1/items/export/xlsx
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.collectItems(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve items for export",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(items)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate spreadsheet",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate spreadsheet")
		return
	}

	filename := fmt.Sprintf("catalog_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write spreadsheet response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "spreadsheet export completed",
		slog.Int("total_rows", len(items)),
		slog.String("filename", filename))
}

// ExportJSON handles GET /api/v1/items/export/json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.collectItems(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve items for export",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	response := JSONExportResponse{
		Items: items,
		Metadata: ExportMetadata{
			ExportDate: time.Now().UTC(),
			TotalItems: len(items),
		},
	}

	respondJSON(w, h.logger, http.StatusOK, response)

	h.logger.InfoContext(ctx, "JSON export completed",
		slog.Int("total_rows", len(items)))
}

// collectItems drains the catalog page by page in reference-code order.
func (h *ExportHandler) collectItems(ctx context.Context) ([]*domain.Item, error) {
	var all []*domain.Item

	for page := 1; ; page++ {
		items, total, err := h.repo.List(ctx, ports.ListParams{Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if int64(len(all)) >= total || len(items) == 0 {
			break
		}
	}

	if all == nil {
		all = []*domain.Item{}
	}
	return all, nil
}

// generateExcelFile creates the spreadsheet in memory.
func (h *ExportHandler) generateExcelFile(items []*domain.Item) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Items")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := []string{
		"Ref ID", "Name", "Storage", "Category", "Period",
		"Country", "Area", "Sizes", "Image", "Date Created", "Updated At",
	}
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}

	for _, item := range items {
		row := sheet.AddRow()
		for _, value := range itemToExportRow(item) {
			row.AddCell().Value = value
		}
	}

	for i := 0; i < len(headers); i++ {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func itemToExportRow(item *domain.Item) []string {
	return []string{
		item.RefID,
		item.Name,
		item.Storage,
		item.Category,
		safeStringValue(item.Period),
		item.Location.Country,
		safeStringValue(item.Location.Area),
		formatSizes(item.Sizes),
		item.Image,
		item.DateCreated.Format("2006-01-02 15:04:05"),
		item.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// formatSizes renders measurements as "len x wid" pairs in their stored
// order.
func formatSizes(sizes []domain.Size) string {
	if len(sizes) == 0 {
		return ""
	}
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = fmt.Sprintf("%s x %s", s.Len.String(), s.Wid.String())
	}
	return strings.Join(parts, "; ")
}

func safeStringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
