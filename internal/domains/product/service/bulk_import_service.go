package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// BULK IMPORT SERVICE
// =====================================================

// Column layout of the import workbook. The first sheet is read and the
// first row is treated as a header and skipped.
const (
	colProductName = 0
	colModelNumber = 1
	colBrand       = 2
	colPrice       = 3
)

type bulkImportService struct {
	products ProductService
}

// NewBulkImportService creates the spreadsheet import service.
func NewBulkImportService(products ProductService) BulkImportService {
	return &bulkImportService{products: products}
}

// Import reads an xlsx workbook and creates one draft product per data row.
// Rows that fail validation are skipped and reported; valid rows still land.
func (s *bulkImportService) Import(ctx context.Context, role model.Role, file io.Reader) (*BulkImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, model.NewProductError(model.ErrCodeImportFailed, "failed to open workbook", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close import workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, model.NewProductError(model.ErrCodeImportFailed, "workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, model.NewProductError(model.ErrCodeImportFailed, "failed to read sheet "+sheets[0], err)
	}

	result := &BulkImportResult{}
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		if isEmptyRow(row) {
			continue
		}
		req, rowErr := rowToCreateRequest(row)
		if rowErr != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, rowErr))
			continue
		}
		if _, createErr := s.products.CreateProduct(ctx, role, req); createErr != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, createErr))
			continue
		}
		result.Created++
	}

	log.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("Bulk import completed")
	return result, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func rowToCreateRequest(row []string) (model.CreateProductRequest, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	name := cell(colProductName)
	req := model.CreateProductRequest{
		DisplayName: name,
		Document: model.DocumentTree{
			model.DocKeyHeaderInfo: map[string]interface{}{
				model.HeaderKeyProductName:   name,
				model.HeaderKeyModelNumber:   cell(colModelNumber),
				model.HeaderKeyBrand:         cell(colBrand),
				model.HeaderKeyPriceEstimate: cell(colPrice),
			},
		},
	}
	if err := req.Validate(); err != nil {
		return model.CreateProductRequest{}, err
	}
	return req, nil
}
