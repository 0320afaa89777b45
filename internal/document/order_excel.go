// Package document renders purchase orders into vendor-facing files.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
)

// ExcelOrderBuilder renders an order into an .xlsx workbook the vendor
// receives as an attachment.
type ExcelOrderBuilder struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelOrderBuilder creates a builder writing into outputDir.
func NewExcelOrderBuilder(outputDir string, logger *zap.Logger) (*ExcelOrderBuilder, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document output dir: %w", err)
	}
	return &ExcelOrderBuilder{
		outputDir: outputDir,
		logger:    logger,
	}, nil
}

// BuildOrderDocument implements port.OrderDocumentBuilder. It returns the
// path of the written workbook.
func (b *ExcelOrderBuilder) BuildOrderDocument(ctx context.Context, po *entity.PurchaseOrder) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	b.setCell(f, sheet, "A1", "PURCHASE ORDER")
	b.setCell(f, sheet, "A2", "Order number")
	b.setCell(f, sheet, "B2", po.PONumber)
	b.setCell(f, sheet, "A3", "Order date")
	b.setCell(f, sheet, "B3", po.DateCreated.Format("2006-01-02"))
	b.setCell(f, sheet, "A4", "Required by")
	b.setCell(f, sheet, "B4", po.RequiredDate.Format("2006-01-02"))

	b.setCell(f, sheet, "A6", "Vendor")
	b.setCell(f, sheet, "B6", po.Vendor.Name)
	b.setCell(f, sheet, "A7", "Contact")
	b.setCell(f, sheet, "B7", po.Vendor.ContactPerson)
	b.setCell(f, sheet, "A8", "Ship to")
	b.setCell(f, sheet, "B8", po.ShippingAddress)
	b.setCell(f, sheet, "A9", "Bill to")
	b.setCell(f, sheet, "B9", po.BillingAddress)

	b.setCell(f, sheet, "A11", "Description")
	b.setCell(f, sheet, "B11", "Category")
	b.setCell(f, sheet, "C11", "Quantity")
	b.setCell(f, sheet, "D11", "Unit price")
	b.setCell(f, sheet, "E11", "Total")

	row := 12
	for _, item := range po.LineItems {
		b.setCell(f, sheet, fmt.Sprintf("A%d", row), item.Description)
		b.setCell(f, sheet, fmt.Sprintf("B%d", row), item.Category)
		b.setCell(f, sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("%d", item.Quantity))
		b.setCell(f, sheet, fmt.Sprintf("D%d", row), item.UnitPrice.StringFixed(2))
		b.setCell(f, sheet, fmt.Sprintf("E%d", row), item.TotalPrice.StringFixed(2))
		row++
	}

	row++
	b.setCell(f, sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("Total (%s)", po.Currency))
	b.setCell(f, sheet, fmt.Sprintf("E%d", row), po.TotalAmount.StringFixed(2))

	outputPath := filepath.Join(b.outputDir, fmt.Sprintf("%s.xlsx", po.PONumber))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save order document: %w", err)
	}

	b.logger.Info("Order document written",
		zap.String("po_id", po.ID),
		zap.String("output_path", outputPath))
	return outputPath, nil
}

// setCell sets a cell value, logging failures instead of aborting the
// whole document.
func (b *ExcelOrderBuilder) setCell(f *excelize.File, sheet, cell, value string) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		b.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// Verify interface compliance
var _ port.OrderDocumentBuilder = (*ExcelOrderBuilder)(nil)
