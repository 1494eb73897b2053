package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"smartshelf/internal/grid"

	"github.com/xuri/excelize/v2"
)

// LoadCellExportHeader 格子库存导出表头
var LoadCellExportHeader = []string{
	"Load Cell ID",
	"Floor",
	"Column",
	"Product",
	"Quantity",
	"Realtime Quantity",
	"Threshold",
	"State",
	"Pending",
}

// GenerateLoadCellExport 生成格子库存 Excel 文件
func GenerateLoadCellExport(views []grid.CellView) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo 需要文件保持打开，不能提前 Close

	sheetName := "Shelf Inventory"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range LoadCellExportHeader {
		cellRef, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build cell reference: %w", err)
		}
		if err := f.SetCellValue(sheetName, cellRef, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cellRef, cellRef, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for row, view := range views {
		realtime := ""
		if view.Realtime != nil {
			realtime = fmt.Sprintf("%d", *view.Realtime)
		}
		values := []interface{}{
			view.Cell.LoadCellID,
			view.Cell.Floor,
			view.Cell.Column,
			view.ProductName,
			view.Cell.Quantity,
			realtime,
			view.Cell.Threshold,
			view.Classification,
			view.Pending,
		}
		for col, value := range values {
			cellRef, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to build cell reference: %w", err)
			}
			if err := f.SetCellValue(sheetName, cellRef, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportFileName 导出文件名（带日期）
func ExportFileName() string {
	return fmt.Sprintf("shelf-inventory-%s.xlsx", time.Now().Format("2006-01-02"))
}
