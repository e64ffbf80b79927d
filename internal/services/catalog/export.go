package catalog

import (
	"fmt"
	"io"

	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xuri/excelize/v2"
)

const inventorySheet = "Tồn kho"

// InventoryWorkbook builds an XLSX of balance rows
func InventoryWorkbook(rows []models.Inventory) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return nil, err
	}

	headers := []string{"Mã vật tư", "Tên vật tư", "Kho", "Số lượng", "Đơn vị", "Cập nhật"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(inventorySheet, cell, h)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	f.SetCellStyle(inventorySheet, "A1", "F1", bold)

	qtyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	for i, r := range rows {
		row := i + 2
		var code, name, warehouse string
		if r.Material != nil {
			code, name = r.Material.Code, r.Material.Name
		}
		if r.Warehouse != nil {
			warehouse = r.Warehouse.Name
		}
		qty, _ := r.Quantity.Float64()

		f.SetCellValue(inventorySheet, fmt.Sprintf("A%d", row), code)
		f.SetCellValue(inventorySheet, fmt.Sprintf("B%d", row), name)
		f.SetCellValue(inventorySheet, fmt.Sprintf("C%d", row), warehouse)
		f.SetCellValue(inventorySheet, fmt.Sprintf("D%d", row), qty)
		f.SetCellValue(inventorySheet, fmt.Sprintf("E%d", row), r.Unit)
		f.SetCellValue(inventorySheet, fmt.Sprintf("F%d", row), r.LastUpdated.Format("2006-01-02 15:04"))
		f.SetCellStyle(inventorySheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), qtyStyle)
	}

	f.SetColWidth(inventorySheet, "A", "A", 18)
	f.SetColWidth(inventorySheet, "B", "B", 40)
	f.SetColWidth(inventorySheet, "C", "C", 24)
	f.SetColWidth(inventorySheet, "D", "F", 16)
	return f, nil
}

// WriteInventoryXLSX streams the workbook to w
func WriteInventoryXLSX(w io.Writer, rows []models.Inventory) error {
	f, err := InventoryWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
