package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/utils"
)

// Thresholds used by the dashboard cards
var (
	LowStockThreshold     = decimal.NewFromInt(10)
	HighMovementThreshold = decimal.NewFromInt(100)
)

// DocumentStats counts documents per category
type DocumentStats struct {
	Total    int `json:"total"`
	In       int `json:"in"`
	Out      int `json:"out"`
	Transfer int `json:"transfer"`
}

// ComputeDocumentStats counts docs by their type category
func ComputeDocumentStats(docs []models.Document) DocumentStats {
	s := DocumentStats{Total: len(docs)}
	for _, d := range docs {
		if d.DocumentType == nil {
			continue
		}
		switch d.DocumentType.Type {
		case models.CategoryIn:
			s.In++
		case models.CategoryOut:
			s.Out++
		case models.CategoryTransfer:
			s.Transfer++
		}
	}
	return s
}

// FilterDocuments keeps documents of the given category; "" or ALL keeps all
func FilterDocuments(docs []models.Document, category string) []models.Document {
	category = strings.ToUpper(strings.TrimSpace(category))
	if category == "" || category == "ALL" {
		return docs
	}
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d.DocumentType != nil && d.DocumentType.Type == category {
			out = append(out, d)
		}
	}
	return out
}

// InventoryStats summarizes balance rows
type InventoryStats struct {
	TotalItems      int `json:"totalItems"`
	LowStock        int `json:"lowStock"`
	OutOfStock      int `json:"outOfStock"`
	TotalWarehouses int `json:"totalWarehouses"`
}

// ComputeInventoryStats: low stock is 0 < q < 10, out of stock is q <= 0
func ComputeInventoryStats(rows []models.Inventory, warehouses int) InventoryStats {
	s := InventoryStats{TotalItems: len(rows), TotalWarehouses: warehouses}
	for _, r := range rows {
		switch {
		case !r.Quantity.IsPositive():
			s.OutOfStock++
		case r.Quantity.LessThan(LowStockThreshold):
			s.LowStock++
		}
	}
	return s
}

// FilterInventory keeps rows in warehouseID (empty or ALL for any) whose
// material name or code contains q. Matching ignores case and Vietnamese tone marks.
func FilterInventory(rows []models.Inventory, warehouseID, q string) []models.Inventory {
	needle := foldSearch(q)
	anyWarehouse := warehouseID == "" || strings.EqualFold(warehouseID, "ALL")

	out := make([]models.Inventory, 0, len(rows))
	for _, r := range rows {
		if !anyWarehouse && r.WarehouseID != warehouseID {
			continue
		}
		if needle != "" {
			if r.Material == nil {
				continue
			}
			if !strings.Contains(foldSearch(r.Material.Name), needle) && !strings.Contains(foldSearch(r.Material.Code), needle) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func foldSearch(s string) string {
	return strings.ToLower(utils.ASCIIFold(strings.TrimSpace(s)))
}

// MaterialSummary is a material with its movement totals and balance
type MaterialSummary struct {
	models.Material
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
	Balance  decimal.Decimal `json:"balance"`
}

// MaterialStats backs the materials page cards
type MaterialStats struct {
	TotalMaterials int `json:"totalMaterials"`
	LowStock       int `json:"lowStock"`
	HighMovement   int `json:"highMovement"`
}

// SummarizeMaterials aggregates balances and movements per material
func SummarizeMaterials(materials []models.Material, balances []models.Inventory, movements []models.InventoryTransaction) []MaterialSummary {
	index := make(map[string]int, len(materials))
	out := make([]MaterialSummary, len(materials))
	for i, m := range materials {
		index[m.ID] = i
		out[i] = MaterialSummary{Material: m, TotalIn: decimal.Zero, TotalOut: decimal.Zero, Balance: decimal.Zero}
	}

	for _, b := range balances {
		if i, ok := index[b.MaterialID]; ok {
			out[i].Balance = out[i].Balance.Add(b.Quantity)
		}
	}
	for _, mv := range movements {
		i, ok := index[mv.MaterialID]
		if !ok {
			continue
		}
		switch mv.Type {
		case models.MovementIn, models.MovementTransferIn:
			out[i].TotalIn = out[i].TotalIn.Add(mv.Quantity)
		case models.MovementOut, models.MovementTransferOut:
			out[i].TotalOut = out[i].TotalOut.Add(mv.Quantity)
		}
	}
	return out
}

// ComputeMaterialStats: low stock is balance < 10, high movement is in+out > 100
func ComputeMaterialStats(summaries []MaterialSummary) MaterialStats {
	s := MaterialStats{TotalMaterials: len(summaries)}
	for _, m := range summaries {
		if m.Balance.LessThan(LowStockThreshold) {
			s.LowStock++
		}
		if m.TotalIn.Add(m.TotalOut).GreaterThan(HighMovementThreshold) {
			s.HighMovement++
		}
	}
	return s
}
