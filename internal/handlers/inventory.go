package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xelth-com/receiptdesk/internal/services/catalog"
)

// listInventory returns balances filtered by ?warehouse_id and ?q
func (r *Router) listInventory(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	rows, stats, err := r.Catalog.Inventory(req.Context(), q.Get("warehouse_id"), q.Get("q"))
	if err != nil {
		r.respondServiceError(w, "listInventory", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"inventory": rows,
		"stats":     stats,
	})
}

// exportInventory downloads the filtered balances as XLSX
func (r *Router) exportInventory(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	rows, _, err := r.Catalog.Inventory(req.Context(), q.Get("warehouse_id"), q.Get("q"))
	if err != nil {
		r.respondServiceError(w, "exportInventory", err)
		return
	}

	filename := fmt.Sprintf("ton_kho_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := catalog.WriteInventoryXLSX(w, rows); err != nil {
		r.Logger.WithError(err).Error("❌ Failed to write inventory export")
	}
}

func (r *Router) dashboard(w http.ResponseWriter, req *http.Request) {
	counts, err := r.Catalog.Dashboard(req.Context())
	if err != nil {
		r.respondServiceError(w, "dashboard", err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}
