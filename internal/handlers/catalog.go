package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/xelth-com/receiptdesk/internal/services/catalog"
	"github.com/xelth-com/receiptdesk/internal/services/printer"
)

func (r *Router) listWarehouses(w http.ResponseWriter, req *http.Request) {
	warehouses, err := r.Catalog.ListWarehouses(req.Context(), req.URL.Query().Get("active") == "true")
	if err != nil {
		r.respondServiceError(w, "listWarehouses", err)
		return
	}
	respondJSON(w, http.StatusOK, warehouses)
}

func (r *Router) createWarehouse(w http.ResponseWriter, req *http.Request) {
	var in catalog.WarehouseInput
	if !decodeAndValidate(w, req, &in) {
		return
	}
	wh, err := r.Catalog.CreateWarehouse(req.Context(), in)
	if err != nil {
		r.respondServiceError(w, "createWarehouse", err)
		return
	}
	r.Logger.WithField("code", wh.Code).Info("🏭 Warehouse created")
	respondJSON(w, http.StatusCreated, wh)
}

func (r *Router) updateWarehouse(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	var in catalog.WarehouseInput
	if !decodeAndValidate(w, req, &in) {
		return
	}
	wh, err := r.Catalog.UpdateWarehouse(req.Context(), id, in)
	if err != nil {
		r.respondServiceError(w, "updateWarehouse", err)
		return
	}
	respondJSON(w, http.StatusOK, wh)
}

func (r *Router) toggleWarehouse(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	wh, err := r.Catalog.ToggleWarehouse(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, "toggleWarehouse", err)
		return
	}
	respondJSON(w, http.StatusOK, wh)
}

// listMaterials returns materials with in/out totals, balance and stats
func (r *Router) listMaterials(w http.ResponseWriter, req *http.Request) {
	materials, stats, err := r.Catalog.Materials(req.Context())
	if err != nil {
		r.respondServiceError(w, "listMaterials", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"materials": materials,
		"stats":     stats,
	})
}

func (r *Router) getMaterial(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	detail, err := r.Catalog.GetMaterial(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, "getMaterial", err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// LabelsRequest selects materials and the sheet layout
type LabelsRequest struct {
	MaterialIDs []string            `json:"materialIds" validate:"required,min=1,max=500,dive,required"`
	Layout      printer.LabelConfig `json:"layout"`
}

// materialLabels prints QR labels for materials
func (r *Router) materialLabels(w http.ResponseWriter, req *http.Request) {
	var body LabelsRequest
	if !decodeAndValidate(w, req, &body) {
		return
	}

	materials, err := r.Catalog.MaterialsByIDs(req.Context(), body.MaterialIDs)
	if err != nil {
		r.respondServiceError(w, "materialLabels", err)
		return
	}
	if len(materials) == 0 {
		respondError(w, http.StatusNotFound, "No materials found")
		return
	}

	pdfBytes, err := printer.GenerateMaterialLabelsPDF(materials, body.Layout)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"material_labels.pdf\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}
