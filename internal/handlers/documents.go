package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/xelth-com/receiptdesk/internal/middleware"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/services/intake"
	"github.com/xelth-com/receiptdesk/internal/services/printer"
)

// BatchRequest carries reviewed extractions
type BatchRequest struct {
	Documents []models.ExtractedData `json:"documents"`
}

// commitBatch saves reviewed documents in one transaction
func (r *Router) commitBatch(w http.ResponseWriter, req *http.Request) {
	var body BatchRequest
	if err := decodeJSON(req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := r.Intake.Commit(req.Context(), middleware.UserIDFromContext(req.Context()), body.Documents)
	if err != nil {
		r.respondServiceError(w, "commitBatch", err)
		return
	}
	r.notifyDocuments("committed", result.DocumentIDs...)
	respondJSON(w, http.StatusCreated, result)
}

// MessageDocumentsChanged tells open dashboards to refetch
const MessageDocumentsChanged = "DOCUMENTS_CHANGED"

func (r *Router) notifyDocuments(action string, ids ...string) {
	if r.Hub == nil {
		return
	}
	err := r.Hub.Broadcast(map[string]interface{}{
		"type":      MessageDocumentsChanged,
		"action":    action,
		"documents": ids,
	})
	if err != nil {
		r.Logger.WithError(err).Warn("⚠️ Document change not broadcast")
	}
}

// validateBatch reports problems without writing
func (r *Router) validateBatch(w http.ResponseWriter, req *http.Request) {
	var body BatchRequest
	if err := decodeJSON(req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	problems, err := r.Intake.Validate(req.Context(), body.Documents)
	if err != nil {
		r.respondServiceError(w, "validateBatch", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}

// listDocuments returns documents filtered by ?type=IN|OUT|TRANSFER with stats
func (r *Router) listDocuments(w http.ResponseWriter, req *http.Request) {
	docs, stats, err := r.Catalog.ListDocuments(req.Context(), req.URL.Query().Get("type"))
	if err != nil {
		r.respondServiceError(w, "listDocuments", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"stats":     stats,
	})
}

func (r *Router) getDocument(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	doc, err := r.Catalog.GetDocument(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, "getDocument", err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// updateDocument edits header and items and re-posts inventory
func (r *Router) updateDocument(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	var upd intake.DocumentUpdate
	if !decodeAndValidate(w, req, &upd) {
		return
	}

	if _, err := r.Intake.UpdateDocument(req.Context(), id, upd); err != nil {
		r.respondServiceError(w, "updateDocument", err)
		return
	}

	doc, err := r.Catalog.GetDocument(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, "updateDocument", err)
		return
	}
	r.notifyDocuments("updated", id)
	respondJSON(w, http.StatusOK, doc)
}

// deleteDocument removes the document, its items and its inventory postings
func (r *Router) deleteDocument(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	if err := r.Intake.DeleteDocument(req.Context(), id); err != nil {
		r.respondServiceError(w, "deleteDocument", err)
		return
	}
	r.notifyDocuments("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// documentPDF renders the printable receipt
func (r *Router) documentPDF(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req)
	if !ok {
		return
	}
	doc, err := r.Catalog.GetDocument(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, "documentPDF", err)
		return
	}

	pdfBytes, err := printer.GenerateDocumentPDF(doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "phieu_"+doc.DocumentNumber+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}
