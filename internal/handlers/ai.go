package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/xelth-com/receiptdesk/internal/ai"
	"github.com/xelth-com/receiptdesk/internal/services/intake"
)

const (
	maxBatchUpload = 64 << 20
	maxBatchFiles  = 50
)

// processImage extracts one receipt image.
// 400 for a missing image or key, 500 with the message for anything else.
func (r *Router) processImage(w http.ResponseWriter, req *http.Request) {
	var body ai.Request
	if err := decodeJSON(req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Image == "" || body.APIKey == "" {
		respondError(w, http.StatusBadRequest, "Missing image or API key")
		return
	}

	result, err := r.Extractor.Extract(req.Context(), body)
	if err != nil {
		r.Logger.WithError(err).WithField("model", body.Model).Error("❌ AI processing failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// processBatch extracts every uploaded image concurrently. Progress is
// pushed over the websocket; the response carries the settled files.
func (r *Router) processBatch(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxBatchUpload)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer req.MultipartForm.RemoveAll()

	opts := intake.BatchOptions{
		BatchID:  req.FormValue("batchId"),
		APIKey:   req.FormValue("apiKey"),
		Model:    req.FormValue("model"),
		Prompt:   req.FormValue("prompt"),
		PromptID: req.FormValue("promptId"),
	}
	if opts.APIKey == "" {
		respondError(w, http.StatusBadRequest, ai.ErrMissingAPIKey.Error())
		return
	}
	if opts.BatchID == "" {
		opts.BatchID = uuid.NewString()
	}

	headers := req.MultipartForm.File["files"]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(headers) > maxBatchFiles {
		respondError(w, http.StatusBadRequest, "Too many files")
		return
	}

	files := make([]*intake.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "Cannot read "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "Cannot read "+fh.Filename)
			return
		}

		mime := fh.Header.Get("Content-Type")
		if mime == "" || !strings.HasPrefix(mime, "image/") {
			mime = http.DetectContentType(data)
		}
		image := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
		files = append(files, intake.NewFile(fh.Filename, image))
	}

	if err := r.Batch.Run(req.Context(), files, opts); err != nil {
		if errors.Is(err, ai.ErrMissingAPIKey) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		r.respondServiceError(w, "processBatch", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"batchId": opts.BatchID,
		"files":   files,
	})
}

// listPrompts returns the built-in prompt templates
func (r *Router) listPrompts(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, ai.DefaultPrompts())
}

// reviewMetadata returns the pick lists of the review form
func (r *Router) reviewMetadata(w http.ResponseWriter, req *http.Request) {
	warehouses, err := r.Catalog.ListWarehouses(req.Context(), true)
	if err != nil {
		r.respondServiceError(w, "reviewMetadata", err)
		return
	}
	suppliers, err := r.Catalog.ActiveSuppliers(req.Context())
	if err != nil {
		r.respondServiceError(w, "reviewMetadata", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"warehouses": warehouses,
		"suppliers":  suppliers,
	})
}
