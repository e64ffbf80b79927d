package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/xelth-com/receiptdesk/internal/ai"
	"github.com/xelth-com/receiptdesk/internal/buildinfo"
	"github.com/xelth-com/receiptdesk/internal/config"
	"github.com/xelth-com/receiptdesk/internal/middleware"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/services/catalog"
	"github.com/xelth-com/receiptdesk/internal/services/intake"
	"github.com/xelth-com/receiptdesk/internal/websocket"
	"gorm.io/gorm"
)

// Extractor is the single-image AI call
type Extractor interface {
	Extract(ctx context.Context, req ai.Request) (*models.ExtractedData, error)
}

// BatchRunner runs extraction over many files
type BatchRunner interface {
	Run(ctx context.Context, files []*intake.File, opts intake.BatchOptions) error
}

// Intake writes documents
type Intake interface {
	Commit(ctx context.Context, userID string, docs []models.ExtractedData) (*intake.CommitResult, error)
	Validate(ctx context.Context, docs []models.ExtractedData) ([]intake.Problem, error)
	UpdateDocument(ctx context.Context, id string, upd intake.DocumentUpdate) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Catalog reads documents, materials and inventory and maintains warehouses
type Catalog interface {
	ListDocuments(ctx context.Context, category string) ([]models.Document, catalog.DocumentStats, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListWarehouses(ctx context.Context, activeOnly bool) ([]models.Warehouse, error)
	ActiveSuppliers(ctx context.Context) ([]models.Supplier, error)
	CreateWarehouse(ctx context.Context, in catalog.WarehouseInput) (*models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id string, in catalog.WarehouseInput) (*models.Warehouse, error)
	ToggleWarehouse(ctx context.Context, id string) (*models.Warehouse, error)
	Materials(ctx context.Context) ([]catalog.MaterialSummary, catalog.MaterialStats, error)
	GetMaterial(ctx context.Context, id string) (*catalog.MaterialDetail, error)
	MaterialsByIDs(ctx context.Context, ids []string) ([]models.Material, error)
	Inventory(ctx context.Context, warehouseID, q string) ([]models.Inventory, catalog.InventoryStats, error)
	Dashboard(ctx context.Context) (*catalog.DashboardCounts, error)
}

// Deps are the collaborators of the HTTP layer
type Deps struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Users     UserStore
	Extractor Extractor
	Batch     BatchRunner
	Intake    Intake
	Catalog   Catalog
	Hub       *websocket.Hub
	Limiter   middleware.Limiter
}

// Router wraps the mux router and its dependencies
type Router struct {
	*mux.Router
	Deps
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	r := &Router{
		Router: mux.NewRouter(),
		Deps:   deps,
	}
	r.Use(middleware.Logger(r.Logger))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes (public)
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// Everything else under /api requires a token
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(r.Config.JWTSecret))
	api.HandleFunc("/me", r.me).Methods("GET")

	// AI extraction, rate limited per user
	aiRoutes := api.PathPrefix("/ai").Subrouter()
	if r.Limiter != nil {
		aiRoutes.Use(middleware.RateLimit(r.Limiter, r.Logger))
	}
	aiRoutes.HandleFunc("/process", r.processImage).Methods("POST")
	aiRoutes.HandleFunc("/batch", r.processBatch).Methods("POST")
	api.HandleFunc("/ai/prompts", r.listPrompts).Methods("GET")
	api.HandleFunc("/ai/metadata", r.reviewMetadata).Methods("GET")

	// Documents
	api.HandleFunc("/documents", r.listDocuments).Methods("GET")
	api.HandleFunc("/documents/batch", r.commitBatch).Methods("POST")
	api.HandleFunc("/documents/validate", r.validateBatch).Methods("POST")
	api.HandleFunc("/documents/{id}", r.getDocument).Methods("GET")
	api.HandleFunc("/documents/{id}", r.updateDocument).Methods("PUT")
	api.HandleFunc("/documents/{id}", r.deleteDocument).Methods("DELETE")
	api.HandleFunc("/documents/{id}/pdf", r.documentPDF).Methods("GET")

	// Catalog
	api.HandleFunc("/warehouses", r.listWarehouses).Methods("GET")
	api.HandleFunc("/warehouses", r.createWarehouse).Methods("POST")
	api.HandleFunc("/warehouses/{id}", r.updateWarehouse).Methods("PUT")
	api.HandleFunc("/warehouses/{id}/toggle", r.toggleWarehouse).Methods("POST")
	api.HandleFunc("/materials", r.listMaterials).Methods("GET")
	api.HandleFunc("/materials/labels", r.materialLabels).Methods("POST")
	api.HandleFunc("/materials/{id}", r.getMaterial).Methods("GET")
	api.HandleFunc("/inventory", r.listInventory).Methods("GET")
	api.HandleFunc("/inventory/export", r.exportInventory).Methods("GET")
	api.HandleFunc("/dashboard", r.dashboard).Methods("GET")

	// Live extraction progress
	if r.Hub != nil {
		ws := r.PathPrefix("/ws").Subrouter()
		ws.Use(middleware.Auth(r.Config.JWTSecret))
		ws.HandleFunc("", r.serveWs)
	}

	// Static files
	if r.Config.FrontendDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(r.Config.FrontendDir)))
	}

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	status := buildinfo.Fields()
	status["status"] = "ok"
	respondJSON(w, http.StatusOK, status)
}

func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	websocket.ServeWs(r.Hub, middleware.UserIDFromContext(req.Context()), w, req)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// pathID returns the {id} route variable. Ids that are not UUIDs cannot
// match any row, so they get a 404 before reaching the database.
func pathID(w http.ResponseWriter, req *http.Request) (string, bool) {
	id := mux.Vars(req)["id"]
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusNotFound, "Not found")
		return "", false
	}
	return id, true
}

// respondServiceError maps service errors to status codes
func (r *Router) respondServiceError(w http.ResponseWriter, op string, err error) {
	var typeErr *intake.UnknownDocumentTypeError
	switch {
	case errors.Is(err, intake.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.As(err, &typeErr):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, intake.ErrEmptyBatch),
		errors.Is(err, intake.ErrInvalidDate),
		errors.Is(err, intake.ErrNegativeQuantity):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrDuplicateCode):
		respondError(w, http.StatusConflict, err.Error())
	default:
		config.LogError(r.Logger, "handlers", op, "", nil, err)
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
