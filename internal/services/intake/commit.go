package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/utils"
)

const (
	// DefaultMaterialName is used for items the model left unnamed
	DefaultMaterialName = "Vật tư chưa đặt tên"
	// DefaultUnit is used for items without a unit
	DefaultUnit = "Cái"

	maxMaterialCodeAttempts = 3
)

var (
	ErrEmptyBatch       = errors.New("no documents to save")
	ErrInvalidDate      = errors.New("invalid document date")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrMaterialCode     = errors.New("could not allocate a unique material code")
)

// UnknownDocumentTypeError is returned when a type code has no matching row
type UnknownDocumentTypeError struct {
	Code      string
	Available []string
}

func (e *UnknownDocumentTypeError) Error() string {
	available := "NONE"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("document type %q not found (available: %s)", e.Code, available)
}

// CommitResult summarizes a saved batch
type CommitResult struct {
	Saved            int      `json:"saved"`
	DocumentIDs      []string `json:"documents"`
	MaterialsCreated int      `json:"materials_created"`
}

// Problem is one issue found by Validate
type Problem struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Commit saves every document of the batch in one transaction.
// Either all documents, items, materials and postings are written or none are.
func (s *Service) Commit(ctx context.Context, userID string, docs []models.ExtractedData) (*CommitResult, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyBatch
	}

	result := &CommitResult{}
	err := s.store.WithinTx(ctx, func(repo Repo) error {
		result = &CommitResult{DocumentIDs: make([]string, 0, len(docs))}

		// 1. Lookups fetched once per batch
		types, err := repo.DocumentTypes(ctx)
		if err != nil {
			return fmt.Errorf("failed to load document types: %w", err)
		}
		warehouses, err := repo.ActiveWarehouses(ctx)
		if err != nil {
			return fmt.Errorf("failed to load warehouses: %w", err)
		}

		// Names already resolved in this batch
		materials := make(map[string]*models.Material)

		for i := range docs {
			id, created, err := s.commitOne(ctx, repo, userID, &docs[i], types, warehouses, materials)
			if err != nil {
				return fmt.Errorf("document %d: %w", i+1, err)
			}
			result.DocumentIDs = append(result.DocumentIDs, id)
			result.MaterialsCreated += created
		}
		result.Saved = len(result.DocumentIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"saved":             result.Saved,
		"materials_created": result.MaterialsCreated,
		"user_id":           userID,
	}).Info("💾 Batch committed")
	return result, nil
}

func (s *Service) commitOne(
	ctx context.Context,
	repo Repo,
	userID string,
	data *models.ExtractedData,
	types []models.DocumentType,
	warehouses []models.Warehouse,
	materials map[string]*models.Material,
) (string, int, error) {
	// 2. Resolve type and warehouse
	docType, err := resolveDocumentType(data.DocumentType, types)
	if err != nil {
		return "", 0, err
	}
	warehouseID := resolveWarehouse(data.WarehouseName(), warehouses)

	date, err := s.parseDate(data.DocumentDate)
	if err != nil {
		return "", 0, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode extracted data: %w", err)
	}

	// 3. Header
	doc := &models.Document{
		DocumentTypeID:  docType.ID,
		DocumentNumber:  strings.TrimSpace(data.DocumentNumber),
		DocumentDate:    date,
		AIExtractedData: payload,
		Notes:           data.Notes,
		Status:          models.DocumentStatusCompleted,
	}
	if doc.DocumentNumber == "" {
		doc.DocumentNumber = "AUTO-" + utils.RandomToken(6)
	}
	confidence := float64(data.Confidence)
	doc.AIConfidenceScore = &confidence
	if userID != "" {
		doc.CreatedBy = &userID
	}
	assignWarehouses(doc, docType.Code, warehouseID)

	if err := repo.CreateDocument(ctx, doc); err != nil {
		return "", 0, fmt.Errorf("failed to save document %s: %w", doc.DocumentNumber, err)
	}

	// 4. Items and materials
	created := 0
	items := make([]models.DocumentItem, 0, len(data.Items))
	for _, extracted := range data.Items {
		if extracted.Quantity.IsNegative() {
			return "", 0, fmt.Errorf("item %q: %w", extracted.Name, ErrNegativeQuantity)
		}
		name, unit := itemName(extracted.Name), itemUnit(extracted.Unit)

		material, isNew, err := s.ensureMaterial(ctx, repo, name, unit, materials)
		if err != nil {
			return "", 0, fmt.Errorf("failed to create material %s: %w", name, err)
		}
		if isNew {
			created++
		}

		item := models.DocumentItem{
			DocumentID:   doc.ID,
			MaterialID:   material.ID,
			MaterialName: name,
			Quantity:     extracted.Quantity,
			Unit:         unit,
			Notes:        extracted.Notes,
		}
		if err := repo.CreateItem(ctx, &item); err != nil {
			return "", 0, fmt.Errorf("failed to save item %s in %s: %w", name, doc.DocumentNumber, err)
		}
		items = append(items, item)
	}

	// 5. Inventory
	if err := postMovements(ctx, repo, doc, docType.Code, items); err != nil {
		return "", 0, err
	}

	return doc.ID, created, nil
}

// ensureMaterial returns the material for name, creating it when no material
// has the same name key. The bool reports whether a row was inserted.
func (s *Service) ensureMaterial(ctx context.Context, repo Repo, name, unit string, seen map[string]*models.Material) (*models.Material, bool, error) {
	key := utils.NameKey(name)
	if m, ok := seen[key]; ok {
		return m, false, nil
	}

	existing, err := repo.MaterialByKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		seen[key] = existing
		return existing, false, nil
	}

	for attempt := 0; attempt < maxMaterialCodeAttempts; attempt++ {
		m := &models.Material{
			Code:    utils.MaterialCode(name, unit),
			Name:    name,
			NameKey: key,
			Unit:    unit,
		}
		inserted, err := repo.InsertMaterial(ctx, m)
		if err != nil {
			return nil, false, err
		}
		if inserted {
			seen[key] = m
			return m, true, nil
		}

		// Either another writer created the same name or the code collided
		existing, err := repo.MaterialByKey(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			seen[key] = existing
			return existing, false, nil
		}
		s.logger.WithField("code", m.Code).Warn("⚠️ Material code collision, retrying")
	}
	return nil, false, ErrMaterialCode
}

// Validate runs the commit resolution steps without writing and reports
// every problem found. An empty result means Commit would accept the batch.
func (s *Service) Validate(ctx context.Context, docs []models.ExtractedData) ([]Problem, error) {
	problems := []Problem{}
	if len(docs) == 0 {
		return append(problems, Problem{Index: -1, Field: "documents", Message: ErrEmptyBatch.Error()}), nil
	}

	var (
		types      []models.DocumentType
		warehouses []models.Warehouse
	)
	err := s.store.WithinTx(ctx, func(repo Repo) error {
		var err error
		if types, err = repo.DocumentTypes(ctx); err != nil {
			return err
		}
		warehouses, err = repo.ActiveWarehouses(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i, data := range docs {
		docType, err := resolveDocumentType(data.DocumentType, types)
		if err != nil {
			problems = append(problems, Problem{Index: i, Field: "document_type", Message: err.Error()})
		}
		if name := data.WarehouseName(); docType != nil && needsWarehouse(docType.Code) {
			if name == "" {
				problems = append(problems, Problem{Index: i, Field: "warehouse", Message: "warehouse is empty; inventory will not be posted"})
			} else if resolveWarehouse(name, warehouses) == nil {
				problems = append(problems, Problem{Index: i, Field: "warehouse", Message: fmt.Sprintf("warehouse %q not found; inventory will not be posted", name)})
			}
		}
		if _, err := s.parseDate(data.DocumentDate); err != nil {
			problems = append(problems, Problem{Index: i, Field: "document_date", Message: err.Error()})
		}
		if len(data.Items) == 0 {
			problems = append(problems, Problem{Index: i, Field: "items", Message: "document has no items"})
		}
		for j, item := range data.Items {
			if item.Quantity.IsNegative() {
				problems = append(problems, Problem{Index: i, Field: fmt.Sprintf("items[%d].quantity", j), Message: ErrNegativeQuantity.Error()})
			}
		}
	}
	return problems, nil
}

// resolveDocumentType matches the trimmed, upper-cased code (default PN)
func resolveDocumentType(code string, types []models.DocumentType) (*models.DocumentType, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = models.DocumentTypeInbound
	}
	for i := range types {
		if strings.ToUpper(strings.TrimSpace(types[i].Code)) == code {
			return &types[i], nil
		}
	}

	available := make([]string, 0, len(types))
	for _, t := range types {
		available = append(available, t.Code)
	}
	return nil, &UnknownDocumentTypeError{Code: code, Available: available}
}

// resolveWarehouse matches by exact name; no match yields nil
func resolveWarehouse(name string, warehouses []models.Warehouse) *string {
	if name == "" {
		return nil
	}
	for i := range warehouses {
		if warehouses[i].Name == name {
			id := warehouses[i].ID
			return &id
		}
	}
	return nil
}

func needsWarehouse(code string) bool {
	switch code {
	case models.DocumentTypeInbound, models.DocumentTypeOutbound, models.DocumentTypeTransfer:
		return true
	}
	return false
}

// assignWarehouses applies the type rule: PN and PDC set the destination,
// PX and PDC set the source, other codes set neither
func assignWarehouses(doc *models.Document, code string, warehouseID *string) {
	doc.SourceWarehouseID = nil
	doc.DestinationWarehouseID = nil
	if warehouseID == nil {
		return
	}
	if code == models.DocumentTypeInbound || code == models.DocumentTypeTransfer {
		id := *warehouseID
		doc.DestinationWarehouseID = &id
	}
	if code == models.DocumentTypeOutbound || code == models.DocumentTypeTransfer {
		id := *warehouseID
		doc.SourceWarehouseID = &id
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	time.RFC3339,
}

// parseDate accepts ISO and Vietnamese day-first dates; empty means today
func (s *Service) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		y, m, d := s.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

func itemName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultMaterialName
	}
	return name
}

func itemUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return DefaultUnit
	}
	return unit
}
