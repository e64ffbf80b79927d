package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xelth-com/receiptdesk/internal/database"
	"github.com/xelth-com/receiptdesk/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateCode is returned when a warehouse code is already taken
var ErrDuplicateCode = errors.New("code already exists")

// Catalog serves the read side of the dashboard and warehouse maintenance
type Catalog struct {
	db *gorm.DB
}

// New creates a catalog over db
func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// ListDocuments returns documents of category (IN, OUT, TRANSFER or all),
// newest first, with stats over every document
func (c *Catalog) ListDocuments(ctx context.Context, category string) ([]models.Document, DocumentStats, error) {
	var docs []models.Document
	err := c.db.WithContext(ctx).
		Preload("DocumentType").
		Preload("SourceWarehouse").
		Preload("DestinationWarehouse").
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, DocumentStats{}, err
	}
	return FilterDocuments(docs, category), ComputeDocumentStats(docs), nil
}

// GetDocument loads a document with its items and their materials
func (c *Catalog) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := c.db.WithContext(ctx).
		Preload("DocumentType").
		Preload("SourceWarehouse").
		Preload("DestinationWarehouse").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Material").
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListWarehouses returns warehouses ordered by name
func (c *Catalog) ListWarehouses(ctx context.Context, activeOnly bool) ([]models.Warehouse, error) {
	q := c.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var warehouses []models.Warehouse
	return warehouses, q.Find(&warehouses).Error
}

// ActiveSuppliers returns the counterparty picklist
func (c *Catalog) ActiveSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := c.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&suppliers).Error
	return suppliers, err
}

// WarehouseInput is the editable part of a warehouse
type WarehouseInput struct {
	Code        string `json:"code" validate:"required,max=32"`
	Name        string `json:"name" validate:"required,max=255"`
	Address     string `json:"address" validate:"max=500"`
	ManagerName string `json:"manager_name" validate:"max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	IsActive    *bool  `json:"is_active"`
}

// CreateWarehouse inserts a new warehouse
func (c *Catalog) CreateWarehouse(ctx context.Context, in WarehouseInput) (*models.Warehouse, error) {
	wh := &models.Warehouse{
		Code:        in.Code,
		Name:        in.Name,
		Address:     in.Address,
		ManagerName: in.ManagerName,
		Phone:       in.Phone,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := c.db.WithContext(ctx).Create(wh).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("warehouse %s: %w", in.Code, ErrDuplicateCode)
		}
		return nil, err
	}
	// is_active has a DB default; write false explicitly
	if !wh.IsActive {
		if err := c.db.WithContext(ctx).Model(wh).Update("is_active", false).Error; err != nil {
			return nil, err
		}
	}
	return wh, nil
}

// UpdateWarehouse replaces the editable fields
func (c *Catalog) UpdateWarehouse(ctx context.Context, id string, in WarehouseInput) (*models.Warehouse, error) {
	var wh models.Warehouse
	db := c.db.WithContext(ctx)
	if err := db.Where("id = ?", id).First(&wh).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"code":         in.Code,
		"name":         in.Name,
		"address":      in.Address,
		"manager_name": in.ManagerName,
		"phone":        in.Phone,
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := db.Model(&wh).Updates(updates).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("warehouse %s: %w", in.Code, ErrDuplicateCode)
		}
		return nil, err
	}
	if err := db.Where("id = ?", id).First(&wh).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

// ToggleWarehouse flips is_active
func (c *Catalog) ToggleWarehouse(ctx context.Context, id string) (*models.Warehouse, error) {
	var wh models.Warehouse
	db := c.db.WithContext(ctx)
	if err := db.Where("id = ?", id).First(&wh).Error; err != nil {
		return nil, err
	}
	active := !wh.IsActive
	if err := db.Model(&models.Warehouse{}).Where("id = ?", id).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	wh.IsActive = active
	return &wh, nil
}

// Materials returns every material with its totals, and the page stats
func (c *Catalog) Materials(ctx context.Context) ([]MaterialSummary, MaterialStats, error) {
	db := c.db.WithContext(ctx)

	var materials []models.Material
	if err := db.Order("name").Find(&materials).Error; err != nil {
		return nil, MaterialStats{}, err
	}
	var balances []models.Inventory
	if err := db.Select("material_id", "quantity").Find(&balances).Error; err != nil {
		return nil, MaterialStats{}, err
	}
	var movements []models.InventoryTransaction
	if err := db.Select("material_id", "type", "quantity").Find(&movements).Error; err != nil {
		return nil, MaterialStats{}, err
	}

	summaries := SummarizeMaterials(materials, balances, movements)
	return summaries, ComputeMaterialStats(summaries), nil
}

// MaterialDetail is one material with balances per warehouse and its history
type MaterialDetail struct {
	Material     models.Material               `json:"material"`
	Balances     []models.Inventory            `json:"inventory"`
	Transactions []models.InventoryTransaction `json:"transactions"`
}

// GetMaterial loads a material's detail view
func (c *Catalog) GetMaterial(ctx context.Context, id string) (*MaterialDetail, error) {
	db := c.db.WithContext(ctx)

	var detail MaterialDetail
	if err := db.Where("id = ?", id).First(&detail.Material).Error; err != nil {
		return nil, err
	}
	if err := db.Preload("Warehouse").Where("material_id = ?", id).Find(&detail.Balances).Error; err != nil {
		return nil, err
	}
	err := db.Preload("Document.DocumentType").
		Preload("Warehouse").
		Where("material_id = ?", id).
		Order("created_at DESC").
		Find(&detail.Transactions).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// MaterialsByIDs loads materials in the order given. Unknown and malformed ids are skipped.
func (c *Catalog) MaterialsByIDs(ctx context.Context, ids []string) ([]models.Material, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []models.Material{}, nil
	}

	var found []models.Material
	if err := c.db.WithContext(ctx).Where("id IN ?", valid).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Material, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	out := make([]models.Material, 0, len(found))
	for _, id := range valid {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Inventory returns balance rows filtered by warehouse and search text, with
// stats computed over all rows
func (c *Catalog) Inventory(ctx context.Context, warehouseID, q string) ([]models.Inventory, InventoryStats, error) {
	db := c.db.WithContext(ctx)

	var rows []models.Inventory
	err := db.Preload("Material").Preload("Warehouse").Order("last_updated DESC").Find(&rows).Error
	if err != nil {
		return nil, InventoryStats{}, err
	}
	var warehouses int64
	if err := db.Model(&models.Warehouse{}).Count(&warehouses).Error; err != nil {
		return nil, InventoryStats{}, err
	}

	return FilterInventory(rows, warehouseID, q), ComputeInventoryStats(rows, int(warehouses)), nil
}

// DashboardCounts backs the landing page
type DashboardCounts struct {
	Documents  int64             `json:"documents"`
	Materials  int64             `json:"materials"`
	Warehouses int64             `json:"warehouses"`
	Recent     []models.Document `json:"recent"`
}

// Dashboard counts documents, materials and active warehouses and lists
// the five latest documents
func (c *Catalog) Dashboard(ctx context.Context) (*DashboardCounts, error) {
	db := c.db.WithContext(ctx)
	var out DashboardCounts

	if err := db.Model(&models.Document{}).Count(&out.Documents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Material{}).Count(&out.Materials).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Warehouse{}).Where("is_active = ?", true).Count(&out.Warehouses).Error; err != nil {
		return nil, err
	}
	err := db.Preload("DocumentType").Order("created_at DESC").Limit(5).Find(&out.Recent).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
