package intake

import (
	"context"
	"errors"
	"time"

	"github.com/xelth-com/receiptdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the PostgreSQL implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// WithinTx implements Store
func (s *GormStore) WithinTx(ctx context.Context, fn func(Repo) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepo{tx: tx})
	})
}

type gormRepo struct {
	tx *gorm.DB
}

func (r *gormRepo) DocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	var types []models.DocumentType
	err := r.tx.WithContext(ctx).Order("code").Find(&types).Error
	return types, err
}

func (r *gormRepo) ActiveWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	err := r.tx.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&warehouses).Error
	return warehouses, err
}

func (r *gormRepo) CreateDocument(ctx context.Context, doc *models.Document) error {
	return r.tx.WithContext(ctx).Omit(clause.Associations).Create(doc).Error
}

func (r *gormRepo) DocumentWithItems(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := r.tx.WithContext(ctx).
		Preload("DocumentType").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *gormRepo) UpdateDocument(ctx context.Context, doc *models.Document) error {
	return r.tx.WithContext(ctx).Model(&models.Document{ID: doc.ID}).Updates(map[string]interface{}{
		"document_number": doc.DocumentNumber,
		"document_date":   doc.DocumentDate,
		"notes":           doc.Notes,
		"status":          doc.Status,
	}).Error
}

func (r *gormRepo) DeleteDocument(ctx context.Context, id string) error {
	res := r.tx.WithContext(ctx).Where("id = ?", id).Delete(&models.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepo) MaterialByKey(ctx context.Context, nameKey string) (*models.Material, error) {
	var m models.Material
	err := r.tx.WithContext(ctx).Where("name_key = ?", nameKey).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// InsertMaterial uses ON CONFLICT DO NOTHING so a concurrent insert of the same
// name leaves this transaction usable; the caller re-reads by key.
func (r *gormRepo) InsertMaterial(ctx context.Context, m *models.Material) (bool, error) {
	res := r.tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepo) CreateItem(ctx context.Context, item *models.DocumentItem) error {
	return r.tx.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *gormRepo) UpdateItem(ctx context.Context, item *models.DocumentItem) error {
	res := r.tx.WithContext(ctx).Model(&models.DocumentItem{ID: item.ID}).
		Where("document_id = ?", item.DocumentID).
		Updates(map[string]interface{}{
			"material_id":   item.MaterialID,
			"material_name": item.MaterialName,
			"quantity":      item.Quantity,
			"unit":          item.Unit,
			"notes":         item.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepo) ApplyMovement(ctx context.Context, mv *models.InventoryTransaction) error {
	db := r.tx.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(mv).Error; err != nil {
		return err
	}

	balance := models.Inventory{
		MaterialID:  mv.MaterialID,
		WarehouseID: mv.WarehouseID,
		Quantity:    mv.Delta(),
		Unit:        mv.Unit,
		LastUpdated: time.Now().UTC(),
	}
	return db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "material_id"}, {Name: "warehouse_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":     gorm.Expr("inventory.quantity + EXCLUDED.quantity"),
			"last_updated": gorm.Expr("EXCLUDED.last_updated"),
		}),
	}).Create(&balance).Error
}

func (r *gormRepo) DocumentMovements(ctx context.Context, documentID string) ([]models.InventoryTransaction, error) {
	var txs []models.InventoryTransaction
	err := r.tx.WithContext(ctx).Where("document_id = ?", documentID).Order("created_at").Find(&txs).Error
	return txs, err
}

func (r *gormRepo) RevertMovements(ctx context.Context, documentID string) error {
	movements, err := r.DocumentMovements(ctx, documentID)
	if err != nil {
		return err
	}

	db := r.tx.WithContext(ctx)
	for _, mv := range movements {
		err := db.Model(&models.Inventory{}).
			Where("material_id = ? AND warehouse_id = ?", mv.MaterialID, mv.WarehouseID).
			Updates(map[string]interface{}{
				"quantity":     gorm.Expr("quantity - ?", mv.Delta()),
				"last_updated": time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}
	}

	return db.Where("document_id = ?", documentID).Delete(&models.InventoryTransaction{}).Error
}
