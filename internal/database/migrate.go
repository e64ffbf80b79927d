package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xelth-com/receiptdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table owned by the service in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.UserAuth{},
		&models.DocumentType{},
		&models.Warehouse{},
		&models.Supplier{},
		&models.Material{},
		&models.Document{},
		&models.DocumentItem{},
		&models.Inventory{},
		&models.InventoryTransaction{},
	}
}

// Migrate creates or updates the schema and makes sure the document types exist
func (db *DB) Migrate() error {
	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		db.log.WithError(err).Warn("⚠️  pgcrypto extension unavailable, relying on built-in gen_random_uuid")
	}
	if err := db.DB.AutoMigrate(Models()...); err != nil {
		return err
	}
	return SeedDocumentTypes(db.DB)
}

// SeedDocumentTypes inserts the default document types that are missing
func SeedDocumentTypes(db *gorm.DB) error {
	types := models.DefaultDocumentTypes()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&types).Error
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint failure
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
