package models

import (
	"time"

	"github.com/xelth-com/receiptdesk/internal/utils"
	"gorm.io/gorm"
)

// Material is a catalog entry for a trackable good.
// NameKey is the normalized name used for de-duplication.
type Material struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	NameKey   string    `gorm:"uniqueIndex;not null" json:"-"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Material model
func (Material) TableName() string {
	return "materials"
}

// BeforeSave keeps NameKey in step with Name
func (m *Material) BeforeSave(tx *gorm.DB) error {
	m.NameKey = utils.NameKey(m.Name)
	return nil
}
