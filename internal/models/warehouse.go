package models

import (
	"time"
)

// Warehouse represents a warehouse in the system
type Warehouse struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code        string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"code" validate:"required,max=32"`
	Name        string    `gorm:"not null;index" json:"name" validate:"required"`
	Address     string    `json:"address"`
	ManagerName string    `json:"manager_name"`
	Phone       string    `json:"phone"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Warehouse model
func (Warehouse) TableName() string {
	return "warehouses"
}

// Supplier is a counterparty offered by the review form
type Supplier struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code      string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"code" validate:"required,max=32"`
	Name      string    `gorm:"not null" json:"name" validate:"required"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}
