package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory movement types
const (
	MovementIn          = "IN"
	MovementOut         = "OUT"
	MovementTransferIn  = "TRANSFER_IN"
	MovementTransferOut = "TRANSFER_OUT"
)

// Inventory is the balance of one material in one warehouse
type Inventory struct {
	ID          string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MaterialID  string          `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_material_warehouse" json:"material_id"`
	WarehouseID string          `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_material_warehouse" json:"warehouse_id"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,3);not null;default:0" json:"quantity"`
	Unit        string          `json:"unit"`
	LastUpdated time.Time       `gorm:"index" json:"last_updated"`

	Material  *Material  `gorm:"foreignKey:MaterialID" json:"materials,omitempty"`
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouses,omitempty"`
}

// TableName specifies the table name for Inventory model
func (Inventory) TableName() string {
	return "inventory"
}

// InventoryTransaction records one movement posted by a document item
type InventoryTransaction struct {
	ID          string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	DocumentID  string          `gorm:"type:uuid;not null;index" json:"document_id"`
	MaterialID  string          `gorm:"type:uuid;not null;index" json:"material_id"`
	WarehouseID string          `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Type        string          `gorm:"type:varchar(16);not null" json:"type"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,3);not null" json:"quantity"`
	Unit        string          `json:"unit"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`

	Document  *Document  `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouses,omitempty"`
}

// TableName specifies the table name for InventoryTransaction model
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// Delta is the signed effect of the movement on its warehouse balance
func (t InventoryTransaction) Delta() decimal.Decimal {
	switch t.Type {
	case MovementOut, MovementTransferOut:
		return t.Quantity.Neg()
	default:
		return t.Quantity
	}
}
