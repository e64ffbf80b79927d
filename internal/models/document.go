package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Document type codes
const (
	DocumentTypeInbound  = "PN"  // Phiếu nhập kho
	DocumentTypeOutbound = "PX"  // Phiếu xuất kho
	DocumentTypeTransfer = "PDC" // Phiếu điều chuyển
	DocumentTypeReturn   = "PTH" // Phiếu trả hàng
)

// Document type categories, used by list filters and stats
const (
	CategoryIn       = "IN"
	CategoryOut      = "OUT"
	CategoryTransfer = "TRANSFER"
)

// Document statuses
const (
	DocumentStatusDraft     = "draft"
	DocumentStatusCompleted = "completed"
	DocumentStatusCancelled = "cancelled"
)

// DocumentType is one kind of warehouse receipt (PN, PX, PDC, PTH)
type DocumentType struct {
	ID   string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code string `gorm:"type:varchar(16);uniqueIndex;not null" json:"code"`
	Name string `gorm:"not null" json:"name"`
	Type string `gorm:"type:varchar(16);not null;index" json:"type"` // IN, OUT, TRANSFER

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (DocumentType) TableName() string {
	return "document_types"
}

// DefaultDocumentTypes is the closed set of receipt kinds seeded on startup
func DefaultDocumentTypes() []DocumentType {
	return []DocumentType{
		{Code: DocumentTypeInbound, Name: "Phiếu Nhập Kho", Type: CategoryIn},
		{Code: DocumentTypeOutbound, Name: "Phiếu Xuất Kho", Type: CategoryOut},
		{Code: DocumentTypeTransfer, Name: "Phiếu Điều Chuyển", Type: CategoryTransfer},
		{Code: DocumentTypeReturn, Name: "Phiếu Trả Hàng", Type: CategoryIn},
	}
}

// Document is a persisted warehouse receipt
type Document struct {
	ID                     string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	DocumentTypeID         string         `gorm:"type:uuid;not null;index" json:"document_type_id"`
	DocumentNumber         string         `gorm:"not null;index" json:"document_number"`
	DocumentDate           time.Time      `gorm:"type:date;not null" json:"document_date"`
	SourceWarehouseID      *string        `gorm:"type:uuid;index" json:"source_warehouse_id"`
	DestinationWarehouseID *string        `gorm:"type:uuid;index" json:"destination_warehouse_id"`
	AIExtractedData        datatypes.JSON `gorm:"type:jsonb" json:"ai_extracted_data,omitempty"`
	AIConfidenceScore      *float64       `json:"ai_confidence_score"`
	Notes                  string         `json:"notes"`
	Status                 string         `gorm:"type:varchar(16);default:'draft';index" json:"status"`
	CreatedBy              *string        `gorm:"type:uuid;index" json:"created_by"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	DocumentType         *DocumentType  `gorm:"foreignKey:DocumentTypeID" json:"document_types,omitempty"`
	SourceWarehouse      *Warehouse     `gorm:"foreignKey:SourceWarehouseID" json:"source_warehouse,omitempty"`
	DestinationWarehouse *Warehouse     `gorm:"foreignKey:DestinationWarehouseID" json:"destination_warehouse,omitempty"`
	Items                []DocumentItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName specifies the table name
func (Document) TableName() string {
	return "documents"
}

// DocumentItem is one line of a document
type DocumentItem struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	DocumentID string `gorm:"type:uuid;not null;index" json:"document_id"`
	MaterialID string `gorm:"type:uuid;not null;index" json:"material_id"`
	// MaterialName duplicates materials.name for older readers of document_items
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `gorm:"type:numeric(18,3);not null;default:0" json:"quantity"`
	Unit         string          `json:"unit"`
	Notes        string          `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Material *Material `gorm:"foreignKey:MaterialID" json:"materials,omitempty"`
}

// TableName specifies the table name
func (DocumentItem) TableName() string {
	return "document_items"
}
