package intake

import (
	"context"
	"errors"

	"github.com/xelth-com/receiptdesk/internal/models"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("record not found")

// Store runs work inside one database transaction.
// If fn returns an error nothing it wrote is kept.
type Store interface {
	WithinTx(ctx context.Context, fn func(Repo) error) error
}

// Repo is the set of queries the intake flow needs, bound to a transaction
type Repo interface {
	DocumentTypes(ctx context.Context) ([]models.DocumentType, error)
	ActiveWarehouses(ctx context.Context) ([]models.Warehouse, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	// DocumentWithItems loads a document, its type and its items
	DocumentWithItems(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error

	// MaterialByKey returns nil, nil when no material has the key
	MaterialByKey(ctx context.Context, nameKey string) (*models.Material, error)
	// InsertMaterial reports false when a row with the same name key or code already exists
	InsertMaterial(ctx context.Context, m *models.Material) (bool, error)

	CreateItem(ctx context.Context, item *models.DocumentItem) error
	UpdateItem(ctx context.Context, item *models.DocumentItem) error

	// ApplyMovement records the movement and adds its Delta to the balance
	ApplyMovement(ctx context.Context, mv *models.InventoryTransaction) error
	DocumentMovements(ctx context.Context, documentID string) ([]models.InventoryTransaction, error)
	// RevertMovements subtracts every movement of the document from the balances and deletes them
	RevertMovements(ctx context.Context, documentID string) error
}
