package intake

import (
	"context"
	"fmt"

	"github.com/xelth-com/receiptdesk/internal/models"
)

// movementsFor derives the inventory movements of a completed document.
// The destination side adds stock and the source side removes it; a transfer
// posts both as TRANSFER_IN and TRANSFER_OUT. Zero quantities post nothing.
func movementsFor(doc *models.Document, typeCode string, items []models.DocumentItem) []models.InventoryTransaction {
	if doc.Status != models.DocumentStatusCompleted {
		return nil
	}

	inType, outType := models.MovementIn, models.MovementOut
	if typeCode == models.DocumentTypeTransfer {
		inType, outType = models.MovementTransferIn, models.MovementTransferOut
	}

	var movements []models.InventoryTransaction
	for _, item := range items {
		if item.Quantity.IsZero() {
			continue
		}
		if doc.SourceWarehouseID != nil {
			movements = append(movements, models.InventoryTransaction{
				DocumentID:  doc.ID,
				MaterialID:  item.MaterialID,
				WarehouseID: *doc.SourceWarehouseID,
				Type:        outType,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
			})
		}
		if doc.DestinationWarehouseID != nil {
			movements = append(movements, models.InventoryTransaction{
				DocumentID:  doc.ID,
				MaterialID:  item.MaterialID,
				WarehouseID: *doc.DestinationWarehouseID,
				Type:        inType,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
			})
		}
	}
	return movements
}

func postMovements(ctx context.Context, repo Repo, doc *models.Document, typeCode string, items []models.DocumentItem) error {
	for _, mv := range movementsFor(doc, typeCode, items) {
		mv := mv
		if err := repo.ApplyMovement(ctx, &mv); err != nil {
			return fmt.Errorf("failed to post %s movement for %s: %w", mv.Type, doc.DocumentNumber, err)
		}
	}
	return nil
}
