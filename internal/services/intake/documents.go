package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/utils"
)

// DocumentUpdate is a partial edit of a saved document.
// Nil fields are left unchanged.
type DocumentUpdate struct {
	DocumentNumber *string      `json:"document_number" validate:"omitempty,min=1,max=64"`
	DocumentDate   *string      `json:"document_date"`
	Notes          *string      `json:"notes"`
	Status         *string      `json:"status" validate:"omitempty,oneof=draft completed cancelled"`
	Items          []ItemUpdate `json:"items" validate:"dive"`
}

// ItemUpdate edits one existing line of the document
type ItemUpdate struct {
	ID           string           `json:"id" validate:"required,uuid"`
	MaterialName *string          `json:"material_name" validate:"omitempty,min=1"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Unit         *string          `json:"unit"`
	Notes        *string          `json:"notes"`
}

// UpdateDocument applies the edit and re-posts the document's inventory.
// Only completed documents hold postings.
func (s *Service) UpdateDocument(ctx context.Context, id string, upd DocumentUpdate) (*models.Document, error) {
	var updated *models.Document
	err := s.store.WithinTx(ctx, func(repo Repo) error {
		doc, err := repo.DocumentWithItems(ctx, id)
		if err != nil {
			return err
		}

		// 1. Header
		if upd.DocumentNumber != nil {
			doc.DocumentNumber = strings.TrimSpace(*upd.DocumentNumber)
		}
		if upd.DocumentDate != nil {
			date, err := s.parseDate(*upd.DocumentDate)
			if err != nil {
				return err
			}
			doc.DocumentDate = date
		}
		if upd.Notes != nil {
			doc.Notes = *upd.Notes
		}
		if upd.Status != nil {
			doc.Status = *upd.Status
		}
		if err := repo.UpdateDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}

		// 2. Items. A renamed item is re-pointed at the material of its new name.
		index := make(map[string]int, len(doc.Items))
		for i, item := range doc.Items {
			index[item.ID] = i
		}
		seen := make(map[string]*models.Material)
		for _, change := range upd.Items {
			i, ok := index[change.ID]
			if !ok {
				return fmt.Errorf("item %s: %w", change.ID, ErrNotFound)
			}
			item := &doc.Items[i]
			if change.Quantity != nil {
				if change.Quantity.IsNegative() {
					return fmt.Errorf("item %s: %w", change.ID, ErrNegativeQuantity)
				}
				item.Quantity = *change.Quantity
			}
			if change.Unit != nil {
				item.Unit = itemUnit(*change.Unit)
			}
			if change.Notes != nil {
				item.Notes = *change.Notes
			}
			if change.MaterialName != nil {
				name := itemName(*change.MaterialName)
				if utils.NameKey(name) != utils.NameKey(item.MaterialName) {
					material, _, err := s.ensureMaterial(ctx, repo, name, item.Unit, seen)
					if err != nil {
						return fmt.Errorf("item %s: %w", change.ID, err)
					}
					item.MaterialID = material.ID
					item.Material = material
				}
				item.MaterialName = name
			}
			if err := repo.UpdateItem(ctx, item); err != nil {
				return fmt.Errorf("failed to update item %s: %w", change.ID, err)
			}
		}

		// 3. Inventory
		if err := repo.RevertMovements(ctx, doc.ID); err != nil {
			return fmt.Errorf("failed to revert inventory: %w", err)
		}
		if err := postMovements(ctx, repo, doc, typeCode(doc), doc.Items); err != nil {
			return err
		}

		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": id,
		"status":      updated.Status,
	}).Info("✏️ Document updated")
	return updated, nil
}

// DeleteDocument reverses the document's inventory postings and removes
// it together with its items
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	err := s.store.WithinTx(ctx, func(repo Repo) error {
		if err := repo.RevertMovements(ctx, id); err != nil {
			return fmt.Errorf("failed to revert inventory: %w", err)
		}
		return repo.DeleteDocument(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.WithField("document_id", id).Info("🗑️ Document deleted")
	return nil
}

func typeCode(doc *models.Document) string {
	if doc.DocumentType == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(doc.DocumentType.Code))
}
