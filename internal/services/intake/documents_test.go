package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/xelth-com/receiptdesk/internal/models"
)

func commitInbound(t *testing.T, svc *Service, quantity int64) string {
	t.Helper()
	res, err := svc.Commit(context.Background(), "", []models.ExtractedData{{
		DocumentType: "PN",
		Warehouse:    &models.ExtractedLocation{Name: "Kho A"},
		Items:        []models.ExtractedItem{{Name: "Xi măng", Quantity: qty(quantity), Unit: "Bao"}},
	}})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return res.DocumentIDs[0]
}

func TestUpdateDocument_RepostsInventory(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	id := commitInbound(t, svc, 50)
	itemID := store.state.items[0].ID
	matID := store.state.items[0].MaterialID

	number := "PN-777"
	newQty := qty(30)
	doc, err := svc.UpdateDocument(ctx, id, DocumentUpdate{
		DocumentNumber: &number,
		Items:          []ItemUpdate{{ID: itemID, Quantity: &newQty}},
	})
	if err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	if doc.DocumentNumber != "PN-777" {
		t.Errorf("expected number PN-777, got %s", doc.DocumentNumber)
	}
	if got := store.balance(matID, "wh-a"); !got.Equal(qty(30)) {
		t.Errorf("expected balance 30 after edit, got %s", got)
	}
	if n := len(store.state.movements); n != 1 {
		t.Errorf("expected 1 movement after re-post, got %d", n)
	}

	cancelled := models.DocumentStatusCancelled
	if _, err := svc.UpdateDocument(ctx, id, DocumentUpdate{Status: &cancelled}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := store.balance(matID, "wh-a"); !got.IsZero() {
		t.Errorf("expected balance 0 after cancel, got %s", got)
	}
	if n := len(store.state.movements); n != 0 {
		t.Errorf("expected no movements for cancelled document, got %d", n)
	}
}

func TestUpdateDocument_Errors(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.UpdateDocument(ctx, "missing", DocumentUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	id := commitInbound(t, svc, 5)
	name := "Cát vàng"
	_, err := svc.UpdateDocument(ctx, id, DocumentUpdate{
		Notes: &name,
		Items: []ItemUpdate{{ID: "other-item", MaterialName: &name}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign item, got %v", err)
	}
	if store.state.documents[0].Notes != "" {
		t.Errorf("failed update should not change notes")
	}

	neg := qty(-3)
	_, err = svc.UpdateDocument(ctx, id, DocumentUpdate{
		Items: []ItemUpdate{{ID: store.state.items[0].ID, Quantity: &neg}},
	})
	if !errors.Is(err, ErrNegativeQuantity) {
		t.Errorf("expected ErrNegativeQuantity, got %v", err)
	}
}

func TestUpdateDocument_RenameMovesStock(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	id := commitInbound(t, svc, 50)
	itemID := store.state.items[0].ID
	oldMat := store.state.items[0].MaterialID

	// Same name key keeps the material
	sameKey := "  xi MĂNG "
	if _, err := svc.UpdateDocument(ctx, id, DocumentUpdate{
		Items: []ItemUpdate{{ID: itemID, MaterialName: &sameKey}},
	}); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	if store.state.items[0].MaterialID != oldMat {
		t.Errorf("same-key rename should keep material %s, got %s", oldMat, store.state.items[0].MaterialID)
	}
	if len(store.state.materials) != 1 {
		t.Errorf("expected 1 material, got %d", len(store.state.materials))
	}

	renamed := "Cát vàng"
	if _, err := svc.UpdateDocument(ctx, id, DocumentUpdate{
		Items: []ItemUpdate{{ID: itemID, MaterialName: &renamed}},
	}); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	sand := store.materialByName("Cát vàng")
	if sand == nil {
		t.Fatal("renamed item should create its material")
	}
	if store.state.items[0].MaterialID != sand.ID || store.state.items[0].MaterialName != "Cát vàng" {
		t.Errorf("item not re-pointed: %+v", store.state.items[0])
	}
	if got := store.balance(oldMat, "wh-a"); !got.IsZero() {
		t.Errorf("old material balance = %s, want 0", got)
	}
	if got := store.balance(sand.ID, "wh-a"); !got.Equal(qty(50)) {
		t.Errorf("new material balance = %s, want 50", got)
	}
}

func TestDeleteDocument(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	keep := commitInbound(t, svc, 10)
	drop := commitInbound(t, svc, 4)
	matID := store.state.items[0].MaterialID

	if err := svc.DeleteDocument(ctx, drop); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}

	if len(store.state.documents) != 1 || store.state.documents[0].ID != keep {
		t.Fatalf("expected only %s to remain, got %+v", keep, store.state.documents)
	}
	for _, it := range store.state.items {
		if it.DocumentID == drop {
			t.Errorf("item of deleted document still present")
		}
	}
	if got := store.balance(matID, "wh-a"); !got.Equal(qty(10)) {
		t.Errorf("expected balance 10 after delete, got %s", got)
	}

	if err := svc.DeleteDocument(ctx, drop); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
