package intake_test

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xelth-com/receiptdesk/internal/database"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/services/intake"
)

func setupTestDB(t *testing.T) *database.DB {
	_ = godotenv.Load("../../../.env")

	// Use a dedicated database; every run truncates the tables.
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	db, err := database.Open(dsn, false, log)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	err = db.Exec(`TRUNCATE TABLE inventory_transactions, inventory, document_items, documents, materials, warehouses CASCADE`).Error
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	if err := db.Create(&models.Warehouse{Code: "KA", Name: "Kho A", IsActive: true}).Error; err != nil {
		t.Fatalf("Failed to seed warehouse: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestGormStore_CommitPostsInventory(t *testing.T) {
	db := setupTestDB(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := intake.NewService(intake.NewGormStore(db.DB), log)
	ctx := context.Background()

	res, err := svc.Commit(ctx, "", []models.ExtractedData{{
		DocumentType: "pn",
		Warehouse:    &models.ExtractedLocation{Name: "Kho A"},
		Items:        []models.ExtractedItem{{Name: "Xi măng", Quantity: decimal.NewFromInt(50), Unit: "Bao"}},
	}})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	var inv models.Inventory
	if err := db.Where("quantity > 0").First(&inv).Error; err != nil {
		t.Fatalf("inventory row missing: %v", err)
	}
	if !inv.Quantity.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected 50 on hand, got %s", inv.Quantity)
	}

	if err := svc.DeleteDocument(ctx, res.DocumentIDs[0]); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	var items int64
	db.Model(&models.DocumentItem{}).Count(&items)
	if items != 0 {
		t.Errorf("expected items to cascade, %d left", items)
	}
	db.First(&inv, "id = ?", inv.ID)
	if !inv.Quantity.IsZero() {
		t.Errorf("expected balance reversed to 0, got %s", inv.Quantity)
	}
}

func TestGormStore_UnknownTypeLeavesNoRows(t *testing.T) {
	db := setupTestDB(t)
	svc := intake.NewService(intake.NewGormStore(db.DB), nil)

	_, err := svc.Commit(context.Background(), "", []models.ExtractedData{
		{Items: []models.ExtractedItem{{Name: "Cát", Quantity: decimal.NewFromInt(1)}}},
		{DocumentType: "NOPE"},
	})
	if err == nil {
		t.Fatal("expected unknown type error")
	}

	var docs, mats int64
	db.Model(&models.Document{}).Count(&docs)
	db.Model(&models.Material{}).Count(&mats)
	if docs != 0 || mats != 0 {
		t.Errorf("expected rollback, found %d documents %d materials", docs, mats)
	}
}

func TestGormStore_ConcurrentCommitsShareMaterial(t *testing.T) {
	db := setupTestDB(t)
	svc := intake.NewService(intake.NewGormStore(db.DB), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Commit(context.Background(), "", []models.ExtractedData{{
				Items: []models.ExtractedItem{{Name: "Thép  Ø10", Quantity: decimal.NewFromInt(1), Unit: "kg"}},
			}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("commit failed: %v", err)
		}
	}

	var mats int64
	db.Model(&models.Material{}).Count(&mats)
	if mats != 1 {
		t.Errorf("expected a single material, got %d", mats)
	}
}
