package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xelth-com/receiptdesk/internal/config"
	"github.com/xelth-com/receiptdesk/internal/database"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var demoWarehouses = []models.Warehouse{
	{Code: "KHO-HN", Name: "Kho Hà Nội", Address: "Số 12 Phạm Hùng, Nam Từ Liêm, Hà Nội", ManagerName: "Nguyễn Văn An", Phone: "0243 856 1122", IsActive: true},
	{Code: "KHO-HCM", Name: "Kho Hồ Chí Minh", Address: "Lô B3 KCN Tân Bình, TP.HCM", ManagerName: "Trần Thị Bình", Phone: "0283 815 3344", IsActive: true},
	{Code: "KHO-DN", Name: "Kho Đà Nẵng", Address: "KCN Hòa Khánh, Liên Chiểu, Đà Nẵng", ManagerName: "Lê Văn Cường", Phone: "0236 373 5566", IsActive: true},
	{Code: "KHO-CT", Name: "Công trình Cầu Giấy", Address: "Dự án chung cư Cầu Giấy", ManagerName: "Phạm Minh Đức", IsActive: true},
}

var demoSuppliers = []models.Supplier{
	{Code: "NCC-HP", Name: "Công ty CP Thép Hòa Phát", Address: "KCN Phố Nối A, Hưng Yên", Phone: "0221 394 2884", IsActive: true},
	{Code: "NCC-VC", Name: "Xi măng Vicem Hà Tiên", Address: "360 Bến Chương Dương, Quận 1, TP.HCM", Phone: "0283 836 8363", IsActive: true},
	{Code: "NCC-CD", Name: "Dây cáp điện Cadivi", Address: "70-72 Nam Kỳ Khởi Nghĩa, Quận 1, TP.HCM", Phone: "0283 829 9443", IsActive: true},
}

func main() {
	adminEmail := flag.String("admin-email", os.Getenv("ADMIN_EMAIL"), "email of the admin account to create")
	adminPassword := flag.String("admin-password", os.Getenv("ADMIN_PASSWORD"), "password of the admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("❌ Failed to load config: %v", err)
	}
	log := config.NewLogger(cfg)
	log.Info("🌱 ReceiptDesk seeder")

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 1. Schema and document types
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Info("✅ Document types ready")

	// 2. Warehouses and suppliers, keyed by code
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
			Create(&demoWarehouses).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
			Create(&demoSuppliers).Error
	})
	if err != nil {
		log.Fatalf("❌ Failed to seed catalog: %v", err)
	}
	log.Infof("🏭 %d warehouses, %d suppliers ensured", len(demoWarehouses), len(demoSuppliers))

	// 3. Admin account
	if *adminEmail == "" {
		log.Info("ℹ️ No admin email given, skipping account")
		return
	}
	if len(*adminPassword) < 8 {
		log.Fatal("❌ Admin password must be at least 8 characters")
	}
	if err := seedAdmin(db.DB, *adminEmail, *adminPassword); err != nil {
		log.Fatalf("❌ Failed to create admin: %v", err)
	}
	log.WithField("email", *adminEmail).Info("👤 Admin account ready")
}

func seedAdmin(db *gorm.DB, email, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.UserAuth{
		Email:    email,
		Password: hash,
		FullName: "Administrator",
		Role:     "admin",
		IsActive: true,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password", "role", "is_active"}),
	}).Create(&admin).Error
}
