package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/utils"
)

// setupTestDB opens a named in-memory SQLite database so every connection
// in the pool sees the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Table{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.MenuOption{},
		&models.Order{},
		&models.OrderItem{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Review{},
		&models.StaffMember{},
		&models.ScanLog{},
		&models.Settings{},
		&models.Notification{},
		&models.DBChange{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB) models.MenuCategory {
	t.Helper()
	cat := models.MenuCategory{Name: "Plats " + t.Name()}
	if err := db.Where(models.MenuCategory{Name: cat.Name}).FirstOrCreate(&cat).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return cat
}

func seedMenu(t *testing.T, db *gorm.DB, name string, price float64, options ...models.MenuOption) models.Menu {
	t.Helper()
	cat := seedCategory(t, db)
	menu := models.Menu{
		CategoryID: cat.ID,
		Name:       name,
		Price:      price,
		Available:  true,
		Options:    options,
	}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("failed to seed menu: %v", err)
	}
	return menu
}

func seedTable(t *testing.T, db *gorm.DB, label string, seats int) models.Table {
	t.Helper()
	table := models.Table{Label: label, Seats: seats, Status: models.TableAvailable}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	return table
}

func seedOrder(t *testing.T, db *gorm.DB, table *models.Table, status string, items ...models.OrderItem) models.Order {
	t.Helper()
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Qty)
	}
	order := models.Order{
		TableLabel: table.Label,
		TableDocID: &table.ID,
		Items:      items,
		Total:      total,
		Status:     status,
		UserID:     "test-device",
		CreatedAt:  time.Now(),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return order
}
