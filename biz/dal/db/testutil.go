package db

import (
	"context"
	"testing"

	"github.com/yi-nology/stl_backend/biz/dal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Reduce log noise in tests
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// every pooled connection to :memory: would be a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	return db
}

// CleanupTestDB closes the database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close DB: %v", err)
	}
}

// CreateTestCustomer creates a customer with default values
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name, Town: "Tampere", Country: "FI"}
	if err := NewCustomerDAO().Create(context.Background(), db, c); err != nil {
		t.Fatalf("Failed to create test customer: %v", err)
	}
	return c
}

// CreateTestPlant inserts a plant revision row directly
func CreateTestPlant(t *testing.T, db *gorm.DB, customerID uint, name string, number int, status string) *model.Plant {
	t.Helper()
	p := &model.Plant{
		CustomerID:       customerID,
		Name:             name,
		Revision:         number,
		RevisionName:     "Initial Design",
		RevisionStatus:   status,
		IsActiveRevision: status == model.RevisionStatusActive,
		CreatedBy:        "test",
	}
	if status == model.RevisionStatusActive {
		p.ActiveSlot = ActiveSlot(customerID, name)
	}
	if err := NewPlantDAO().Create(context.Background(), db, p); err != nil {
		t.Fatalf("Failed to create test plant: %v", err)
	}
	return p
}

// CreateTestLine creates a line on a plant
func CreateTestLine(t *testing.T, db *gorm.DB, plantID uint, number int) *model.Line {
	t.Helper()
	l := &model.Line{PlantID: plantID, Number: number}
	if err := NewLineDAO().Create(context.Background(), db, l); err != nil {
		t.Fatalf("Failed to create test line: %v", err)
	}
	return l
}

// CreateTestTankGroup creates a tank group on a line
func CreateTestTankGroup(t *testing.T, db *gorm.DB, plantID, lineID uint, number int) *model.TankGroup {
	t.Helper()
	n := number
	g := &model.TankGroup{Name: "group", Number: &n, PlantID: plantID, LineID: lineID}
	if err := NewTankGroupDAO().Create(context.Background(), db, g); err != nil {
		t.Fatalf("Failed to create test tank group: %v", err)
	}
	return g
}

// CreateTestTank creates a tank, grouped when groupID is not nil
func CreateTestTank(t *testing.T, db *gorm.DB, plantID uint, groupID *uint, number int) *model.Tank {
	t.Helper()
	n := number
	tank := &model.Tank{Name: "tank", Number: &n, PlantID: plantID, TankGroupID: groupID}
	if err := NewTankDAO().Create(context.Background(), db, tank); err != nil {
		t.Fatalf("Failed to create test tank: %v", err)
	}
	return tank
}
