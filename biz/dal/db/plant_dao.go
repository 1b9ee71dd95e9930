package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/yi-nology/stl_backend/biz/dal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlantDAO provides queries over plant revision rows.
type PlantDAO struct{}

func NewPlantDAO() *PlantDAO { return &PlantDAO{} }

// PlantFilter narrows List results. Zero values disable a filter.
type PlantFilter struct {
	CustomerID uint
	Search     string
	ActiveOnly bool
	Skip       int
	Limit      int
}

// PlantWithCustomer is a plant row joined with its customer name.
type PlantWithCustomer struct {
	model.Plant  `gorm:"embedded"`
	CustomerName string `gorm:"column:customer_name"`
}

// ActiveSlot is the value stored in plant.active_slot while a revision is ACTIVE.
func ActiveSlot(customerID uint, name string) *string {
	s := fmt.Sprintf("%d:%s", customerID, name)
	return &s
}

// Create inserts a plant row.
func (dao *PlantDAO) Create(ctx context.Context, db *gorm.DB, entity *model.Plant) error {
	return db.WithContext(ctx).Create(entity).Error
}

// GetByID fetches a plant revision by id.
func (dao *PlantDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.Plant, error) {
	var entity model.Plant
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// ListLineage returns every revision of a lineage, newest first. With lock set
// the rows are selected FOR UPDATE (ignored by SQLite).
func (dao *PlantDAO) ListLineage(ctx context.Context, db *gorm.DB, customerID uint, name string, lock bool) ([]model.Plant, error) {
	tx := db.WithContext(ctx)
	if lock {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var entities []model.Plant
	if err := tx.
		Where("customer_id = ? AND name = ?", customerID, name).
		Order("revision DESC").
		Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// GetActive returns the ACTIVE revision of a lineage.
func (dao *PlantDAO) GetActive(ctx context.Context, db *gorm.DB, customerID uint, name string, lock bool) (*model.Plant, error) {
	tx := db.WithContext(ctx)
	if lock {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var entity model.Plant
	if err := tx.
		Where("customer_id = ? AND name = ? AND revision_status = ?", customerID, name, model.RevisionStatusActive).
		First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// Update applies column updates to a plant row.
func (dao *PlantDAO) Update(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	result := db.WithContext(ctx).
		Model(&model.Plant{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade removes a plant row with its lines, tank groups and tanks.
// Callers run it inside a transaction.
func (dao *PlantDAO) DeleteCascade(ctx context.Context, db *gorm.DB, id uint) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("plant_id = ?", id).Delete(&model.Tank{}).Error; err != nil {
		return err
	}
	if err := tx.Where("plant_id = ?", id).Delete(&model.TankGroup{}).Error; err != nil {
		return err
	}
	if err := tx.Where("plant_id = ?", id).Delete(&model.Line{}).Error; err != nil {
		return err
	}
	result := tx.Where("id = ?", id).Delete(&model.Plant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IDsByCustomer returns the ids of every plant row of a customer.
func (dao *PlantDAO) IDsByCustomer(ctx context.Context, db *gorm.DB, customerID uint) ([]uint, error) {
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&model.Plant{}).
		Where("customer_id = ?", customerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByCustomer counts plant rows of a customer.
func (dao *PlantDAO) CountByCustomer(ctx context.Context, db *gorm.DB, customerID uint) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Plant{}).Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

// ListByCustomer returns every revision of every lineage owned by a customer.
func (dao *PlantDAO) ListByCustomer(ctx context.Context, db *gorm.DB, customerID uint) ([]model.Plant, error) {
	var entities []model.Plant
	if err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("name ASC").Order("revision DESC").
		Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// List returns plant rows joined with their customer name.
func (dao *PlantDAO) List(ctx context.Context, db *gorm.DB, filter PlantFilter) ([]PlantWithCustomer, error) {
	tx := db.WithContext(ctx).
		Table(model.Plant{}.TableName()).
		Select("plant.*, customer.name AS customer_name").
		Joins("LEFT JOIN customer ON customer.id = plant.customer_id")
	if filter.CustomerID != 0 {
		tx = tx.Where("plant.customer_id = ?", filter.CustomerID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		tx = tx.Where("LOWER(plant.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.ActiveOnly {
		tx = tx.Where("plant.revision_status = ?", model.RevisionStatusActive)
	}
	if filter.Skip > 0 {
		tx = tx.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []PlantWithCustomer
	if err := tx.
		Order("plant.customer_id ASC").Order("plant.name ASC").Order("plant.revision DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ChildCounts returns line and tank counts keyed by plant id.
func (dao *PlantDAO) ChildCounts(ctx context.Context, db *gorm.DB, plantIDs []uint) (lines map[uint]int, tanks map[uint]int, err error) {
	lines = make(map[uint]int, len(plantIDs))
	tanks = make(map[uint]int, len(plantIDs))
	if len(plantIDs) == 0 {
		return lines, tanks, nil
	}

	type countRow struct {
		PlantID uint
		Total   int
	}
	var lineRows, tankRows []countRow
	if err := db.WithContext(ctx).
		Model(&model.Line{}).
		Select("plant_id, COUNT(*) AS total").
		Where("plant_id IN ?", plantIDs).
		Group("plant_id").
		Scan(&lineRows).Error; err != nil {
		return nil, nil, err
	}
	if err := db.WithContext(ctx).
		Model(&model.Tank{}).
		Select("plant_id, COUNT(*) AS total").
		Where("plant_id IN ?", plantIDs).
		Group("plant_id").
		Scan(&tankRows).Error; err != nil {
		return nil, nil, err
	}
	for _, r := range lineRows {
		lines[r.PlantID] = r.Total
	}
	for _, r := range tankRows {
		tanks[r.PlantID] = r.Total
	}
	return lines, tanks, nil
}

// ListAll returns every plant row ordered by lineage and revision.
func (dao *PlantDAO) ListAll(ctx context.Context, db *gorm.DB) ([]model.Plant, error) {
	var entities []model.Plant
	if err := db.WithContext(ctx).
		Order("customer_id ASC").Order("name ASC").Order("revision ASC").
		Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
