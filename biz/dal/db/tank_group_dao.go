package db

import (
	"context"
	"errors"
	"strings"

	"github.com/yi-nology/stl_backend/biz/dal/model"

	"gorm.io/gorm"
)

// TankGroupDAO wraps basic CRUD operations for tank group entities.
type TankGroupDAO struct{}

func NewTankGroupDAO() *TankGroupDAO { return &TankGroupDAO{} }

// TankGroupFilter narrows List results. Zero values disable a filter.
type TankGroupFilter struct {
	PlantID uint
	LineID  uint
	Search  string
	Skip    int
	Limit   int
}

// Create persists a new tank group.
func (dao *TankGroupDAO) Create(ctx context.Context, db *gorm.DB, entity *model.TankGroup) error {
	if entity == nil {
		return errors.New("tank group must not be nil")
	}
	return db.WithContext(ctx).Create(entity).Error
}

// Update applies column updates to a tank group.
func (dao *TankGroupDAO) Update(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	result := db.WithContext(ctx).
		Model(&model.TankGroup{}).
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

// GetByID fetches a single tank group.
func (dao *TankGroupDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.TankGroup, error) {
	var entity model.TankGroup
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// List returns tank groups ordered by number then id.
func (dao *TankGroupDAO) List(ctx context.Context, db *gorm.DB, filter TankGroupFilter) ([]model.TankGroup, error) {
	tx := db.WithContext(ctx).Model(&model.TankGroup{})
	if filter.PlantID != 0 {
		tx = tx.Where("plant_id = ?", filter.PlantID)
	}
	if filter.LineID != 0 {
		tx = tx.Where("line_id = ?", filter.LineID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.Skip > 0 {
		tx = tx.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	var entities []model.TankGroup
	if err := tx.Order("number ASC").Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// IDsByLine returns the ids of the tank groups on a line.
func (dao *TankGroupDAO) IDsByLine(ctx context.Context, db *gorm.DB, lineID uint) ([]uint, error) {
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&model.TankGroup{}).
		Where("line_id = ?", lineID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// NumberTaken reports whether another group on the same plant and line uses number.
func (dao *TankGroupDAO) NumberTaken(ctx context.Context, db *gorm.DB, plantID, lineID uint, number int, excludeID uint) (bool, error) {
	var count int64
	tx := db.WithContext(ctx).
		Model(&model.TankGroup{}).
		Where("plant_id = ? AND line_id = ? AND number = ?", plantID, lineID, number)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteCascade removes a tank group and its tanks.
func (dao *TankGroupDAO) DeleteCascade(ctx context.Context, db *gorm.DB, id uint) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("tank_group_id = ?", id).Delete(&model.Tank{}).Error; err != nil {
		return err
	}
	result := tx.Where("id = ?", id).Delete(&model.TankGroup{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
