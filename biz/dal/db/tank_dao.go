package db

import (
	"context"
	"errors"
	"strings"

	"github.com/yi-nology/stl_backend/biz/dal/model"

	"gorm.io/gorm"
)

// TankDAO wraps basic CRUD operations for tank entities.
type TankDAO struct{}

func NewTankDAO() *TankDAO { return &TankDAO{} }

// TankFilter narrows List results. Zero values disable a filter.
type TankFilter struct {
	PlantID     uint
	TankGroupID uint
	Search      string
	Skip        int
	Limit       int
}

// Create persists a new tank.
func (dao *TankDAO) Create(ctx context.Context, db *gorm.DB, entity *model.Tank) error {
	if entity == nil {
		return errors.New("tank must not be nil")
	}
	return db.WithContext(ctx).Create(entity).Error
}

// CreateBatch inserts several tanks in one statement.
func (dao *TankDAO) CreateBatch(ctx context.Context, db *gorm.DB, entities []model.Tank) error {
	if len(entities) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&entities).Error
}

// Update applies column updates to a tank.
func (dao *TankDAO) Update(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	result := db.WithContext(ctx).
		Model(&model.Tank{}).
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

// Delete performs a hard delete by id.
func (dao *TankDAO) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tank{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID fetches a single tank.
func (dao *TankDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.Tank, error) {
	var entity model.Tank
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// List returns tanks ordered by number then id.
func (dao *TankDAO) List(ctx context.Context, db *gorm.DB, filter TankFilter) ([]model.Tank, error) {
	tx := db.WithContext(ctx).Model(&model.Tank{})
	if filter.PlantID != 0 {
		tx = tx.Where("plant_id = ?", filter.PlantID)
	}
	if filter.TankGroupID != 0 {
		tx = tx.Where("tank_group_id = ?", filter.TankGroupID)
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
	var entities []model.Tank
	if err := tx.Order("number ASC").Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// ListForLine returns tanks in the given groups plus the ungrouped tanks of the plant.
func (dao *TankDAO) ListForLine(ctx context.Context, db *gorm.DB, plantID uint, groupIDs []uint) ([]model.Tank, error) {
	tx := db.WithContext(ctx).Model(&model.Tank{})
	ungrouped := "(tank_group_id IS NULL AND plant_id = ?)"
	if len(groupIDs) > 0 {
		tx = tx.Where("tank_group_id IN ? OR "+ungrouped, groupIDs, plantID)
	} else {
		tx = tx.Where(ungrouped, plantID)
	}
	var entities []model.Tank
	if err := tx.Order("number ASC").Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// CountByGroup counts the tanks of a tank group.
func (dao *TankDAO) CountByGroup(ctx context.Context, db *gorm.DB, groupID uint) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Tank{}).Where("tank_group_id = ?", groupID).Count(&count).Error
	return count, err
}

// NumberTaken reports whether another tank of the group uses number.
func (dao *TankDAO) NumberTaken(ctx context.Context, db *gorm.DB, groupID uint, number int, excludeID uint) (bool, error) {
	var count int64
	tx := db.WithContext(ctx).
		Model(&model.Tank{}).
		Where("tank_group_id = ? AND number = ?", groupID, number)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
