package db

import (
	"context"
	"errors"

	"github.com/yi-nology/stl_backend/biz/dal/model"

	"gorm.io/gorm"
)

// LineDAO wraps basic CRUD operations for line entities.
type LineDAO struct{}

func NewLineDAO() *LineDAO { return &LineDAO{} }

// Create persists a new line.
func (dao *LineDAO) Create(ctx context.Context, db *gorm.DB, entity *model.Line) error {
	if entity == nil {
		return errors.New("line must not be nil")
	}
	return db.WithContext(ctx).Create(entity).Error
}

// Save overwrites every column of an existing line.
func (dao *LineDAO) Save(ctx context.Context, db *gorm.DB, entity *model.Line) error {
	return db.WithContext(ctx).Save(entity).Error
}

// GetByID fetches a single line.
func (dao *LineDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.Line, error) {
	var entity model.Line
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// ListByPlant returns the lines of a plant ordered by number.
func (dao *LineDAO) ListByPlant(ctx context.Context, db *gorm.DB, plantID uint) ([]model.Line, error) {
	var entities []model.Line
	if err := db.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("number ASC").
		Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// NumberTaken reports whether another line of the plant already uses number.
func (dao *LineDAO) NumberTaken(ctx context.Context, db *gorm.DB, plantID uint, number int, excludeID uint) (bool, error) {
	var count int64
	tx := db.WithContext(ctx).Model(&model.Line{}).Where("plant_id = ? AND number = ?", plantID, number)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Numbers returns every line number used in a plant.
func (dao *LineDAO) Numbers(ctx context.Context, db *gorm.DB, plantID uint) ([]int, error) {
	var numbers []int
	if err := db.WithContext(ctx).
		Model(&model.Line{}).
		Where("plant_id = ?", plantID).
		Pluck("number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

// DeleteCascade removes a line with its tank groups and their tanks.
func (dao *LineDAO) DeleteCascade(ctx context.Context, db *gorm.DB, id uint) error {
	tx := db.WithContext(ctx)
	groupIDs := tx.Model(&model.TankGroup{}).Select("id").Where("line_id = ?", id)
	if err := tx.Where("tank_group_id IN (?)", groupIDs).Delete(&model.Tank{}).Error; err != nil {
		return err
	}
	if err := tx.Where("line_id = ?", id).Delete(&model.TankGroup{}).Error; err != nil {
		return err
	}
	result := tx.Where("id = ?", id).Delete(&model.Line{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
