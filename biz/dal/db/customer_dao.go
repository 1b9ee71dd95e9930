package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yi-nology/stl_backend/biz/dal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerDAO wraps basic CRUD operations for customer entities.
type CustomerDAO struct{}

func NewCustomerDAO() *CustomerDAO { return &CustomerDAO{} }

// Create persists a new customer.
func (dao *CustomerDAO) Create(ctx context.Context, db *gorm.DB, entity *model.Customer) error {
	if entity == nil {
		return errors.New("customer must not be nil")
	}
	if entity.Name == "" {
		return errors.New("customer name is required")
	}
	return db.WithContext(ctx).Create(entity).Error
}

// Update applies column updates to the customer with the given id.
func (dao *CustomerDAO) Update(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) error {
	result := db.WithContext(ctx).
		Model(&model.Customer{}).
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

// GetForUpdate fetches a customer and locks its row until the transaction
// ends (ignored by SQLite). Writers that add rows for a customer and
// DeleteCustomer both take this lock, so they are ordered.
func (dao *CustomerDAO) GetForUpdate(ctx context.Context, db *gorm.DB, id uint) (*model.Customer, error) {
	var entity model.Customer
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Touch sets updated_at without running hooks. A missing customer is ignored.
func (dao *CustomerDAO) Touch(ctx context.Context, db *gorm.DB, id uint, at time.Time) error {
	return db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error
}

// Delete performs a hard delete by id.
func (dao *CustomerDAO) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&model.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID fetches a single customer.
func (dao *CustomerDAO) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.Customer, error) {
	var entity model.Customer
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// List returns customers ordered by name, optionally filtered by a case-insensitive name fragment.
func (dao *CustomerDAO) List(ctx context.Context, db *gorm.DB, skip, limit int, search string) ([]model.Customer, error) {
	tx := db.WithContext(ctx).Model(&model.Customer{})
	if s := strings.TrimSpace(search); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var entities []model.Customer
	if err := tx.Order("name ASC").Order("id ASC").Offset(skip).Limit(limit).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
