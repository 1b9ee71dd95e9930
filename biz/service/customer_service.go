package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListCustomers returns customers ordered by name.
func (s *Service) ListCustomers(ctx context.Context, skip, limit int, search string) ([]model.Customer, error) {
	skip, limit = page(skip, limit)
	customers, err := s.logic.customerDAO.List(ctx, s.logic.db, skip, limit, search)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []model.Customer{}
	}
	return customers, nil
}

// CreateCustomer creates a new customer.
func (s *Service) CreateCustomer(ctx context.Context, req *api.CustomerCreateRequest) (*model.Customer, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	entity := &model.Customer{
		Name:    strings.TrimSpace(req.Name),
		Town:    req.Town,
		Country: req.Country,
	}
	if err := s.logic.customerDAO.Create(ctx, s.logic.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// GetCustomer returns a customer by id.
func (s *Service) GetCustomer(ctx context.Context, id uint) (*model.Customer, error) {
	entity, err := s.logic.customerDAO.GetByID(ctx, s.logic.db, id)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	return entity, nil
}

// UpdateCustomer applies the fields present in req.
func (s *Service) UpdateCustomer(ctx context.Context, id uint, req *api.CustomerUpdateRequest) (*model.Customer, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Town != nil {
		updates["town"] = *req.Town
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if len(updates) > 0 {
		if err := s.logic.customerDAO.Update(ctx, s.logic.db, id, updates); err != nil {
			return nil, notFound(err, ErrCustomerNotFound)
		}
	}
	return s.GetCustomer(ctx, id)
}

// DeleteCustomer removes a customer with every plant revision it owns and
// their lines, tank groups and tanks, in one transaction.
func (s *Service) DeleteCustomer(ctx context.Context, id uint) error {
	var removed int
	err := s.logic.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the customer first: a revision insert for this customer locks the
		// same row, so it either commits before the plant list below or fails
		// with ErrOwnerNotFound after the delete
		if _, err := s.logic.customerDAO.GetForUpdate(ctx, tx, id); err != nil {
			return notFound(err, ErrCustomerNotFound)
		}
		plantIDs, err := s.logic.plantDAO.IDsByCustomer(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, plantID := range plantIDs {
			if err := s.logic.plantDAO.DeleteCascade(ctx, tx, plantID); err != nil {
				return fmt.Errorf("delete plant %d: %w", plantID, err)
			}
		}
		removed = len(plantIDs)
		return notFound(s.logic.customerDAO.Delete(ctx, tx, id), ErrCustomerNotFound)
	})
	if err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.Uint("customer_id", id), zap.Int("plant_rows", removed))
	return nil
}

// ListCustomerPlants returns every revision of every plant of a customer.
func (s *Service) ListCustomerPlants(ctx context.Context, id uint) ([]model.Plant, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	plants, err := s.logic.plantDAO.ListByCustomer(ctx, s.logic.db, id)
	if err != nil {
		return nil, err
	}
	if plants == nil {
		plants = []model.Plant{}
	}
	return plants, nil
}

// CanDeleteCustomer reports whether the customer has no plants.
func (s *Service) CanDeleteCustomer(ctx context.Context, id uint) (*api.CanDeleteResponse, error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	count, err := s.logic.plantDAO.CountByCustomer(ctx, s.logic.db, id)
	if err != nil {
		return nil, err
	}
	resp := &api.CanDeleteResponse{CanDelete: count == 0, PlantCount: &count}
	if count > 0 {
		resp.Reason = fmt.Sprintf("Customer has %d plant revisions", count)
	}
	return resp, nil
}
