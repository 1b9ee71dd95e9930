package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yi-nology/stl_backend/biz/dal/db"
	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/pkg/validator"

	"gorm.io/gorm"
)

// TankGroupQuery filters ListTankGroups.
type TankGroupQuery struct {
	PlantID uint
	LineID  uint
	Search  string
	Skip    int
	Limit   int
}

// ListTankGroups returns tank groups matching q.
func (s *Service) ListTankGroups(ctx context.Context, q TankGroupQuery) ([]model.TankGroup, error) {
	skip, limit := page(q.Skip, q.Limit)
	groups, err := s.logic.tankGroupDAO.List(ctx, s.logic.db, db.TankGroupFilter{
		PlantID: q.PlantID,
		LineID:  q.LineID,
		Search:  q.Search,
		Skip:    skip,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []model.TankGroup{}
	}
	return groups, nil
}

// GetTankGroup returns a tank group with its tanks.
func (s *Service) GetTankGroup(ctx context.Context, id uint) (*api.TankGroupWithTanks, error) {
	group, err := s.logic.tankGroupDAO.GetByID(ctx, s.logic.db, id)
	if err != nil {
		return nil, notFound(err, ErrTankGroupNotFound)
	}
	tanks, err := s.logic.tankDAO.List(ctx, s.logic.db, db.TankFilter{TankGroupID: id})
	if err != nil {
		return nil, err
	}
	if tanks == nil {
		tanks = []model.Tank{}
	}
	return &api.TankGroupWithTanks{TankGroup: *group, Tanks: tanks}, nil
}

// CreateTankGroup creates a tank group on a line of a plant revision.
func (s *Service) CreateTankGroup(ctx context.Context, req *api.TankGroupCreateRequest) (*model.TankGroup, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkLineOfPlant(ctx, req.PlantID, req.LineID); err != nil {
		return nil, err
	}
	if req.Number != nil {
		if err := s.checkTankGroupNumber(ctx, req.PlantID, req.LineID, *req.Number, 0); err != nil {
			return nil, err
		}
	}
	group := &model.TankGroup{
		Name:    strings.TrimSpace(req.Name),
		Number:  req.Number,
		PlantID: req.PlantID,
		LineID:  req.LineID,
	}
	if err := s.logic.tankGroupDAO.Create(ctx, s.logic.db, group); err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateTankGroup applies the fields present in req.
func (s *Service) UpdateTankGroup(ctx context.Context, id uint, req *api.TankGroupUpdateRequest) (*model.TankGroup, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	group, err := s.logic.tankGroupDAO.GetByID(ctx, s.logic.db, id)
	if err != nil {
		return nil, notFound(err, ErrTankGroupNotFound)
	}

	plantID, lineID := group.PlantID, group.LineID
	if req.PlantID != nil {
		plantID = *req.PlantID
	}
	if req.LineID != nil {
		lineID = *req.LineID
	}
	if plantID != group.PlantID || lineID != group.LineID {
		if err := s.checkLineOfPlant(ctx, plantID, lineID); err != nil {
			return nil, err
		}
	}
	if req.Number != nil {
		if err := s.checkTankGroupNumber(ctx, plantID, lineID, *req.Number, id); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Number != nil {
		updates["number"] = *req.Number
	}
	if req.PlantID != nil {
		updates["plant_id"] = plantID
	}
	if req.LineID != nil {
		updates["line_id"] = lineID
	}
	if len(updates) > 0 {
		if err := s.logic.tankGroupDAO.Update(ctx, s.logic.db, id, updates); err != nil {
			return nil, notFound(err, ErrTankGroupNotFound)
		}
	}
	updated, err := s.logic.tankGroupDAO.GetByID(ctx, s.logic.db, id)
	if err != nil {
		return nil, notFound(err, ErrTankGroupNotFound)
	}
	return updated, nil
}

// DeleteTankGroup removes a tank group and its tanks.
func (s *Service) DeleteTankGroup(ctx context.Context, id uint) error {
	return s.logic.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return notFound(s.logic.tankGroupDAO.DeleteCascade(ctx, tx, id), ErrTankGroupNotFound)
	})
}

// CanDeleteTankGroup reports whether the group has no tanks.
func (s *Service) CanDeleteTankGroup(ctx context.Context, id uint) (*api.CanDeleteResponse, error) {
	if _, err := s.logic.tankGroupDAO.GetByID(ctx, s.logic.db, id); err != nil {
		return nil, notFound(err, ErrTankGroupNotFound)
	}
	count, err := s.logic.tankDAO.CountByGroup(ctx, s.logic.db, id)
	if err != nil {
		return nil, err
	}
	resp := &api.CanDeleteResponse{CanDelete: count == 0, TankCount: &count}
	if count > 0 {
		resp.Reason = fmt.Sprintf("Tank group has %d tanks", count)
	}
	return resp, nil
}

// checkLineOfPlant verifies that both exist and the line belongs to the plant.
func (s *Service) checkLineOfPlant(ctx context.Context, plantID, lineID uint) error {
	if _, err := s.GetPlant(ctx, plantID); err != nil {
		return err
	}
	line, err := s.GetLine(ctx, lineID)
	if err != nil {
		return err
	}
	if line.PlantID != plantID {
		return invalidInput("line %d does not belong to plant %d", lineID, plantID)
	}
	return nil
}

func (s *Service) checkTankGroupNumber(ctx context.Context, plantID, lineID uint, number int, excludeID uint) error {
	taken, err := s.logic.tankGroupDAO.NumberTaken(ctx, s.logic.db, plantID, lineID, number, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: tank group number %d already exists for this plant and line", ErrNumberTaken, number)
	}
	return nil
}
