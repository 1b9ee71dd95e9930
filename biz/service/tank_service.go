package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yi-nology/stl_backend/biz/dal/db"
	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/pkg/validator"
)

// TankQuery filters ListTanks.
type TankQuery struct {
	PlantID     uint
	TankGroupID uint
	Search      string
	Skip        int
	Limit       int
}

// ListTanks returns tanks matching q.
func (s *Service) ListTanks(ctx context.Context, q TankQuery) ([]model.Tank, error) {
	skip, limit := page(q.Skip, q.Limit)
	tanks, err := s.logic.tankDAO.List(ctx, s.logic.db, db.TankFilter{
		PlantID:     q.PlantID,
		TankGroupID: q.TankGroupID,
		Search:      q.Search,
		Skip:        skip,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}
	if tanks == nil {
		tanks = []model.Tank{}
	}
	return tanks, nil
}

// GetTank returns a tank by id.
func (s *Service) GetTank(ctx context.Context, id uint) (*model.Tank, error) {
	tank, err := s.logic.tankDAO.GetByID(ctx, s.logic.db, id)
	if err != nil {
		return nil, notFound(err, ErrTankNotFound)
	}
	return tank, nil
}

// CreateTank creates a tank inside a tank group.
func (s *Service) CreateTank(ctx context.Context, req *api.TankCreateRequest) (*model.Tank, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkGroupOfPlant(ctx, req.PlantID, req.TankGroupID); err != nil {
		return nil, err
	}
	if req.Number != nil {
		if err := s.checkTankNumber(ctx, req.TankGroupID, *req.Number, 0); err != nil {
			return nil, err
		}
	}
	groupID := req.TankGroupID
	tank := &model.Tank{
		Name:        strings.TrimSpace(req.Name),
		Number:      req.Number,
		TankGroupID: &groupID,
		PlantID:     req.PlantID,
		Width:       req.Width,
		Length:      req.Length,
		Depth:       req.Depth,
		Space:       req.Space,
		XPosition:   req.XPosition,
		YPosition:   req.YPosition,
		ZPosition:   req.ZPosition,
	}
	if err := s.logic.tankDAO.Create(ctx, s.logic.db, tank); err != nil {
		return nil, err
	}
	return tank, nil
}

// UpdateTank applies the fields present in req.
func (s *Service) UpdateTank(ctx context.Context, id uint, req *api.TankUpdateRequest) (*model.Tank, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	tank, err := s.GetTank(ctx, id)
	if err != nil {
		return nil, err
	}

	plantID := tank.PlantID
	if req.PlantID != nil {
		plantID = *req.PlantID
	}
	var groupID uint
	if tank.TankGroupID != nil {
		groupID = *tank.TankGroupID
	}
	if req.TankGroupID != nil {
		groupID = *req.TankGroupID
	}
	if req.PlantID != nil || req.TankGroupID != nil {
		if groupID == 0 {
			if _, err := s.GetPlant(ctx, plantID); err != nil {
				return nil, err
			}
		} else if err := s.checkGroupOfPlant(ctx, plantID, groupID); err != nil {
			return nil, err
		}
	}
	if req.Number != nil && groupID != 0 {
		if err := s.checkTankNumber(ctx, groupID, *req.Number, id); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	setInt := func(column string, v *int) {
		if v != nil {
			updates[column] = *v
		}
	}
	setInt("number", req.Number)
	setInt("width", req.Width)
	setInt("length", req.Length)
	setInt("depth", req.Depth)
	setInt("space", req.Space)
	setInt("x_position", req.XPosition)
	setInt("y_position", req.YPosition)
	setInt("z_position", req.ZPosition)
	if req.TankGroupID != nil {
		updates["tank_group_id"] = groupID
	}
	if req.PlantID != nil {
		updates["plant_id"] = plantID
	}
	if len(updates) > 0 {
		if err := s.logic.tankDAO.Update(ctx, s.logic.db, id, updates); err != nil {
			return nil, notFound(err, ErrTankNotFound)
		}
	}
	return s.GetTank(ctx, id)
}

// DeleteTank removes a tank.
func (s *Service) DeleteTank(ctx context.Context, id uint) error {
	return notFound(s.logic.tankDAO.Delete(ctx, s.logic.db, id), ErrTankNotFound)
}

// CanDeleteTank is always true for an existing tank; tanks have no children.
func (s *Service) CanDeleteTank(ctx context.Context, id uint) (*api.CanDeleteResponse, error) {
	if _, err := s.GetTank(ctx, id); err != nil {
		return nil, err
	}
	return &api.CanDeleteResponse{CanDelete: true}, nil
}

func (s *Service) checkGroupOfPlant(ctx context.Context, plantID, groupID uint) error {
	if _, err := s.GetPlant(ctx, plantID); err != nil {
		return err
	}
	group, err := s.logic.tankGroupDAO.GetByID(ctx, s.logic.db, groupID)
	if err != nil {
		return notFound(err, ErrTankGroupNotFound)
	}
	if group.PlantID != plantID {
		return invalidInput("tank group %d does not belong to plant %d", groupID, plantID)
	}
	return nil
}

func (s *Service) checkTankNumber(ctx context.Context, groupID uint, number int, excludeID uint) error {
	taken, err := s.logic.tankDAO.NumberTaken(ctx, s.logic.db, groupID, number, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: tank number %d already exists in this tank group", ErrNumberTaken, number)
	}
	return nil
}
