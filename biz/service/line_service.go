package service

import (
	"context"
	"fmt"

	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/pkg/constants"
	"github.com/yi-nology/stl_backend/pkg/validator"

	"gorm.io/gorm"
)

// ListPlantLines returns the lines of a plant revision ordered by number.
func (s *Service) ListPlantLines(ctx context.Context, plantID uint) ([]model.Line, error) {
	if _, err := s.GetPlant(ctx, plantID); err != nil {
		return nil, err
	}
	lines, err := s.logic.lineDAO.ListByPlant(ctx, s.logic.db, plantID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []model.Line{}
	}
	return lines, nil
}

// CreateLine creates a line and, when req.Count > 0, a row of ungrouped tanks.
func (s *Service) CreateLine(ctx context.Context, req *api.LineCreateRequest) (*model.Line, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Count > 0 && req.Width <= 0 {
		return nil, invalidInput("width is required when count is set")
	}
	if _, err := s.GetPlant(ctx, req.PlantID); err != nil {
		return nil, err
	}

	line := &model.Line{
		PlantID: req.PlantID,
		Number:  req.Number,
		MinX:    req.MinX,
		MaxX:    req.MaxX,
		MinY:    req.MinY,
		MaxY:    req.MaxY,
	}
	err := s.logic.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := s.logic.lineDAO.NumberTaken(ctx, tx, req.PlantID, req.Number, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: line %d already exists for this plant", ErrNumberTaken, req.Number)
		}
		if err := s.logic.lineDAO.Create(ctx, tx, line); err != nil {
			return err
		}
		return s.logic.tankDAO.CreateBatch(ctx, tx, generateTanks(req))
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// generateTanks lays req.Count tanks along X starting at req.XPosition.
func generateTanks(req *api.LineCreateRequest) []model.Tank {
	tanks := make([]model.Tank, 0, req.Count)
	x := req.XPosition
	for i := 0; i < req.Count; i++ {
		tanks = append(tanks, model.Tank{
			Name:      constants.GeneratedTankName,
			PlantID:   req.PlantID,
			Width:     positive(req.Width),
			Length:    positive(req.Length),
			Depth:     positive(req.Depth),
			XPosition: x,
			YPosition: req.YPosition,
			ZPosition: req.ZPosition,
			Space:     positive(req.Gap),
		})
		x += req.Width + req.Gap
	}
	return tanks
}

func positive(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

// GetLine returns a line by id.
func (s *Service) GetLine(ctx context.Context, id uint) (*model.Line, error) {
	line, err := s.logic.lineDAO.GetByID(ctx, s.logic.db, id)
	if err != nil {
		return nil, notFound(err, ErrLineNotFound)
	}
	return line, nil
}

// UpdateLine replaces the number and bounds of a line.
func (s *Service) UpdateLine(ctx context.Context, id uint, req *api.LineUpdateRequest) (*model.Line, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	line, err := s.GetLine(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Number != line.Number {
		taken, err := s.logic.lineDAO.NumberTaken(ctx, s.logic.db, line.PlantID, req.Number, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: line %d already exists for this plant", ErrNumberTaken, req.Number)
		}
	}
	line.Number = req.Number
	line.MinX, line.MaxX = req.MinX, req.MaxX
	line.MinY, line.MaxY = req.MinY, req.MaxY
	if err := s.logic.lineDAO.Save(ctx, s.logic.db, line); err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteLine removes a line with its tank groups and their tanks.
func (s *Service) DeleteLine(ctx context.Context, id uint) error {
	return s.logic.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return notFound(s.logic.lineDAO.DeleteCascade(ctx, tx, id), ErrLineNotFound)
	})
}

// NextLineNumber returns the first multiple of 100 not used by the plant.
func (s *Service) NextLineNumber(ctx context.Context, plantID uint) (int, error) {
	if _, err := s.GetPlant(ctx, plantID); err != nil {
		return 0, err
	}
	numbers, err := s.logic.lineDAO.Numbers(ctx, s.logic.db, plantID)
	if err != nil {
		return 0, err
	}
	used := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		used[n] = struct{}{}
	}
	next := validator.LineNumberStep
	for {
		if _, ok := used[next]; !ok {
			return next, nil
		}
		next += validator.LineNumberStep
	}
}

// ListLineTanks returns the tanks of a line's tank groups plus the ungrouped
// tanks of the same plant, ordered by number.
func (s *Service) ListLineTanks(ctx context.Context, lineID uint) ([]model.Tank, error) {
	line, err := s.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	groupIDs, err := s.logic.tankGroupDAO.IDsByLine(ctx, s.logic.db, lineID)
	if err != nil {
		return nil, err
	}
	tanks, err := s.logic.tankDAO.ListForLine(ctx, s.logic.db, line.PlantID, groupIDs)
	if err != nil {
		return nil, err
	}
	if tanks == nil {
		tanks = []model.Tank{}
	}
	return tanks, nil
}
