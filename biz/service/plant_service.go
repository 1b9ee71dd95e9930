package service

import (
	"context"
	"strings"

	"github.com/yi-nology/stl_backend/biz/dal/db"
	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/biz/revision"
	"github.com/yi-nology/stl_backend/pkg/common"
	"github.com/yi-nology/stl_backend/pkg/constants"
	"github.com/yi-nology/stl_backend/pkg/validator"
)

// PlantQuery filters ListPlants.
type PlantQuery struct {
	CustomerID uint
	Search     string
	ActiveOnly bool
	Skip       int
	Limit      int
}

// ListPlants returns plant rows with their customer name.
func (s *Service) ListPlants(ctx context.Context, q PlantQuery) ([]api.PlantWithCustomer, error) {
	skip, limit := page(q.Skip, q.Limit)
	rows, err := s.logic.plantDAO.List(ctx, s.logic.db, db.PlantFilter{
		CustomerID: q.CustomerID,
		Search:     q.Search,
		ActiveOnly: q.ActiveOnly,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]api.PlantWithCustomer, 0, len(rows))
	for _, row := range rows {
		out = append(out, api.PlantWithCustomer{Plant: row.Plant, CustomerName: row.CustomerName})
	}
	return out, nil
}

// CreatePlant starts a new plant lineage under an existing customer.
func (s *Service) CreatePlant(ctx context.Context, req *api.PlantCreateRequest) (*model.Plant, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	label := strings.TrimSpace(req.RevisionName)
	if label == "" {
		label = constants.DefaultRevisionLabel
	}
	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = common.Actor(ctx)
	}

	rev, err := s.revisions.CreateLineage(ctx, revision.CreateInput{
		OwnerID:   req.CustomerID,
		Name:      req.Name,
		Label:     label,
		CreatedBy: createdBy,
		Payload:   revision.Payload{Town: req.Town, Country: req.Country},
	})
	if err != nil {
		return nil, err
	}
	return db.RevisionToPlant(rev), nil
}

// GetPlant returns one plant revision row.
func (s *Service) GetPlant(ctx context.Context, id uint) (*model.Plant, error) {
	entity, err := s.logic.plantDAO.GetByID(ctx, s.logic.db, id)
	if err != nil {
		return nil, notFound(err, ErrPlantNotFound)
	}
	return entity, nil
}

// UpdatePlant edits a DRAFT revision. The plant name identifies the lineage
// and cannot change.
func (s *Service) UpdatePlant(ctx context.Context, id uint, req *api.PlantUpdateRequest) (*model.Plant, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Name != nil {
		current, err := s.revisions.GetRevision(ctx, id)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(*req.Name) != current.Lineage.Name {
			return nil, invalidInput("plant name cannot be changed, create a new plant instead")
		}
	}
	rev, err := s.revisions.UpdateRevisionPayload(ctx, id, revision.PayloadUpdate{
		Label:   req.RevisionName,
		Town:    req.Town,
		Country: req.Country,
	})
	if err != nil {
		return nil, err
	}
	return db.RevisionToPlant(rev), nil
}

// DeletePlant removes the whole plant: every revision of the lineage id belongs to.
func (s *Service) DeletePlant(ctx context.Context, id uint) (int, error) {
	return s.revisions.DeleteLineage(ctx, id)
}

// ListPlantRevisions lists the lineage of id newest first with child counts.
func (s *Service) ListPlantRevisions(ctx context.Context, id uint) ([]api.PlantRevisionSummary, error) {
	key, err := s.revisions.LineageOf(ctx, id)
	if err != nil {
		return nil, err
	}
	revisions, err := s.revisions.ListRevisions(ctx, key)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(revisions))
	for _, r := range revisions {
		ids = append(ids, r.ID)
	}
	lines, tanks, err := s.logic.plantDAO.ChildCounts(ctx, s.logic.db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]api.PlantRevisionSummary, 0, len(revisions))
	for _, r := range revisions {
		out = append(out, api.PlantRevisionSummary{
			ID:                  r.ID,
			Revision:            r.Number,
			RevisionName:        r.Label,
			RevisionStatus:      string(r.Status),
			IsActiveRevision:    r.IsActive,
			BaseRevisionID:      r.BaseRevisionID,
			CreatedFromRevision: r.SourceRevisionNumber,
			CreatedBy:           r.CreatedBy,
			CreatedAt:           r.CreatedAt,
			LineCount:           lines[r.ID],
			TankCount:           tanks[r.ID],
		})
	}
	return out, nil
}

// BranchPlantRevision creates a new DRAFT from revision id.
func (s *Service) BranchPlantRevision(ctx context.Context, id uint, req *api.RevisionCreateRequest) (*model.Plant, error) {
	if req == nil {
		return nil, invalidInput("request body is required")
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = common.Actor(ctx)
	}
	rev, err := s.revisions.BranchRevision(ctx, id, strings.TrimSpace(req.RevisionName), createdBy)
	if err != nil {
		return nil, err
	}
	return db.RevisionToPlant(rev), nil
}

// ActivatePlantRevision makes revision id the ACTIVE one of its lineage.
func (s *Service) ActivatePlantRevision(ctx context.Context, id uint) (*model.Plant, error) {
	rev, err := s.revisions.ActivateRevision(ctx, id)
	if err != nil {
		return nil, err
	}
	return db.RevisionToPlant(rev), nil
}

// ArchivePlantRevision retires the ACTIVE revision id.
func (s *Service) ArchivePlantRevision(ctx context.Context, id uint) (*model.Plant, error) {
	rev, err := s.revisions.ArchiveRevision(ctx, id)
	if err != nil {
		return nil, err
	}
	return db.RevisionToPlant(rev), nil
}

// DeletePlantRevision removes a DRAFT revision and its children.
func (s *Service) DeletePlantRevision(ctx context.Context, id uint) error {
	return s.revisions.DeleteRevision(ctx, id)
}

// GetActivePlantRevision returns the ACTIVE revision of the lineage id belongs to.
func (s *Service) GetActivePlantRevision(ctx context.Context, id uint) (*model.Plant, error) {
	key, err := s.revisions.LineageOf(ctx, id)
	if err != nil {
		return nil, err
	}
	rev, err := s.revisions.GetActiveRevision(ctx, key)
	if err != nil {
		return nil, err
	}
	return db.RevisionToPlant(rev), nil
}
