package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/revision"

	"gorm.io/gorm"
)

// RevisionStore implements revision.Store on top of the plant table.
type RevisionStore struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
	plants    *PlantDAO
	customers *CustomerDAO
}

// NewRevisionStore creates a store. sql.LevelDefault keeps the driver's isolation.
func NewRevisionStore(db *gorm.DB, isolation sql.IsolationLevel) *RevisionStore {
	return &RevisionStore{
		db:        db,
		isolation: isolation,
		plants:    NewPlantDAO(),
		customers: NewCustomerDAO(),
	}
}

// RunInTransaction implements revision.Store.
func (s *RevisionStore) RunInTransaction(ctx context.Context, fn func(tx revision.Tx) error) error {
	var opts []*sql.TxOptions
	if s.isolation != sql.LevelDefault {
		opts = append(opts, &sql.TxOptions{Isolation: s.isolation})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&revisionTx{db: tx, plants: s.plants, customers: s.customers, lock: true})
	}, opts...)
}

// View implements revision.Store. Reads run outside a transaction and take
// no row locks, so they never queue behind a lineage writer.
func (s *RevisionStore) View(ctx context.Context, fn func(tx revision.Tx) error) error {
	return fn(&revisionTx{db: s.db.WithContext(ctx), plants: s.plants, customers: s.customers})
}

type revisionTx struct {
	db        *gorm.DB
	plants    *PlantDAO
	customers *CustomerDAO
	// lock selects lineage rows FOR UPDATE
	lock bool
}

func (t *revisionTx) Insert(ctx context.Context, rev *revision.Revision) (uint, error) {
	entity := RevisionToPlant(rev)
	if err := t.plants.Create(ctx, t.db, entity); err != nil {
		return 0, err
	}
	return entity.ID, nil
}

func (t *revisionTx) FindByID(ctx context.Context, id uint) (*revision.Revision, error) {
	entity, err := t.plants.GetByID(ctx, t.db, id)
	if err != nil {
		return nil, noRecord(err)
	}
	return PlantToRevision(entity), nil
}

func (t *revisionTx) FindByLineage(ctx context.Context, key revision.LineageKey) ([]*revision.Revision, error) {
	entities, err := t.plants.ListLineage(ctx, t.db, key.OwnerID, key.Name, t.lock)
	if err != nil {
		return nil, err
	}
	out := make([]*revision.Revision, 0, len(entities))
	for i := range entities {
		out = append(out, PlantToRevision(&entities[i]))
	}
	return out, nil
}

func (t *revisionTx) FindActiveByLineage(ctx context.Context, key revision.LineageKey) (*revision.Revision, error) {
	entity, err := t.plants.GetActive(ctx, t.db, key.OwnerID, key.Name, t.lock)
	if err != nil {
		return nil, noRecord(err)
	}
	return PlantToRevision(entity), nil
}

func (t *revisionTx) Update(ctx context.Context, id uint, f revision.Fields) error {
	updates := map[string]any{}
	if f.Status != nil {
		updates["revision_status"] = string(*f.Status)
		updates["is_active_revision"] = *f.Status == revision.StatusActive
		if *f.Status == revision.StatusActive {
			current, err := t.plants.GetByID(ctx, t.db, id)
			if err != nil {
				return noRecord(err)
			}
			updates["active_slot"] = ActiveSlot(current.CustomerID, current.Name)
		} else {
			updates["active_slot"] = nil
		}
	}
	if f.Label != nil {
		updates["revision_name"] = *f.Label
	}
	if f.Town != nil {
		updates["town"] = *f.Town
	}
	if f.Country != nil {
		updates["country"] = *f.Country
	}
	if !f.UpdatedAt.IsZero() {
		updates["updated_at"] = f.UpdatedAt
	}
	if len(updates) == 0 {
		return nil
	}
	return noRecord(t.plants.Update(ctx, t.db, id, updates))
}

func (t *revisionTx) Delete(ctx context.Context, id uint) error {
	return noRecord(t.plants.DeleteCascade(ctx, t.db, id))
}

func (t *revisionTx) TouchOwner(ctx context.Context, ownerID uint, at time.Time) error {
	if _, err := t.customers.GetForUpdate(ctx, t.db, ownerID); err != nil {
		return noRecord(err)
	}
	return t.customers.Touch(ctx, t.db, ownerID, at)
}

func noRecord(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return revision.ErrNoRecord
	}
	return err
}

// RevisionToPlant converts a revision into its plant row.
func RevisionToPlant(rev *revision.Revision) *model.Plant {
	entity := &model.Plant{
		ID:                  rev.ID,
		CustomerID:          rev.Lineage.OwnerID,
		Name:                rev.Lineage.Name,
		Town:                rev.Payload.Town,
		Country:             rev.Payload.Country,
		Revision:            rev.Number,
		RevisionName:        rev.Label,
		BaseRevisionID:      rev.BaseRevisionID,
		CreatedFromRevision: rev.SourceRevisionNumber,
		IsActiveRevision:    rev.Status == revision.StatusActive,
		RevisionStatus:      string(rev.Status),
		CreatedBy:           rev.CreatedBy,
		CreatedAt:           rev.CreatedAt,
		UpdatedAt:           rev.UpdatedAt,
	}
	if rev.Status == revision.StatusActive {
		entity.ActiveSlot = ActiveSlot(rev.Lineage.OwnerID, rev.Lineage.Name)
	}
	return entity
}

// PlantToRevision converts a stored plant row.
func PlantToRevision(p *model.Plant) *revision.Revision {
	return &revision.Revision{
		ID:                   p.ID,
		Lineage:              revision.LineageKey{OwnerID: p.CustomerID, Name: p.Name},
		Number:               p.Revision,
		Label:                p.RevisionName,
		BaseRevisionID:       p.BaseRevisionID,
		SourceRevisionNumber: p.CreatedFromRevision,
		Status:               revision.Status(p.RevisionStatus),
		IsActive:             p.IsActiveRevision,
		CreatedBy:            p.CreatedBy,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		Payload:              revision.Payload{Town: p.Town, Country: p.Country},
	}
}
