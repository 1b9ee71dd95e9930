package api

import (
	"time"

	"github.com/yi-nology/stl_backend/biz/dal/model"
)

// PlantCreateRequest creates a new plant lineage with its first revision.
type PlantCreateRequest struct {
	CustomerID   uint   `json:"customer_id" validate:"gt=0"`
	Name         string `json:"name" validate:"notblank,max=200"`
	Town         string `json:"town" validate:"max=100"`
	Country      string `json:"country" validate:"max=100"`
	RevisionName string `json:"revision_name" validate:"max=255"`
	CreatedBy    string `json:"created_by" validate:"max=255"`
}

// PlantUpdateRequest edits a DRAFT revision. Name is accepted only when it
// matches the current name.
type PlantUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,notblank,max=200"`
	Town         *string `json:"town" validate:"omitempty,max=100"`
	Country      *string `json:"country" validate:"omitempty,max=100"`
	RevisionName *string `json:"revision_name" validate:"omitempty,notblank,max=255"`
}

// RevisionCreateRequest branches a new DRAFT from an existing revision.
type RevisionCreateRequest struct {
	RevisionName string `json:"revision_name" validate:"notblank,max=255"`
	CreatedBy    string `json:"created_by" validate:"max=255"`
}

// PlantWithCustomer is a plant row carrying its customer's name.
type PlantWithCustomer struct {
	model.Plant
	CustomerName string `json:"customer_name"`
}

// PlantRevisionSummary is one row of a revision list.
type PlantRevisionSummary struct {
	ID                  uint      `json:"id"`
	Revision            int       `json:"revision"`
	RevisionName        string    `json:"revision_name"`
	RevisionStatus      string    `json:"revision_status"`
	IsActiveRevision    bool      `json:"is_active_revision"`
	BaseRevisionID      *uint     `json:"base_revision_id"`
	CreatedFromRevision *int      `json:"created_from_revision"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	LineCount           int       `json:"line_count"`
	TankCount           int       `json:"tank_count"`
}

// ExportResult points at a stored revision snapshot.
type ExportResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// RevisionSnapshot is the document written by an export.
type RevisionSnapshot struct {
	ExportedAt time.Time         `json:"exported_at"`
	ExportedBy string            `json:"exported_by"`
	Customer   *model.Customer   `json:"customer,omitempty"`
	Plant      model.Plant       `json:"plant"`
	Lines      []model.Line      `json:"lines"`
	TankGroups []model.TankGroup `json:"tank_groups"`
	Tanks      []model.Tank      `json:"tanks"`
}
