package model

import "time"

// Revision status values stored in plant.revision_status.
const (
	RevisionStatusDraft    = "DRAFT"
	RevisionStatusActive   = "ACTIVE"
	RevisionStatusArchived = "ARCHIVED"
)

// Plant is one revision of a plant configuration. Rows sharing (customer_id, name)
// form a lineage.
type Plant struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CustomerID uint   `gorm:"column:customer_id;not null;uniqueIndex:uk_plant_revision,priority:1;index:idx_plant_customer" json:"customer_id"`
	Name       string `gorm:"column:name;type:varchar(255);not null;uniqueIndex:uk_plant_revision,priority:2" json:"name"`
	Town       string `gorm:"column:town;type:varchar(255)" json:"town,omitempty"`
	Country    string `gorm:"column:country;type:varchar(255)" json:"country,omitempty"`

	Revision            int    `gorm:"column:revision;not null;uniqueIndex:uk_plant_revision,priority:3" json:"revision"`
	RevisionName        string `gorm:"column:revision_name;type:varchar(255)" json:"revision_name"`
	BaseRevisionID      *uint  `gorm:"column:base_revision_id" json:"base_revision_id"`
	CreatedFromRevision *int   `gorm:"column:created_from_revision" json:"created_from_revision"`
	IsActiveRevision    bool   `gorm:"column:is_active_revision;not null;index:idx_plant_active" json:"is_active_revision"`
	RevisionStatus      string `gorm:"column:revision_status;type:varchar(20);not null;index:idx_plant_status" json:"revision_status"`
	CreatedBy           string `gorm:"column:created_by;type:varchar(255)" json:"created_by"`
	// ActiveSlot is "<customer_id>:<name>" while the row is ACTIVE and NULL otherwise,
	// so the unique index admits one ACTIVE row per lineage.
	ActiveSlot *string `gorm:"column:active_slot;type:varchar(300);uniqueIndex:uk_plant_active_slot" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides gorm to use plant table.
func (Plant) TableName() string {
	return "plant"
}
