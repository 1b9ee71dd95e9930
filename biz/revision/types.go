package revision

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a plant revision.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusArchived:
		return true
	}
	return false
}

// LineageKey identifies every revision of one logical plant.
type LineageKey struct {
	OwnerID uint
	Name    string
}

func (k LineageKey) String() string {
	return fmt.Sprintf("%d:%s", k.OwnerID, k.Name)
}

// Payload is the plant attribute set copied on branch. The plant name is
// part of the lineage key and is not repeated here.
type Payload struct {
	Town    string
	Country string
}

// Revision is one row of a lineage.
type Revision struct {
	ID      uint
	Lineage LineageKey
	Number  int
	Label   string
	// BaseRevisionID may point at a revision that has since been deleted.
	BaseRevisionID       *uint
	SourceRevisionNumber *int
	Status               Status
	// IsActive mirrors Status == StatusActive. Stores derive it, callers never set it alone.
	IsActive  bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	Payload   Payload
}

// Clone returns a deep copy.
func (r *Revision) Clone() *Revision {
	if r == nil {
		return nil
	}
	c := *r
	if r.BaseRevisionID != nil {
		v := *r.BaseRevisionID
		c.BaseRevisionID = &v
	}
	if r.SourceRevisionNumber != nil {
		v := *r.SourceRevisionNumber
		c.SourceRevisionNumber = &v
	}
	return &c
}

// Fields is a partial update applied by Tx.Update. Nil pointers are left untouched.
// Setting Status also sets the active flag.
type Fields struct {
	Status    *Status
	Label     *string
	Town      *string
	Country   *string
	UpdatedAt time.Time
}

// PayloadUpdate carries the editable fields of a DRAFT revision.
type PayloadUpdate struct {
	Label   *string
	Town    *string
	Country *string
}

// Empty reports whether no field is set.
func (u PayloadUpdate) Empty() bool {
	return u.Label == nil && u.Town == nil && u.Country == nil
}

// CreateInput describes the first revision of a new lineage.
type CreateInput struct {
	OwnerID   uint
	Name      string
	Label     string
	CreatedBy string
	Payload   Payload
}

func statusPtr(s Status) *Status { return &s }
