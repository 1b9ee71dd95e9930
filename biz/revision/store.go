package revision

import (
	"context"
	"time"
)

// Store is the persistence collaborator of the Manager.
type Store interface {
	// RunInTransaction runs fn atomically. A non-nil error from fn rolls
	// every write back and is returned unchanged.
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn against committed state without row locks. fn must only
	// call the lookup methods of tx.
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations available inside a transaction.
// Lookups that match nothing return ErrNoRecord.
type Tx interface {
	Insert(ctx context.Context, rev *Revision) (uint, error)
	FindByID(ctx context.Context, id uint) (*Revision, error)
	// FindByLineage returns revisions ordered by number, highest first.
	FindByLineage(ctx context.Context, key LineageKey) ([]*Revision, error)
	FindActiveByLineage(ctx context.Context, key LineageKey) (*Revision, error)
	Update(ctx context.Context, id uint, fields Fields) error
	Delete(ctx context.Context, id uint) error
	// TouchOwner locks the owner row and sets its updated_at. A missing owner
	// yields ErrNoRecord.
	TouchOwner(ctx context.Context, ownerID uint, at time.Time) error
}
