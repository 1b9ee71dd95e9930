package revision

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	errDuplicateNumber = errors.New("unique constraint: revision number already used in lineage")
	errSecondActive    = errors.New("unique constraint: lineage already has an active revision")
)

// MemoryStore is an in-memory Store. Transactions run one at a time against a
// copy of the state that replaces the committed state only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	nextID    uint
	revisions map[uint]*Revision
	owners    map[uint]time.Time
	removed   map[uint]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memoryState{
			nextID:    1,
			revisions: make(map[uint]*Revision),
			owners:    make(map[uint]time.Time),
			removed:   make(map[uint]bool),
		},
	}
}

func (s memoryState) clone() memoryState {
	c := memoryState{
		nextID:    s.nextID,
		revisions: make(map[uint]*Revision, len(s.revisions)),
		owners:    make(map[uint]time.Time, len(s.owners)),
		removed:   make(map[uint]bool, len(s.removed)),
	}
	for id, r := range s.revisions {
		c.revisions[id] = r.Clone()
	}
	for id, t := range s.owners {
		c.owners[id] = t
	}
	for id := range s.removed {
		c.removed[id] = true
	}
	return c
}

// RunInTransaction implements Store.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memoryTx{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// RemoveOwner makes later TouchOwner calls for ownerID fail with ErrNoRecord.
// Owners are present until removed.
func (s *MemoryStore) RemoveOwner(ownerID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.removed[ownerID] = true
	delete(s.state.owners, ownerID)
}

// View implements Store.
func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&memoryTx{state: s.state})
}

// OwnerTouchedAt returns the last updated_at written for ownerID.
func (s *MemoryStore) OwnerTouchedAt(ownerID uint) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.state.owners[ownerID]
	return t, ok
}

// All returns every committed revision ordered by id.
func (s *MemoryStore) All() []*Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Revision, 0, len(s.state.revisions))
	for _, r := range s.state.revisions {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memoryTx struct {
	state memoryState
}

func (t *memoryTx) Insert(_ context.Context, rev *Revision) (uint, error) {
	for _, r := range t.state.revisions {
		if r.Lineage != rev.Lineage {
			continue
		}
		if r.Number == rev.Number {
			return 0, errDuplicateNumber
		}
		if r.Status == StatusActive && rev.Status == StatusActive {
			return 0, errSecondActive
		}
	}
	stored := rev.Clone()
	stored.ID = t.state.nextID
	stored.IsActive = stored.Status == StatusActive
	t.state.revisions[stored.ID] = stored
	t.state.nextID++
	return stored.ID, nil
}

func (t *memoryTx) FindByID(_ context.Context, id uint) (*Revision, error) {
	r, ok := t.state.revisions[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return r.Clone(), nil
}

func (t *memoryTx) FindByLineage(_ context.Context, key LineageKey) ([]*Revision, error) {
	var out []*Revision
	for _, r := range t.state.revisions {
		if r.Lineage == key {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

func (t *memoryTx) FindActiveByLineage(_ context.Context, key LineageKey) (*Revision, error) {
	for _, r := range t.state.revisions {
		if r.Lineage == key && r.Status == StatusActive {
			return r.Clone(), nil
		}
	}
	return nil, ErrNoRecord
}

func (t *memoryTx) Update(_ context.Context, id uint, f Fields) error {
	r, ok := t.state.revisions[id]
	if !ok {
		return ErrNoRecord
	}
	if f.Status != nil && *f.Status == StatusActive && r.Status != StatusActive {
		for _, other := range t.state.revisions {
			if other.ID != id && other.Lineage == r.Lineage && other.Status == StatusActive {
				return errSecondActive
			}
		}
	}
	if f.Status != nil {
		r.Status = *f.Status
		r.IsActive = r.Status == StatusActive
	}
	if f.Label != nil {
		r.Label = *f.Label
	}
	if f.Town != nil {
		r.Payload.Town = *f.Town
	}
	if f.Country != nil {
		r.Payload.Country = *f.Country
	}
	if !f.UpdatedAt.IsZero() {
		r.UpdatedAt = f.UpdatedAt
	}
	return nil
}

func (t *memoryTx) Delete(_ context.Context, id uint) error {
	if _, ok := t.state.revisions[id]; !ok {
		return ErrNoRecord
	}
	delete(t.state.revisions, id)
	return nil
}

func (t *memoryTx) TouchOwner(_ context.Context, ownerID uint, at time.Time) error {
	if t.state.removed[ownerID] {
		return ErrNoRecord
	}
	t.state.owners[ownerID] = at
	return nil
}
