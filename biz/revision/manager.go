// Package revision implements the plant revision lifecycle.
//
// A lineage is every revision sharing (owner, plant name). Revisions move
// DRAFT -> ACTIVE -> ARCHIVED and at most one revision per lineage is ACTIVE.
// Every write to a lineage runs under the lineage lock and inside a single
// store transaction that re-reads the rows it validates.
package revision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yi-nology/stl_backend/pkg/constants"

	"go.uber.org/zap"
)

const defaultCreatedBy = "system"

// Manager owns lineage creation, branching, activation, archival, deletion and
// payload edits. It is safe for concurrent use.
type Manager struct {
	store         Store
	locker        Locker
	logger        *zap.Logger
	now           func() time.Time
	initialStatus Status
}

// Option configures a Manager.
type Option func(*Manager)

// WithLocker replaces the in-process lineage lock.
func WithLocker(l Locker) Option {
	return func(m *Manager) { m.locker = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithInitialStatus sets the status of revision 1 of new lineages. ACTIVE or DRAFT.
func WithInitialStatus(s Status) Option {
	return func(m *Manager) { m.initialStatus = s }
}

// NewManager builds a Manager on top of store.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("revision store must not be nil")
	}
	m := &Manager{
		store:         store,
		locker:        NewKeyedMutex(DefaultLockWait),
		logger:        zap.NewNop(),
		now:           func() time.Time { return time.Now().UTC() },
		initialStatus: StatusActive,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.initialStatus != StatusActive && m.initialStatus != StatusDraft {
		return nil, fmt.Errorf("%w: initial status must be ACTIVE or DRAFT, got %q", ErrInvalidArgument, m.initialStatus)
	}
	return m, nil
}

// InitialStatus reports the configured creation policy.
func (m *Manager) InitialStatus() Status {
	return m.initialStatus
}

// CreateLineage creates revision 1 of a new lineage.
func (m *Manager) CreateLineage(ctx context.Context, in CreateInput) (rev *Revision, err error) {
	defer m.observe("create", time.Now(), &err)

	name := strings.TrimSpace(in.Name)
	if in.OwnerID == 0 {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidArgument)
	}
	if err := checkText("name", name); err != nil {
		return nil, err
	}
	if err := checkText("revision label", in.Label); err != nil {
		return nil, err
	}
	key := LineageKey{OwnerID: in.OwnerID, Name: name}

	err = m.withLineage(ctx, key, "create lineage", func(tx Tx) error {
		existing, err := tx.FindByLineage(ctx, key)
		if err != nil {
			return persistenceError("find lineage", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateLineage, key)
		}

		now := m.now()
		rev = &Revision{
			Lineage:   key,
			Number:    1,
			Label:     in.Label,
			Status:    m.initialStatus,
			IsActive:  m.initialStatus == StatusActive,
			CreatedBy: createdByOrDefault(in.CreatedBy),
			CreatedAt: now,
			UpdatedAt: now,
			Payload:   in.Payload,
		}
		id, err := tx.Insert(ctx, rev)
		if err != nil {
			return persistenceError("insert revision", err)
		}
		rev.ID = id
		return requireOwner(ctx, tx, key.OwnerID, now)
	})
	if err != nil {
		return nil, err
	}

	recordTransition("create", "", rev.Status)
	m.logger.Info("plant lineage created",
		zap.String("lineage", key.String()),
		zap.Uint("revision_id", rev.ID),
		zap.String("status", string(rev.Status)))
	return rev, nil
}

// BranchRevision creates a DRAFT copy of sourceID numbered max+1 in its lineage.
// The source may be in any status, ARCHIVED included.
func (m *Manager) BranchRevision(ctx context.Context, sourceID uint, label, createdBy string) (rev *Revision, err error) {
	defer m.observe("branch", time.Now(), &err)

	if err := checkText("revision label", label); err != nil {
		return nil, err
	}
	key, err := m.LineageOf(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	err = m.withLineage(ctx, key, "branch revision", func(tx Tx) error {
		src, err := findByID(ctx, tx, sourceID)
		if err != nil {
			return err
		}
		revisions, err := tx.FindByLineage(ctx, key)
		if err != nil {
			return persistenceError("find lineage", err)
		}

		now := m.now()
		baseID := src.ID
		srcNumber := src.Number
		rev = &Revision{
			Lineage:              key,
			Number:               nextNumber(revisions),
			Label:                label,
			BaseRevisionID:       &baseID,
			SourceRevisionNumber: &srcNumber,
			Status:               StatusDraft,
			CreatedBy:            createdByOrDefault(createdBy),
			CreatedAt:            now,
			UpdatedAt:            now,
			Payload:              src.Payload,
		}
		id, err := tx.Insert(ctx, rev)
		if err != nil {
			return persistenceError("insert revision", err)
		}
		rev.ID = id
		return requireOwner(ctx, tx, key.OwnerID, now)
	})
	if err != nil {
		return nil, err
	}

	recordTransition("branch", "", StatusDraft)
	m.logger.Info("plant revision branched",
		zap.String("lineage", key.String()),
		zap.Uint("source_id", sourceID),
		zap.Uint("revision_id", rev.ID),
		zap.Int("revision", rev.Number))
	return rev, nil
}

// ActivateRevision promotes a DRAFT revision and archives the lineage's
// current ACTIVE revision in the same transaction.
func (m *Manager) ActivateRevision(ctx context.Context, id uint) (rev *Revision, err error) {
	defer m.observe("activate", time.Now(), &err)

	key, err := m.LineageOf(ctx, id)
	if err != nil {
		return nil, err
	}

	var archived *Revision
	err = m.withLineage(ctx, key, "activate revision", func(tx Tx) error {
		target, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		switch target.Status {
		case StatusActive:
			return fmt.Errorf("%w: revision %d", ErrAlreadyActive, id)
		case StatusArchived:
			return fmt.Errorf("%w: revision %d is archived, branch it instead", ErrInvalidStateTransition, id)
		}

		current, err := tx.FindActiveByLineage(ctx, key)
		switch {
		case errors.Is(err, ErrNoRecord):
			current = nil
		case err != nil:
			return persistenceError("find active revision", err)
		}

		now := m.now()
		if current != nil {
			if err := tx.Update(ctx, current.ID, Fields{Status: statusPtr(StatusArchived), UpdatedAt: now}); err != nil {
				return persistenceError("archive current revision", err)
			}
			archived = current
		}
		if err := tx.Update(ctx, target.ID, Fields{Status: statusPtr(StatusActive), UpdatedAt: now}); err != nil {
			return persistenceError("activate revision", err)
		}
		if err := touchOwner(ctx, tx, key.OwnerID, now); err != nil {
			return err
		}
		rev, err = findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if archived != nil {
		recordTransition("activate", StatusActive, StatusArchived)
		m.logger.Info("plant revision archived",
			zap.String("lineage", key.String()),
			zap.Uint("revision_id", archived.ID),
			zap.Int("revision", archived.Number))
	}
	recordTransition("activate", StatusDraft, StatusActive)
	m.logger.Info("plant revision activated",
		zap.String("lineage", key.String()),
		zap.Uint("revision_id", rev.ID),
		zap.Int("revision", rev.Number))
	return rev, nil
}

// ArchiveRevision moves an ACTIVE revision to ARCHIVED, leaving the lineage
// without an active revision.
func (m *Manager) ArchiveRevision(ctx context.Context, id uint) (rev *Revision, err error) {
	defer m.observe("archive", time.Now(), &err)

	key, err := m.LineageOf(ctx, id)
	if err != nil {
		return nil, err
	}

	err = m.withLineage(ctx, key, "archive revision", func(tx Tx) error {
		target, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if target.Status != StatusActive {
			return fmt.Errorf("%w: revision %d is %s, only ACTIVE can be archived", ErrInvalidStateTransition, id, target.Status)
		}
		now := m.now()
		if err := tx.Update(ctx, id, Fields{Status: statusPtr(StatusArchived), UpdatedAt: now}); err != nil {
			return persistenceError("archive revision", err)
		}
		if err := touchOwner(ctx, tx, key.OwnerID, now); err != nil {
			return err
		}
		rev, err = findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	recordTransition("archive", StatusActive, StatusArchived)
	m.logger.Info("plant revision archived",
		zap.String("lineage", key.String()),
		zap.Uint("revision_id", rev.ID),
		zap.Int("revision", rev.Number))
	return rev, nil
}

// DeleteRevision removes a DRAFT revision. Revisions branched from it keep
// their base pointer and source number.
func (m *Manager) DeleteRevision(ctx context.Context, id uint) (err error) {
	defer m.observe("delete", time.Now(), &err)

	key, err := m.LineageOf(ctx, id)
	if err != nil {
		return err
	}

	var number int
	err = m.withLineage(ctx, key, "delete revision", func(tx Tx) error {
		target, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if target.Status != StatusDraft {
			return fmt.Errorf("%w: revision %d is %s", ErrImmutableRevision, id, target.Status)
		}
		number = target.Number
		if err := tx.Delete(ctx, id); err != nil {
			return persistenceError("delete revision", err)
		}
		return touchOwner(ctx, tx, key.OwnerID, m.now())
	})
	if err != nil {
		return err
	}

	m.logger.Info("plant revision deleted",
		zap.String("lineage", key.String()),
		zap.Uint("revision_id", id),
		zap.Int("revision", number))
	return nil
}

// DeleteLineage removes every revision of the lineage that id belongs to,
// whatever their status, and returns how many rows were removed.
func (m *Manager) DeleteLineage(ctx context.Context, id uint) (removed int, err error) {
	defer m.observe("delete_lineage", time.Now(), &err)

	key, err := m.LineageOf(ctx, id)
	if err != nil {
		return 0, err
	}

	err = m.withLineage(ctx, key, "delete lineage", func(tx Tx) error {
		revisions, err := tx.FindByLineage(ctx, key)
		if err != nil {
			return persistenceError("find lineage", err)
		}
		if len(revisions) == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		for _, r := range revisions {
			if err := tx.Delete(ctx, r.ID); err != nil {
				return persistenceError("delete revision", err)
			}
		}
		removed = len(revisions)
		return touchOwner(ctx, tx, key.OwnerID, m.now())
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("plant lineage deleted",
		zap.String("lineage", key.String()),
		zap.Int("revisions", removed))
	return removed, nil
}

// UpdateRevisionPayload applies the set fields of upd to a DRAFT revision.
func (m *Manager) UpdateRevisionPayload(ctx context.Context, id uint, upd PayloadUpdate) (rev *Revision, err error) {
	defer m.observe("update", time.Now(), &err)

	if upd.Label != nil {
		if err := checkText("revision label", *upd.Label); err != nil {
			return nil, err
		}
	}
	key, err := m.LineageOf(ctx, id)
	if err != nil {
		return nil, err
	}

	err = m.withLineage(ctx, key, "update revision", func(tx Tx) error {
		target, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if target.Status != StatusDraft {
			return fmt.Errorf("%w: revision %d is %s", ErrImmutableRevision, id, target.Status)
		}
		if upd.Empty() {
			rev = target
			return nil
		}
		now := m.now()
		fields := Fields{Label: upd.Label, Town: upd.Town, Country: upd.Country, UpdatedAt: now}
		if err := tx.Update(ctx, id, fields); err != nil {
			return persistenceError("update revision", err)
		}
		if err := touchOwner(ctx, tx, key.OwnerID, now); err != nil {
			return err
		}
		rev, err = findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// ListRevisions returns the lineage newest first. An unknown lineage yields an empty slice.
func (m *Manager) ListRevisions(ctx context.Context, key LineageKey) ([]*Revision, error) {
	var out []*Revision
	err := m.view(ctx, "list revisions", func(tx Tx) error {
		revisions, err := tx.FindByLineage(ctx, key)
		if err != nil {
			return persistenceError("find lineage", err)
		}
		out = revisions
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Revision{}
	}
	return out, nil
}

// GetActiveRevision returns the lineage's ACTIVE revision or ErrNoActiveRevision.
func (m *Manager) GetActiveRevision(ctx context.Context, key LineageKey) (*Revision, error) {
	var out *Revision
	err := m.view(ctx, "get active revision", func(tx Tx) error {
		rev, err := tx.FindActiveByLineage(ctx, key)
		if errors.Is(err, ErrNoRecord) {
			return fmt.Errorf("%w: %s", ErrNoActiveRevision, key)
		}
		if err != nil {
			return persistenceError("find active revision", err)
		}
		out = rev
		return nil
	})
	return out, err
}

// GetRevision returns a revision by id.
func (m *Manager) GetRevision(ctx context.Context, id uint) (*Revision, error) {
	var out *Revision
	err := m.view(ctx, "get revision", func(tx Tx) error {
		rev, err := findByID(ctx, tx, id)
		out = rev
		return err
	})
	return out, err
}

// LineageOf resolves the lineage of a revision id.
func (m *Manager) LineageOf(ctx context.Context, id uint) (LineageKey, error) {
	rev, err := m.GetRevision(ctx, id)
	if err != nil {
		return LineageKey{}, err
	}
	return rev.Lineage, nil
}

// withLineage runs fn in one transaction while holding the lineage lock.
func (m *Manager) withLineage(ctx context.Context, key LineageKey, op string, fn func(tx Tx) error) error {
	unlock, err := m.locker.Lock(ctx, key.String())
	switch {
	case err == nil:
	case errors.Is(err, ErrLockTimeout):
		return fmt.Errorf("%w: %s: %w", ErrLineageBusy, key, err)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		m.logger.Error("lineage lock unavailable",
			zap.String("operation", op),
			zap.String("lineage", key.String()),
			zap.Error(err))
		return persistenceError("acquire lineage lock", err)
	}
	defer unlock()

	err = m.runTx(ctx, op, fn)
	if err != nil && errors.Is(err, ErrPersistence) {
		m.logger.Error("revision transaction rolled back",
			zap.String("operation", op),
			zap.String("lineage", key.String()),
			zap.Error(err))
	}
	return err
}

func (m *Manager) runTx(ctx context.Context, op string, fn func(tx Tx) error) error {
	err := m.store.RunInTransaction(ctx, fn)
	if err == nil || isBusinessError(err) || errors.Is(err, ErrPersistence) {
		return err
	}
	return persistenceError(op, err)
}

func (m *Manager) view(ctx context.Context, op string, fn func(tx Tx) error) error {
	err := m.store.View(ctx, fn)
	if err == nil || isBusinessError(err) || errors.Is(err, ErrPersistence) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return persistenceError(op, err)
}

func (m *Manager) observe(op string, start time.Time, err *error) {
	operationDuration.WithLabelValues(op, Kind(*err)).Observe(time.Since(start).Seconds())
}

func findByID(ctx context.Context, tx Tx, id uint) (*Revision, error) {
	rev, err := tx.FindByID(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, persistenceError("find revision", err)
	}
	return rev, nil
}

// touchOwner refreshes the owner's updated_at. An owner removed concurrently
// is skipped; deleting or editing its leftover rows stays possible.
func touchOwner(ctx context.Context, tx Tx, ownerID uint, at time.Time) error {
	err := tx.TouchOwner(ctx, ownerID, at)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return persistenceError("touch owner", err)
	}
	return nil
}

// requireOwner is touchOwner for inserts: a new row must not outlive its owner.
func requireOwner(ctx context.Context, tx Tx, ownerID uint, at time.Time) error {
	err := tx.TouchOwner(ctx, ownerID, at)
	if errors.Is(err, ErrNoRecord) {
		return fmt.Errorf("%w: %d", ErrOwnerNotFound, ownerID)
	}
	if err != nil {
		return persistenceError("touch owner", err)
	}
	return nil
}

func nextNumber(revisions []*Revision) int {
	highest := 0
	for _, r := range revisions {
		if r.Number > highest {
			highest = r.Number
		}
	}
	return highest + 1
}

func checkText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	if utf8.RuneCountInString(v) > constants.MaxTextLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidArgument, field, constants.MaxTextLength)
	}
	return nil
}

func createdByOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return defaultCreatedBy
	}
	return s
}
