package revision

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("revision not found")
	ErrDuplicateLineage       = errors.New("plant lineage already exists")
	ErrAlreadyActive          = errors.New("revision is already active")
	ErrInvalidStateTransition = errors.New("invalid revision state transition")
	ErrImmutableRevision      = errors.New("only draft revisions can be modified")
	ErrNoActiveRevision       = errors.New("lineage has no active revision")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrLineageBusy            = errors.New("lineage is locked by another writer")
	ErrOwnerNotFound          = errors.New("lineage owner not found")
	ErrPersistence            = errors.New("revision persistence failure")
)

// ErrNoRecord is returned by Tx lookups when no row matches.
var ErrNoRecord = errors.New("no matching record")

// ErrLockTimeout is returned by a Locker whose wait budget ran out while
// another writer held the lineage. Only this error makes an operation
// fail with ErrLineageBusy.
var ErrLockTimeout = errors.New("lineage lock wait timed out")

var businessErrors = []error{
	ErrNotFound,
	ErrDuplicateLineage,
	ErrAlreadyActive,
	ErrInvalidStateTransition,
	ErrImmutableRevision,
	ErrNoActiveRevision,
	ErrInvalidArgument,
	ErrLineageBusy,
	ErrOwnerNotFound,
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Kind names the error category for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateLineage):
		return "duplicate_lineage"
	case errors.Is(err, ErrAlreadyActive):
		return "already_active"
	case errors.Is(err, ErrInvalidStateTransition):
		return "invalid_state_transition"
	case errors.Is(err, ErrImmutableRevision):
		return "immutable_revision"
	case errors.Is(err, ErrNoActiveRevision):
		return "no_active_revision"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrLineageBusy):
		return "lineage_busy"
	case errors.Is(err, ErrOwnerNotFound):
		return "owner_not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "persistence_failure"
	}
}
