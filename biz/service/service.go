package service

import (
	"errors"
	"fmt"

	"github.com/yi-nology/stl_backend/biz/revision"
	"github.com/yi-nology/stl_backend/pkg/constants"
	"github.com/yi-nology/stl_backend/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrPlantNotFound     = errors.New("plant not found")
	ErrLineNotFound      = errors.New("line not found")
	ErrTankGroupNotFound = errors.New("tank group not found")
	ErrTankNotFound      = errors.New("tank not found")
	ErrExportNotFound    = errors.New("export not found")

	// ErrNumberTaken is returned when a line, tank group or tank number is already used.
	ErrNumberTaken = errors.New("number already in use")
	// ErrInvalidInput marks a rejected request; the wrapped message says why.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageDisabled is returned by exports when no object storage is configured.
	ErrStorageDisabled = errors.New("export storage is not configured")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Service orchestrates plant configuration operations using Logic and the
// revision manager.
type Service struct {
	logic     *Logic
	revisions *revision.Manager
	storage   storage.Storage
	logger    *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithStorage enables revision snapshot exports.
func WithStorage(st storage.Storage) Option {
	return func(s *Service) { s.storage = st }
}

// WithLogger sets the domain logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(db *gorm.DB, revisions *revision.Manager, opts ...Option) *Service {
	s := &Service{
		logic:     NewLogic(db),
		revisions: revisions,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revisions exposes the revision manager.
func (s *Service) Revisions() *revision.Manager {
	return s.revisions
}

// page normalizes skip/limit query values.
func page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = constants.DefaultPageLimit
	}
	if limit > constants.MaxPageLimit {
		limit = constants.MaxPageLimit
	}
	return skip, limit
}

// notFound translates gorm.ErrRecordNotFound into the given sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
