package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yi-nology/stl_backend/biz/dal/db"
	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/pkg/common"
	"github.com/yi-nology/stl_backend/pkg/constants"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ExportPlantRevision writes a JSON snapshot of revision id with its lines,
// tank groups and tanks to object storage.
func (s *Service) ExportPlantRevision(ctx context.Context, id uint) (*api.ExportResult, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	plant, err := s.GetPlant(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := &api.RevisionSnapshot{
		ExportedAt: time.Now().UTC(),
		ExportedBy: common.Actor(ctx),
		Plant:      *plant,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		customer, err := s.logic.customerDAO.GetByID(gctx, s.logic.db, plant.CustomerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		snapshot.Customer = customer
		return err
	})
	g.Go(func() error {
		lines, err := s.logic.lineDAO.ListByPlant(gctx, s.logic.db, id)
		snapshot.Lines = nonNil(lines)
		return err
	})
	g.Go(func() error {
		groups, err := s.logic.tankGroupDAO.List(gctx, s.logic.db, db.TankGroupFilter{PlantID: id})
		snapshot.TankGroups = nonNil(groups)
		return err
	})
	g.Go(func() error {
		tanks, err := s.logic.tankDAO.List(gctx, s.logic.db, db.TankFilter{PlantID: id})
		snapshot.Tanks = nonNil(tanks)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load revision %d: %w", id, err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, err
	}

	key := exportKey(plant)
	if err := s.storage.PutObject(ctx, key, bytes.NewReader(data), "application/json", int64(len(data))); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	link, err := s.storage.GenerateURL(ctx, key)
	if err != nil {
		_ = s.storage.DeleteObject(ctx, key)
		return nil, fmt.Errorf("generate snapshot url: %w", err)
	}

	s.logger.Info("plant revision exported",
		zap.Uint("revision_id", id),
		zap.Int("revision", plant.Revision),
		zap.String("key", key),
		zap.String("storage", s.storage.Type()))
	return &api.ExportResult{Key: key, URL: link, Size: len(data)}, nil
}

// OpenExport streams a stored snapshot. The caller closes the reader.
func (s *Service) OpenExport(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrExportNotFound
	}
	return s.storage.GetObject(ctx, key)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// exportKey builds revisions/{customer}/{name}/rev-{n}-{uuid}.json. Characters
// outside [A-Za-z0-9._-] in the plant name become "_".
func exportKey(p *model.Plant) string {
	name := strings.Trim(unsafeKeyChars.ReplaceAllString(p.Name, "_"), "._")
	if name == "" {
		name = "plant"
	}
	file := fmt.Sprintf("rev-%d-%s.json", p.Revision, uuid.NewString())
	return path.Join(constants.ExportKeyPrefix, fmt.Sprint(p.CustomerID), name, file)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
