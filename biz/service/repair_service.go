package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/yi-nology/stl_backend/biz/dal/db"
	"github.com/yi-nology/stl_backend/biz/dal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RepairReport summarizes a revision flag scan.
type RepairReport struct {
	Lineages int `json:"lineages"`
	Rows     int `json:"rows"`
	// MultiActive lists lineages holding more than one ACTIVE row. They are
	// reported only and need a manual decision.
	MultiActive []string `json:"multi_active"`
	// Mismatched lists row ids whose active flag or slot disagrees with the status.
	Mismatched []uint `json:"mismatched"`
	Repaired   int    `json:"repaired"`
	Applied    bool   `json:"applied"`
}

// RepairRevisionFlags scans every lineage. With apply set it rewrites
// is_active_revision and active_slot from revision_status in one transaction,
// skipping lineages with several ACTIVE rows.
func (s *Service) RepairRevisionFlags(ctx context.Context, apply bool) (*RepairReport, error) {
	report := &RepairReport{Applied: apply, MultiActive: []string{}, Mismatched: []uint{}}
	err := s.logic.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plants, err := s.logic.plantDAO.ListAll(ctx, tx)
		if err != nil {
			return err
		}
		report.Rows = len(plants)

		type lineage struct {
			customerID uint
			name       string
		}
		active := map[lineage]int{}
		seen := map[lineage]struct{}{}
		for _, p := range plants {
			key := lineage{p.CustomerID, p.Name}
			seen[key] = struct{}{}
			if p.RevisionStatus == model.RevisionStatusActive {
				active[key]++
			}
		}
		report.Lineages = len(seen)
		for key, n := range active {
			if n > 1 {
				report.MultiActive = append(report.MultiActive, fmt.Sprintf("%d:%s", key.customerID, key.name))
			}
		}
		sort.Strings(report.MultiActive)

		// slots are cleared before they are set so the unique index never
		// sees two holders of one lineage
		var clears, sets []*model.Plant
		for i := range plants {
			p := &plants[i]
			wantActive := p.RevisionStatus == model.RevisionStatusActive
			if p.IsActiveRevision == wantActive && sameSlot(p.ActiveSlot, wantSlot(p)) {
				continue
			}
			report.Mismatched = append(report.Mismatched, p.ID)
			if active[lineage{p.CustomerID, p.Name}] > 1 {
				continue
			}
			if wantActive {
				sets = append(sets, p)
			} else {
				clears = append(clears, p)
			}
		}
		if !apply {
			return nil
		}
		for _, p := range append(clears, sets...) {
			if err := s.logic.plantDAO.Update(ctx, tx, p.ID, map[string]any{
				"is_active_revision": p.RevisionStatus == model.RevisionStatusActive,
				"active_slot":        wantSlot(p),
			}); err != nil {
				return fmt.Errorf("repair plant %d: %w", p.ID, err)
			}
			report.Repaired++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("revision flags scanned",
		zap.Int("rows", report.Rows),
		zap.Int("mismatched", len(report.Mismatched)),
		zap.Int("multi_active", len(report.MultiActive)),
		zap.Int("repaired", report.Repaired),
		zap.Bool("applied", apply))
	return report, nil
}

func wantSlot(p *model.Plant) *string {
	if p.RevisionStatus != model.RevisionStatusActive {
		return nil
	}
	return db.ActiveSlot(p.CustomerID, p.Name)
}

func sameSlot(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
