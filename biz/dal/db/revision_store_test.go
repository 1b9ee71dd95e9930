package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/revision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newGormManager(t *testing.T) (*revision.Manager, *RevisionStore) {
	t.Helper()
	gdb := SetupTestDB(t)
	t.Cleanup(func() { CleanupTestDB(t, gdb) })
	store := NewRevisionStore(gdb, sql.LevelDefault)
	m, err := revision.NewManager(store)
	require.NoError(t, err)
	return m, store
}

func TestRevisionStoreScenarios(t *testing.T) {
	ctx := context.Background()
	m, store := newGormManager(t)
	customer := CreateTestCustomer(t, store.db, "Acme")
	key := revision.LineageKey{OwnerID: customer.ID, Name: "Line A"}

	rev1, err := m.CreateLineage(ctx, revision.CreateInput{
		OwnerID: customer.ID, Name: "Line A", Label: "Initial Design", CreatedBy: "alice",
		Payload: revision.Payload{Town: "Tampere", Country: "FI"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rev1.Number)
	assert.Equal(t, revision.StatusActive, rev1.Status)

	rev2, err := m.BranchRevision(ctx, rev1.ID, "Second", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, rev2.Number)
	assert.Equal(t, revision.StatusDraft, rev2.Status)
	assert.Equal(t, rev1.ID, *rev2.BaseRevisionID)
	assert.Equal(t, 1, *rev2.SourceRevisionNumber)
	assert.Equal(t, "Tampere", rev2.Payload.Town)

	activated, err := m.ActivateRevision(ctx, rev2.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	old, err := m.GetRevision(ctx, rev1.ID)
	require.NoError(t, err)
	assert.Equal(t, revision.StatusArchived, old.Status)
	assert.False(t, old.IsActive)

	assert.ErrorIs(t, m.DeleteRevision(ctx, rev1.ID), revision.ErrImmutableRevision)
	_, err = m.ActivateRevision(ctx, rev1.ID)
	assert.ErrorIs(t, err, revision.ErrInvalidStateTransition)
	_, err = m.ActivateRevision(ctx, rev2.ID)
	assert.ErrorIs(t, err, revision.ErrAlreadyActive)

	rev3, err := m.BranchRevision(ctx, rev2.ID, "Third", "")
	require.NoError(t, err)
	require.NoError(t, m.DeleteRevision(ctx, rev3.ID))

	active, err := m.GetActiveRevision(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, rev2.ID, active.ID)

	revisions, err := m.ListRevisions(ctx, key)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, 2, revisions[0].Number)

	var stored model.Plant
	require.NoError(t, store.db.First(&stored, rev1.ID).Error)
	assert.Nil(t, stored.ActiveSlot)
	require.NoError(t, store.db.First(&stored, rev2.ID).Error)
	require.NotNil(t, stored.ActiveSlot)
	assert.Equal(t, fmt.Sprintf("%d:Line A", customer.ID), *stored.ActiveSlot)
}

func TestRevisionStoreTouchesCustomer(t *testing.T) {
	ctx := context.Background()
	gdb := SetupTestDB(t)
	defer CleanupTestDB(t, gdb)

	customer := CreateTestCustomer(t, gdb, "Acme")
	later := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	m, err := revision.NewManager(NewRevisionStore(gdb, sql.LevelDefault),
		revision.WithClock(func() time.Time { return later }))
	require.NoError(t, err)

	_, err = m.CreateLineage(ctx, revision.CreateInput{OwnerID: customer.ID, Name: "P", Label: "Initial Design"})
	require.NoError(t, err)

	got, err := NewCustomerDAO().GetByID(ctx, gdb, customer.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(later), "updated_at = %s", got.UpdatedAt)

	// no plant rows without a customer row
	_, err = m.CreateLineage(ctx, revision.CreateInput{OwnerID: 999, Name: "P", Label: "Initial Design"})
	assert.ErrorIs(t, err, revision.ErrOwnerNotFound)
	var count int64
	gdb.Model(&model.Plant{}).Where("customer_id = ?", 999).Count(&count)
	assert.Zero(t, count)
}

func TestRevisionStoreRejectsBranchOfDeletedCustomer(t *testing.T) {
	ctx := context.Background()
	m, store := newGormManager(t)
	customer := CreateTestCustomer(t, store.db, "Acme")

	rev1, err := m.CreateLineage(ctx, revision.CreateInput{OwnerID: customer.ID, Name: "P", Label: "Initial Design"})
	require.NoError(t, err)
	require.NoError(t, store.db.Delete(&model.Customer{}, customer.ID).Error)

	_, err = m.BranchRevision(ctx, rev1.ID, "draft", "")
	assert.ErrorIs(t, err, revision.ErrOwnerNotFound)

	revisions, err := m.ListRevisions(ctx, rev1.Lineage)
	require.NoError(t, err)
	assert.Len(t, revisions, 1)
}

func TestRevisionStoreDeleteCascadesToChildren(t *testing.T) {
	ctx := context.Background()
	m, store := newGormManager(t)
	customer := CreateTestCustomer(t, store.db, "Acme")

	rev1, err := m.CreateLineage(ctx, revision.CreateInput{OwnerID: customer.ID, Name: "P", Label: "Initial Design"})
	require.NoError(t, err)
	draft, err := m.BranchRevision(ctx, rev1.ID, "draft", "")
	require.NoError(t, err)

	line := CreateTestLine(t, store.db, draft.ID, 100)
	group := CreateTestTankGroup(t, store.db, draft.ID, line.ID, 1)
	CreateTestTank(t, store.db, draft.ID, &group.ID, 1)
	CreateTestTank(t, store.db, draft.ID, nil, 2)
	keep := CreateTestLine(t, store.db, rev1.ID, 100)

	require.NoError(t, m.DeleteRevision(ctx, draft.ID))

	var count int64
	store.db.Model(&model.Line{}).Where("plant_id = ?", draft.ID).Count(&count)
	assert.Zero(t, count)
	store.db.Model(&model.TankGroup{}).Where("plant_id = ?", draft.ID).Count(&count)
	assert.Zero(t, count)
	store.db.Model(&model.Tank{}).Where("plant_id = ?", draft.ID).Count(&count)
	assert.Zero(t, count)

	_, err = NewLineDAO().GetByID(ctx, store.db, keep.ID)
	assert.NoError(t, err)
}

func TestActiveSlotIndexRejectsSecondActive(t *testing.T) {
	gdb := SetupTestDB(t)
	defer CleanupTestDB(t, gdb)
	customer := CreateTestCustomer(t, gdb, "Acme")

	CreateTestPlant(t, gdb, customer.ID, "P", 1, model.RevisionStatusActive)
	second := &model.Plant{
		CustomerID:       customer.ID,
		Name:             "P",
		Revision:         2,
		RevisionStatus:   model.RevisionStatusActive,
		IsActiveRevision: true,
		ActiveSlot:       ActiveSlot(customer.ID, "P"),
	}
	err := NewPlantDAO().Create(context.Background(), gdb, second)
	assert.Error(t, err)

	// archived and draft rows have a NULL slot and never collide
	CreateTestPlant(t, gdb, customer.ID, "P", 3, model.RevisionStatusArchived)
	CreateTestPlant(t, gdb, customer.ID, "P", 4, model.RevisionStatusArchived)
	CreateTestPlant(t, gdb, customer.ID, "P", 5, model.RevisionStatusDraft)
}

func TestRevisionNumberUniqueIndex(t *testing.T) {
	gdb := SetupTestDB(t)
	defer CleanupTestDB(t, gdb)
	CreateTestPlant(t, gdb, 1, "P", 1, model.RevisionStatusDraft)
	dup := &model.Plant{CustomerID: 1, Name: "P", Revision: 1, RevisionStatus: model.RevisionStatusDraft}
	assert.Error(t, NewPlantDAO().Create(context.Background(), gdb, dup))
}

func TestRevisionStoreConcurrentActivations(t *testing.T) {
	ctx := context.Background()
	m, store := newGormManager(t)
	customer := CreateTestCustomer(t, store.db, "Acme")

	root, err := m.CreateLineage(ctx, revision.CreateInput{OwnerID: customer.ID, Name: "race", Label: "init"})
	require.NoError(t, err)
	var drafts []uint
	for i := 0; i < 5; i++ {
		rev, err := m.BranchRevision(ctx, root.ID, fmt.Sprintf("d%d", i), "")
		require.NoError(t, err)
		drafts = append(drafts, rev.ID)
	}

	var g errgroup.Group
	for _, id := range drafts {
		id := id
		g.Go(func() error {
			_, err := m.ActivateRevision(ctx, id)
			return err
		})
	}
	require.NoError(t, g.Wait())

	revisions, err := m.ListRevisions(ctx, root.Lineage)
	require.NoError(t, err)
	active := 0
	for _, r := range revisions {
		if r.Status == revision.StatusActive {
			active++
		}
		assert.Equal(t, r.Status == revision.StatusActive, r.IsActive)
	}
	assert.Equal(t, 1, active)
}

func TestRevisionStoreRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	gdb := SetupTestDB(t)
	defer CleanupTestDB(t, gdb)
	store := NewRevisionStore(gdb, sql.LevelDefault)

	err := store.RunInTransaction(ctx, func(tx revision.Tx) error {
		_, err := tx.Insert(ctx, &revision.Revision{
			Lineage: revision.LineageKey{OwnerID: 1, Name: "P"},
			Number:  1,
			Label:   "x",
			Status:  revision.StatusDraft,
		})
		if err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	var count int64
	gdb.Model(&model.Plant{}).Count(&count)
	assert.Zero(t, count)

	err = store.RunInTransaction(ctx, func(tx revision.Tx) error {
		_, err := tx.FindByID(ctx, 42)
		return err
	})
	assert.ErrorIs(t, err, revision.ErrNoRecord)
}
