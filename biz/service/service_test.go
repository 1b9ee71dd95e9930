package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/yi-nology/stl_backend/biz/dal/db"
	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/biz/model/api"
	"github.com/yi-nology/stl_backend/biz/revision"
	"github.com/yi-nology/stl_backend/biz/service"
	"github.com/yi-nology/stl_backend/pkg/common"
	"github.com/yi-nology/stl_backend/pkg/storage/local"
	"github.com/yi-nology/stl_backend/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, opts ...service.Option) (*service.Service, *gorm.DB) {
	t.Helper()
	gdb := db.SetupTestDB(t)
	t.Cleanup(func() { db.CleanupTestDB(t, gdb) })
	m, err := revision.NewManager(db.NewRevisionStore(gdb, sql.LevelDefault))
	require.NoError(t, err)
	return service.NewService(gdb, m, opts...), gdb
}

func ptr[T any](v T) *T { return &v }

func createCustomer(t *testing.T, svc *service.Service, name string) *model.Customer {
	t.Helper()
	c, err := svc.CreateCustomer(context.Background(), &api.CustomerCreateRequest{Name: name, Town: "Tampere", Country: "FI"})
	require.NoError(t, err)
	return c
}

func createPlant(t *testing.T, svc *service.Service, customerID uint, name string) *model.Plant {
	t.Helper()
	p, err := svc.CreatePlant(context.Background(), &api.PlantCreateRequest{CustomerID: customerID, Name: name, Town: "Pori"})
	require.NoError(t, err)
	return p
}

func TestCustomerLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, gdb := newTestService(t)

	_, err := svc.CreateCustomer(ctx, &api.CustomerCreateRequest{Name: "  "})
	require.ErrorIs(t, err, validator.ErrInvalidRequest)

	acme := createCustomer(t, svc, "Acme")
	createCustomer(t, svc, "Beta")

	list, err := svc.ListCustomers(ctx, 0, 0, "acm")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, acme.ID, list[0].ID)

	updated, err := svc.UpdateCustomer(ctx, acme.ID, &api.CustomerUpdateRequest{Town: ptr("Turku")})
	require.NoError(t, err)
	assert.Equal(t, "Turku", updated.Town)
	assert.Equal(t, "Acme", updated.Name)

	_, err = svc.UpdateCustomer(ctx, 999, &api.CustomerUpdateRequest{Town: ptr("x")})
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)

	check, err := svc.CanDeleteCustomer(ctx, acme.ID)
	require.NoError(t, err)
	assert.True(t, check.CanDelete)

	plant := createPlant(t, svc, acme.ID, "Line A")
	_, err = svc.BranchPlantRevision(ctx, plant.ID, &api.RevisionCreateRequest{RevisionName: "two"})
	require.NoError(t, err)
	line, err := svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: plant.ID, Number: 100, Count: 2, Width: 500})
	require.NoError(t, err)

	check, err = svc.CanDeleteCustomer(ctx, acme.ID)
	require.NoError(t, err)
	assert.False(t, check.CanDelete)
	assert.Equal(t, int64(2), *check.PlantCount)

	plants, err := svc.ListCustomerPlants(ctx, acme.ID)
	require.NoError(t, err)
	assert.Len(t, plants, 2)

	require.NoError(t, svc.DeleteCustomer(ctx, acme.ID))
	_, err = svc.GetCustomer(ctx, acme.ID)
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
	_, err = svc.GetLine(ctx, line.ID)
	assert.ErrorIs(t, err, service.ErrLineNotFound)

	var tanks int64
	gdb.Model(&model.Tank{}).Count(&tanks)
	assert.Zero(t, tanks)

	assert.ErrorIs(t, svc.DeleteCustomer(ctx, acme.ID), service.ErrCustomerNotFound)
}

func TestPlantRevisionFlow(t *testing.T) {
	ctx := common.ContextWithUserName(context.Background(), "alice")
	svc, _ := newTestService(t)

	_, err := svc.CreatePlant(ctx, &api.PlantCreateRequest{CustomerID: 42, Name: "Ghost"})
	require.ErrorIs(t, err, service.ErrCustomerNotFound)

	customer := createCustomer(t, svc, "Acme")
	rev1, err := svc.CreatePlant(ctx, &api.PlantCreateRequest{CustomerID: customer.ID, Name: "Line A", Town: "Pori"})
	require.NoError(t, err)
	assert.Equal(t, "Initial Design", rev1.RevisionName)
	assert.Equal(t, "alice", rev1.CreatedBy)
	assert.Equal(t, model.RevisionStatusActive, rev1.RevisionStatus)

	_, err = svc.CreatePlant(ctx, &api.PlantCreateRequest{CustomerID: customer.ID, Name: "Line A"})
	require.ErrorIs(t, err, revision.ErrDuplicateLineage)

	rev2, err := svc.BranchPlantRevision(ctx, rev1.ID, &api.RevisionCreateRequest{RevisionName: "Second", CreatedBy: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 2, rev2.Revision)
	assert.Equal(t, "bob", rev2.CreatedBy)
	assert.Equal(t, "Pori", rev2.Town)

	_, err = svc.UpdatePlant(ctx, rev1.ID, &api.PlantUpdateRequest{Town: ptr("Oulu")})
	require.ErrorIs(t, err, revision.ErrImmutableRevision)
	_, err = svc.UpdatePlant(ctx, rev2.ID, &api.PlantUpdateRequest{Name: ptr("Line B")})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	edited, err := svc.UpdatePlant(ctx, rev2.ID, &api.PlantUpdateRequest{Name: ptr("Line A"), Town: ptr("Oulu")})
	require.NoError(t, err)
	assert.Equal(t, "Oulu", edited.Town)

	_, err = svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: rev2.ID, Number: 100, Count: 3, Width: 400})
	require.NoError(t, err)

	activated, err := svc.ActivatePlantRevision(ctx, rev2.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActiveRevision)

	active, err := svc.GetActivePlantRevision(ctx, rev1.ID)
	require.NoError(t, err)
	assert.Equal(t, rev2.ID, active.ID)

	summaries, err := svc.ListPlantRevisions(ctx, rev1.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 2, summaries[0].Revision)
	assert.Equal(t, 1, summaries[0].LineCount)
	assert.Equal(t, 3, summaries[0].TankCount)
	assert.Equal(t, model.RevisionStatusArchived, summaries[1].RevisionStatus)
	assert.Equal(t, 1, *summaries[0].CreatedFromRevision)

	plants, err := svc.ListPlants(ctx, service.PlantQuery{CustomerID: customer.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, rev2.ID, plants[0].ID)
	assert.Equal(t, "Acme", plants[0].CustomerName)

	all, err := svc.ListPlants(ctx, service.PlantQuery{Search: "line"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ArchivePlantRevision(ctx, rev2.ID)
	require.NoError(t, err)
	_, err = svc.GetActivePlantRevision(ctx, rev2.ID)
	require.ErrorIs(t, err, revision.ErrNoActiveRevision)

	assert.ErrorIs(t, svc.DeletePlantRevision(ctx, rev2.ID), revision.ErrImmutableRevision)
	rev3, err := svc.BranchPlantRevision(ctx, rev1.ID, &api.RevisionCreateRequest{RevisionName: "Third"})
	require.NoError(t, err)
	require.NoError(t, svc.DeletePlantRevision(ctx, rev3.ID))

	removed, err := svc.DeletePlant(ctx, rev1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	_, err = svc.GetPlant(ctx, rev2.ID)
	assert.ErrorIs(t, err, service.ErrPlantNotFound)
}

func TestLineRules(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	customer := createCustomer(t, svc, "Acme")
	plant := createPlant(t, svc, customer.ID, "P")

	_, err := svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: plant.ID, Number: 150})
	require.ErrorIs(t, err, validator.ErrInvalidRequest)
	_, err = svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: 999, Number: 100})
	require.ErrorIs(t, err, service.ErrPlantNotFound)
	_, err = svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: plant.ID, Number: 100, Count: 2})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	line100, err := svc.CreateLine(ctx, &api.LineCreateRequest{
		PlantID: plant.ID, Number: 100,
		Count: 3, Width: 500, Length: 2000, Depth: 1500, Gap: 100,
		XPosition: 1000, YPosition: 50, ZPosition: 5,
	})
	require.NoError(t, err)

	_, err = svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: plant.ID, Number: 100})
	require.ErrorIs(t, err, service.ErrNumberTaken)

	tanks, err := svc.ListLineTanks(ctx, line100.ID)
	require.NoError(t, err)
	require.Len(t, tanks, 3)
	xs := []int{tanks[0].XPosition, tanks[1].XPosition, tanks[2].XPosition}
	assert.ElementsMatch(t, []int{1000, 1600, 2200}, xs)
	for _, tank := range tanks {
		assert.Nil(t, tank.TankGroupID)
		assert.Nil(t, tank.Number)
		assert.Equal(t, 50, tank.YPosition)
		assert.Equal(t, 100, *tank.Space)
		assert.Equal(t, "no name", tank.Name)
	}

	next, err := svc.NextLineNumber(ctx, plant.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, next)

	line300, err := svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: plant.ID, Number: 300})
	require.NoError(t, err)
	next, err = svc.NextLineNumber(ctx, plant.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, next)

	_, err = svc.UpdateLine(ctx, line300.ID, &api.LineUpdateRequest{Number: 100})
	require.ErrorIs(t, err, service.ErrNumberTaken)
	moved, err := svc.UpdateLine(ctx, line300.ID, &api.LineUpdateRequest{Number: 200, MinX: ptr(0), MaxX: ptr(9000)})
	require.NoError(t, err)
	assert.Equal(t, 200, moved.Number)
	assert.Equal(t, 9000, *moved.MaxX)

	lines, err := svc.ListPlantLines(ctx, plant.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 100, lines[0].Number)
	assert.Equal(t, 200, lines[1].Number)

	require.NoError(t, svc.DeleteLine(ctx, moved.ID))
	assert.ErrorIs(t, svc.DeleteLine(ctx, moved.ID), service.ErrLineNotFound)
}

func TestTankGroupsAndTanks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	customer := createCustomer(t, svc, "Acme")
	plant := createPlant(t, svc, customer.ID, "P")
	other := createPlant(t, svc, customer.ID, "Q")
	line, err := svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: plant.ID, Number: 100})
	require.NoError(t, err)

	_, err = svc.CreateTankGroup(ctx, &api.TankGroupCreateRequest{Name: "G", PlantID: other.ID, LineID: line.ID})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = svc.CreateTankGroup(ctx, &api.TankGroupCreateRequest{Name: "G", PlantID: plant.ID, LineID: 999})
	require.ErrorIs(t, err, service.ErrLineNotFound)

	group, err := svc.CreateTankGroup(ctx, &api.TankGroupCreateRequest{Name: "Rinse", Number: ptr(101), PlantID: plant.ID, LineID: line.ID})
	require.NoError(t, err)
	_, err = svc.CreateTankGroup(ctx, &api.TankGroupCreateRequest{Name: "Dup", Number: ptr(101), PlantID: plant.ID, LineID: line.ID})
	require.ErrorIs(t, err, service.ErrNumberTaken)
	second, err := svc.CreateTankGroup(ctx, &api.TankGroupCreateRequest{Name: "Dry", Number: ptr(102), PlantID: plant.ID, LineID: line.ID})
	require.NoError(t, err)

	_, err = svc.UpdateTankGroup(ctx, second.ID, &api.TankGroupUpdateRequest{Number: ptr(101)})
	require.ErrorIs(t, err, service.ErrNumberTaken)
	renamed, err := svc.UpdateTankGroup(ctx, second.ID, &api.TankGroupUpdateRequest{Name: ptr("Dryer")})
	require.NoError(t, err)
	assert.Equal(t, "Dryer", renamed.Name)

	check, err := svc.CanDeleteTankGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.True(t, check.CanDelete)

	tank, err := svc.CreateTank(ctx, &api.TankCreateRequest{Name: "T1", Number: ptr(1), TankGroupID: group.ID, PlantID: plant.ID, Width: ptr(500)})
	require.NoError(t, err)
	_, err = svc.CreateTank(ctx, &api.TankCreateRequest{Name: "T1b", Number: ptr(1), TankGroupID: group.ID, PlantID: plant.ID})
	require.ErrorIs(t, err, service.ErrNumberTaken)
	_, err = svc.CreateTank(ctx, &api.TankCreateRequest{Name: "X", TankGroupID: group.ID, PlantID: other.ID})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = svc.CreateTank(ctx, &api.TankCreateRequest{Name: "X", TankGroupID: group.ID, PlantID: plant.ID, Width: ptr(0)})
	require.ErrorIs(t, err, validator.ErrInvalidRequest)

	withTanks, err := svc.GetTankGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, withTanks.Tanks, 1)
	assert.Equal(t, tank.ID, withTanks.Tanks[0].ID)

	check, err = svc.CanDeleteTankGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.False(t, check.CanDelete)
	assert.Equal(t, int64(1), *check.TankCount)

	moved, err := svc.UpdateTank(ctx, tank.ID, &api.TankUpdateRequest{TankGroupID: ptr(second.ID), XPosition: ptr(750)})
	require.NoError(t, err)
	assert.Equal(t, second.ID, *moved.TankGroupID)
	assert.Equal(t, 750, moved.XPosition)
	assert.Equal(t, 500, *moved.Width)

	tanks, err := svc.ListTanks(ctx, service.TankQuery{PlantID: plant.ID, Search: "t1"})
	require.NoError(t, err)
	assert.Len(t, tanks, 1)

	tankCheck, err := svc.CanDeleteTank(ctx, tank.ID)
	require.NoError(t, err)
	assert.True(t, tankCheck.CanDelete)

	groups, err := svc.ListTankGroups(ctx, service.TankGroupQuery{LineID: line.ID})
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	require.NoError(t, svc.DeleteTankGroup(ctx, second.ID))
	_, err = svc.GetTank(ctx, tank.ID)
	assert.ErrorIs(t, err, service.ErrTankNotFound)
	assert.ErrorIs(t, svc.DeleteTank(ctx, tank.ID), service.ErrTankNotFound)
	_, err = svc.GetTankGroup(ctx, second.ID)
	assert.ErrorIs(t, err, service.ErrTankGroupNotFound)
}

func TestExportPlantRevision(t *testing.T) {
	ctx := common.ContextWithUserName(context.Background(), "exporter")

	disabled, _ := newTestService(t)
	_, err := disabled.ExportPlantRevision(ctx, 1)
	require.ErrorIs(t, err, service.ErrStorageDisabled)

	st, err := local.New(t.TempDir())
	require.NoError(t, err)
	svc, _ := newTestService(t, service.WithStorage(st))
	customer := createCustomer(t, svc, "Acme")
	plant := createPlant(t, svc, customer.ID, "Line A/1")
	line, err := svc.CreateLine(ctx, &api.LineCreateRequest{PlantID: plant.ID, Number: 100, Count: 2, Width: 300})
	require.NoError(t, err)
	group, err := svc.CreateTankGroup(ctx, &api.TankGroupCreateRequest{Name: "G", PlantID: plant.ID, LineID: line.ID})
	require.NoError(t, err)
	_, err = svc.CreateTank(ctx, &api.TankCreateRequest{Name: "T", TankGroupID: group.ID, PlantID: plant.ID})
	require.NoError(t, err)

	_, err = svc.ExportPlantRevision(ctx, 999)
	require.ErrorIs(t, err, service.ErrPlantNotFound)

	result, err := svc.ExportPlantRevision(ctx, plant.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Key, "revisions/"), result.Key)
	assert.Contains(t, result.Key, "/Line_A_1/rev-1-")
	assert.Equal(t, "/api/v1/exports/"+result.Key, result.URL)

	rc, err := svc.OpenExport(ctx, result.Key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Len(t, data, result.Size)

	var snapshot api.RevisionSnapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, "exporter", snapshot.ExportedBy)
	assert.Equal(t, plant.ID, snapshot.Plant.ID)
	require.NotNil(t, snapshot.Customer)
	assert.Equal(t, "Acme", snapshot.Customer.Name)
	assert.Len(t, snapshot.Lines, 1)
	assert.Len(t, snapshot.TankGroups, 1)
	assert.Len(t, snapshot.Tanks, 3)

	_, err = svc.OpenExport(ctx, "revisions/none.json")
	assert.ErrorIs(t, err, service.ErrExportNotFound)
}

func TestRepairRevisionFlags(t *testing.T) {
	ctx := context.Background()
	svc, gdb := newTestService(t)
	customer := createCustomer(t, svc, "Acme")

	a := createPlant(t, svc, customer.ID, "A")
	b := createPlant(t, svc, customer.ID, "B")
	draft, err := svc.BranchPlantRevision(ctx, b.ID, &api.RevisionCreateRequest{RevisionName: "draft"})
	require.NoError(t, err)

	// corrupt the derived columns behind the manager's back
	require.NoError(t, gdb.Model(&model.Plant{}).Where("id = ?", a.ID).
		UpdateColumns(map[string]any{"is_active_revision": false, "active_slot": nil}).Error)
	require.NoError(t, gdb.Model(&model.Plant{}).Where("id = ?", draft.ID).
		UpdateColumn("is_active_revision", true).Error)
	for _, n := range []int{1, 2} {
		require.NoError(t, gdb.Create(&model.Plant{
			CustomerID: customer.ID, Name: "C", Revision: n, RevisionName: "x",
			RevisionStatus: model.RevisionStatusActive, IsActiveRevision: true,
		}).Error)
	}

	report, err := svc.RepairRevisionFlags(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Lineages)
	assert.Equal(t, []string{"1:C"}, report.MultiActive)
	assert.Len(t, report.Mismatched, 4)
	assert.Zero(t, report.Repaired)

	got, err := svc.GetPlant(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActiveRevision)

	report, err = svc.RepairRevisionFlags(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Repaired)

	got, err = svc.GetPlant(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActiveRevision)
	require.NotNil(t, got.ActiveSlot)
	got, err = svc.GetPlant(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActiveRevision)

	report, err = svc.RepairRevisionFlags(ctx, false)
	require.NoError(t, err)
	assert.Len(t, report.Mismatched, 2)
}
