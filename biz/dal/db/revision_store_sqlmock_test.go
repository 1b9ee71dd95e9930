package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yi-nology/stl_backend/biz/revision"
)

func setupMockManager(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *revision.Manager) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	m, err := revision.NewManager(NewRevisionStore(gdb, sql.LevelDefault))
	require.NoError(t, err)
	return sqlDB, mock, m
}

func plantRow(id uint, number int, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "customer_id", "name", "revision", "revision_name", "revision_status", "is_active_revision",
	}).AddRow(id, 7, "Line A", number, "label", status, status == "ACTIVE")
}

func TestActivateRevision_LookupFailureIsPersistenceError(t *testing.T) {
	sqlDB, mock, m := setupMockManager(t)
	defer sqlDB.Close()

	// lineage resolution reads without a transaction
	mock.ExpectQuery(`SELECT .* FROM "plant"`).WillReturnRows(plantRow(2, 2, "DRAFT"))

	// activation transaction
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "plant"`).WillReturnRows(plantRow(2, 2, "DRAFT"))
	mock.ExpectQuery(`SELECT .* FROM "plant" .*revision_status.* FOR UPDATE`).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := m.ActivateRevision(context.Background(), 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, revision.ErrPersistence)
	assert.Contains(t, err.Error(), "connection reset by peer")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateRevision_WriteFailureRollsBack(t *testing.T) {
	sqlDB, mock, m := setupMockManager(t)
	defer sqlDB.Close()

	mock.ExpectQuery(`SELECT .* FROM "plant"`).WillReturnRows(plantRow(2, 2, "DRAFT"))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "plant"`).WillReturnRows(plantRow(2, 2, "DRAFT"))
	mock.ExpectQuery(`SELECT .* FROM "plant" .*FOR UPDATE`).WillReturnRows(plantRow(1, 1, "ACTIVE"))
	mock.ExpectExec(`UPDATE "plant" SET`).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "uk_plant_active_slot"`))
	mock.ExpectRollback()

	_, err := m.ActivateRevision(context.Background(), 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, revision.ErrPersistence)
	assert.Equal(t, "persistence_failure", revision.Kind(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateRevision_BusinessErrorWritesNothing(t *testing.T) {
	sqlDB, mock, m := setupMockManager(t)
	defer sqlDB.Close()

	mock.ExpectQuery(`SELECT .* FROM "plant"`).WillReturnRows(plantRow(1, 1, "ARCHIVED"))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "plant"`).WillReturnRows(plantRow(1, 1, "ARCHIVED"))
	mock.ExpectRollback()

	_, err := m.ActivateRevision(context.Background(), 1)

	assert.ErrorIs(t, err, revision.ErrInvalidStateTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRevisions_ReadsWithoutRowLocks(t *testing.T) {
	sqlDB, mock, m := setupMockManager(t)
	defer sqlDB.Close()

	// no BEGIN and no FOR UPDATE on the read path
	mock.ExpectQuery(`SELECT \* FROM "plant" WHERE customer_id = \$1 AND name = \$2 ORDER BY revision DESC$`).
		WillReturnRows(plantRow(2, 2, "DRAFT").AddRow(1, 7, "Line A", 1, "label", "ACTIVE", true))

	revisions, err := m.ListRevisions(context.Background(), revision.LineageKey{OwnerID: 7, Name: "Line A"})

	require.NoError(t, err)
	assert.Len(t, revisions, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
