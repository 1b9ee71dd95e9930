package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/yi-nology/stl_backend/biz/dal/model"
	"github.com/yi-nology/stl_backend/pkg/config"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "nested", "stl.db")},
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	for _, table := range []string{"customer", "plant", "line", "tank_group", "tank"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %s to exist", table)
		}
	}
	if !db.Migrator().HasIndex(&model.Plant{}, "uk_plant_active_slot") {
		t.Error("expected active slot unique index")
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{"unknown driver", config.DatabaseConfig{Driver: "oracle"}},
		{"sqlite without path", config.DatabaseConfig{Driver: "sqlite"}},
		{"mysql without dsn", config.DatabaseConfig{Driver: "mysql"}},
		{"postgres without dsn", config.DatabaseConfig{Driver: "postgres"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestIsolationLevel(t *testing.T) {
	tests := map[string]sql.IsolationLevel{
		"":                sql.LevelDefault,
		"serializable":    sql.LevelSerializable,
		"SERIALIZABLE":    sql.LevelSerializable,
		"repeatable_read": sql.LevelRepeatableRead,
		"read_committed":  sql.LevelReadCommitted,
	}
	for name, want := range tests {
		got, err := IsolationLevel(name)
		if err != nil {
			t.Fatalf("IsolationLevel(%q) error: %v", name, err)
		}
		if got != want {
			t.Fatalf("IsolationLevel(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := IsolationLevel("chaos"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
