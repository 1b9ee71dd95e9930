package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assertDefaultConfig(t, cfg)
}

func TestLoadWithPartialConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9090"
  require_user: true
database:
  driver: ""
  sqlite: {}
redis:
  enabled: false
  lock_ttl: 10s
revision:
  initial_status: draft
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected server address :9090, got %s", cfg.Server.Address)
	}
	if !cfg.Server.RequireUser {
		t.Fatal("expected require_user to be read")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected database driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Database.SQLite.Path != "data/stl.db" {
		t.Fatalf("expected sqlite path data/stl.db, got %s", cfg.Database.SQLite.Path)
	}
	if cfg.Redis.LockTTL != 10*time.Second {
		t.Fatalf("expected lock ttl 10s, got %s", cfg.Redis.LockTTL)
	}
	if cfg.Redis.LockTimeout != 5*time.Second {
		t.Fatalf("expected default lock timeout 5s, got %s", cfg.Redis.LockTimeout)
	}
	if cfg.Revision.InitialStatus != "DRAFT" {
		t.Fatalf("expected initial status DRAFT, got %s", cfg.Revision.InitialStatus)
	}
	if cfg.Storage.Type != "local" {
		t.Fatalf("expected local storage, got %s", cfg.Storage.Type)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  adress: \":1\"\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRejectsInvalidInitialStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("revision:\n  initial_status: ARCHIVED\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for ARCHIVED initial status")
	}
}

func assertDefaultConfig(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg == nil {
		t.Fatalf("config is nil")
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected default driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Database.SQLite.Path != "data/stl.db" {
		t.Fatalf("expected default sqlite path data/stl.db, got %s", cfg.Database.SQLite.Path)
	}
	if cfg.Revision.InitialStatus != "ACTIVE" {
		t.Fatalf("expected default initial status ACTIVE, got %s", cfg.Revision.InitialStatus)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("expected metrics enabled at /metrics, got %+v", cfg.Metrics)
	}
}
