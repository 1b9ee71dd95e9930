package storage

import (
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("none disables exports", func(t *testing.T) {
		st, err := New(Config{Type: "none"})
		if err != nil || st != nil {
			t.Fatalf("expected nil storage, got %v (%v)", st, err)
		}
	})

	t.Run("local", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Local.BasePath = t.TempDir()
		st, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if st.Type() != "local" {
			t.Fatalf("unexpected type %q", st.Type())
		}
	})

	t.Run("s3 needs a bucket", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Type = "s3"
		if _, err := New(cfg); err == nil {
			t.Fatal("expected error without bucket")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := New(Config{Type: "ftp"}); err == nil {
			t.Fatal("expected error for unknown type")
		}
	})
}
