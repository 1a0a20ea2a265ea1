package database

import (
	"path/filepath"
	"testing"

	"toubkal-lib/internal/config"
)

func TestInitAndMigrateSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "toubkal.db")
	db, err := Init(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, table := range []string{"kv_entries", "backups"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	if !db.Migrator().HasColumn("backups", "booklets") {
		t.Fatalf("backups missing column booklets")
	}
}

func TestInitUnsupportedDriver(t *testing.T) {
	if _, err := Init(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("Init(oracle) error = nil, want error")
	}
}
