package database_test

import (
	"context"
	"testing"

	"github.com/khabzox/fast-food/internal/database"
	"github.com/khabzox/fast-food/internal/testhelpers"
)

func TestMigrationsCreateAllTables(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tables := []string{
		"schema_migrations",
		"documents",
		"files",
		"request_log",
	}

	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := database.Migrate(ctx, db); err != nil {
			t.Fatalf("migrate (run %d): %v", i+1, err)
		}
	}

	var version int
	err := db.QueryRow("SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil {
		t.Fatalf("query version: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}

func TestMigrationsIndexes(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	indexes := []string{
		"idx_documents_collection",
		"idx_files_bucket",
		"idx_request_log_time",
	}

	for _, idx := range indexes {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		if err != nil {
			t.Errorf("index %q not found: %v", idx, err)
		}
	}
}
