package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Simplici0/preciario/internal/db"
)

func TestUpAppliesEveryMigration(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(ctx, database, "../../migrations"); err != nil {
			t.Fatalf("run migrations (pass %d): %v", i, err)
		}
	}

	version, err := Version(ctx, database)
	if err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected schema version 2, got %d", version)
	}

	for _, table := range []string{"users", "products", "pricing_defaults", "quotes", "quote_rows"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
