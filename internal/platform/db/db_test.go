package db

import (
	"context"
	"os"
	"testing"

	"kpiteam/internal/platform/config"
)

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt"} {
		if err := os.WriteFile(dir+"/"+name, []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(dir+"/003_dir.sql", 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("migration files: %v", err)
	}
	if len(files) != 2 || files[0] != "001_a.sql" || files[1] != "002_b.sql" {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestMigrateAndSeed(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, config.Config{DatabaseURL: dsn})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := Migrate(ctx, pool, "../../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := Migrate(ctx, pool, "../../../migrations"); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM entities WHERE kind = 'test'"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	rows := []SeedRow{{Kind: "test", ID: "1", Payload: []byte(`{"id":"1"}`)}}
	n, err := Seed(ctx, pool, rows)
	if err != nil || n != 1 {
		t.Fatalf("seed: %d %v", n, err)
	}
	n, err = Seed(ctx, pool, rows)
	if err != nil || n != 0 {
		t.Fatalf("reseed should insert nothing: %d %v", n, err)
	}
}
