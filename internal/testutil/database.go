// Package testutil provides shared test helpers for packages that need a real
// counter store.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/oib/internal/model"
	"github.com/Veraticus/oib/internal/storage"
)

// TestDB wraps a migrated in-memory SQLite counter store.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// Seed bumps counters to the given totals.
func (db *TestDB) Seed(generated, validated int) *TestDB {
	db.t.Helper()
	ctx := context.Background()
	for i := 0; i < generated; i++ {
		if _, err := db.Storage.Increment(ctx, model.CounterGenerated); err != nil {
			db.t.Fatalf("failed to seed generated counter: %v", err)
		}
	}
	for i := 0; i < validated; i++ {
		if _, err := db.Storage.Increment(ctx, model.CounterValidated); err != nil {
			db.t.Fatalf("failed to seed validated counter: %v", err)
		}
	}
	return db
}

// MustStats returns the current totals or fails the test.
func (db *TestDB) MustStats() model.Stats {
	db.t.Helper()
	stats, err := db.Storage.Stats(context.Background())
	if err != nil {
		db.t.Fatalf("failed to read stats: %v", err)
	}
	return *stats
}
