package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/persistence/badgerstore"
	"github.com/example/meeting-reservations/internal/persistence/memory"
	"github.com/example/meeting-reservations/internal/persistence/sqlite"
	"github.com/example/meeting-reservations/internal/persistence/sqlite/migration"
)

// StoreFactory opens an empty store that is closed when the test ends.
type StoreFactory func(tb testing.TB) persistence.Store

// Backends lists every store implementation by name so service tests can run
// once per backend.
func Backends() map[string]StoreFactory {
	return map[string]StoreFactory{
		"memory": NewMemoryStore,
		"sqlite": NewSQLiteStore,
		"badger": NewBadgerStore,
	}
}

// NewMemoryStore returns an in-process store.
func NewMemoryStore(tb testing.TB) persistence.Store {
	tb.Helper()
	store := memory.New()
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// NewSQLiteStore opens a migrated SQLite database in a temporary directory.
func NewSQLiteStore(tb testing.TB) persistence.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "meetings.db")
	store, err := sqlite.Open(context.Background(), sqlite.Options{
		SQLite:     migration.TempFileTestSQLiteConfig(path),
		Migrations: migration.DefaultMigrationConfig(),
		Retry:      sqlite.DefaultRetryConfig(),
		Logger:     quietLogger(),
	})
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// NewBadgerStore opens an in-memory Badger database.
func NewBadgerStore(tb testing.TB) persistence.Store {
	tb.Helper()

	store, err := badgerstore.Open(badgerstore.Options{Logger: quietLogger()})
	if err != nil {
		tb.Fatalf("failed to open badger store: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
