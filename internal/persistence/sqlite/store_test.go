package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/persistence/sqlite"
	"github.com/example/meeting-reservations/internal/persistence/sqlite/migration"
	"github.com/example/meeting-reservations/internal/persistence/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, cfg migration.SQLiteConfig) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Options{
		SQLite:     cfg,
		Migrations: migration.DefaultMigrationConfig(),
		Retry:      sqlite.DefaultRetryConfig(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return store
}

func TestStoreContract_File(t *testing.T) {
	storetest.Run(t, func(t *testing.T) persistence.Store {
		return open(t, migration.TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "meetings.db")))
	})
}

func TestStoreContract_InMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) persistence.Store {
		return open(t, migration.InMemoryTestSQLiteConfig())
	})
}

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.db")
	store := open(t, migration.TempFileTestSQLiteConfig(path))
	require.NoError(t, store.Close())

	store = open(t, migration.TempFileTestSQLiteConfig(path))
	defer store.Close()

	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count)
}
