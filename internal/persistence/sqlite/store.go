// Package sqlite implements persistence.Store on SQLite through the
// modernc.org/sqlite driver. Read-write units begin with BEGIN IMMEDIATE so
// that a conflict check and the write that depends on it hold the database
// write lock together; busy and locked errors are retried with backoff.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Options configures Open.
type Options struct {
	SQLite     migration.SQLiteConfig
	Migrations migration.MigrationConfig
	Retry      RetryConfig
	Logger     *slog.Logger
}

// Store is a persistence.Store backed by a SQLite database.
type Store struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper *ErrorMapper
	logger *slog.Logger
}

var _ persistence.Store = (*Store)(nil)

// Open connects to the database described by opts and applies the embedded
// schema migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(opts.SQLite)
	if err != nil {
		return nil, err
	}

	manager := migration.NewMigrationManager(
		migration.NewFileScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(pool.DB()),
		opts.Migrations,
		logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return &Store{
		pool:   pool,
		retry:  NewRetryHelper(opts.Retry),
		mapper: NewErrorMapper(),
		logger: logger.With("component", "sqlite_store"),
	}, nil
}

// Atomic runs fn inside one read-write transaction, retrying the whole unit
// when SQLite reports the database busy.
func (s *Store) Atomic(ctx context.Context, fn func(tx persistence.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	attempt := 0
	return s.retry.WithRetry(ctx, func() error {
		attempt++
		if attempt > 1 {
			s.logger.DebugContext(ctx, "retrying transaction", "attempt", attempt)
		}
		return s.pool.WithTransaction(ctx, func(sqlTx *sql.Tx) error {
			return fn(&tx{tx: sqlTx, mapper: s.mapper})
		})
	})
}

// View runs fn inside a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx persistence.Tx) error) error {
	return s.retry.WithRetry(ctx, func() error {
		return s.pool.WithReadOnlyTransaction(ctx, func(sqlTx *sql.Tx) error {
			return fn(&tx{tx: sqlTx, mapper: s.mapper, readOnly: true})
		})
	})
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// DB exposes the pool for tests and diagnostics.
func (s *Store) DB() *sql.DB {
	return s.pool.DB()
}
