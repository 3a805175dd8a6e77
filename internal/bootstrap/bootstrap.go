// Package bootstrap opens the configured store and builds the services on
// top of it. Both binaries share it.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/example/meeting-reservations/internal/config"
	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/persistence/badgerstore"
	"github.com/example/meeting-reservations/internal/persistence/memory"
	"github.com/example/meeting-reservations/internal/persistence/sqlite"
	"github.com/example/meeting-reservations/internal/persistence/sqlite/migration"
)

// OpenStore opens the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.StoreDriver {
	case config.DriverSQLite:
		sqliteCfg := migration.DefaultSQLiteConfig(cfg.SQLitePath)
		sqliteCfg.BusyTimeout = cfg.SQLiteBusyTimeout
		retry := sqlite.DefaultRetryConfig()
		retry.MaxRetries = cfg.TxMaxRetries
		store, err := sqlite.Open(ctx, sqlite.Options{
			SQLite:     sqliteCfg,
			Migrations: migration.DefaultMigrationConfig(),
			Retry:      retry,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverBadger:
		store, err := badgerstore.Open(badgerstore.Options{
			Dir:        cfg.BadgerDir,
			MaxRetries: cfg.TxMaxRetries,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Services groups the application services sharing one store.
type Services struct {
	Reservations *application.ReservationService
	Availability *application.AvailabilityService
	Rooms        *application.RoomService
	Users        *application.UserService
}

// NewServices builds the services with random UUID identifiers and the wall
// clock.
func NewServices(store persistence.Store, logger *slog.Logger) Services {
	idGenerator := uuid.NewString
	now := time.Now

	return Services{
		Reservations: application.NewReservationServiceWithLogger(store, idGenerator, now, logger),
		Availability: application.NewAvailabilityServiceWithLogger(store, logger),
		Rooms:        application.NewRoomServiceWithLogger(store, idGenerator, now, logger),
		Users:        application.NewUserServiceWithLogger(store, idGenerator, now, logger),
	}
}
