package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/example/meeting-reservations/internal/config"
)

func testConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Parse(map[string]string{
		"MEETINGS_STORE_DRIVER": driver,
		"MEETINGS_SQLITE_PATH":  filepath.Join(dir, "meetings.db"),
		"MEETINGS_BADGER_DIR":   filepath.Join(dir, "badger"),
	})
	require.NoError(t, err)
	return cfg
}

func TestOpenStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, driver := range []string{config.DriverSQLite, config.DriverBadger, config.DriverMemory} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			store, err := OpenStore(ctx, testConfig(t, driver), logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			services := NewServices(store, logger)
			room, err := services.Rooms.CreateRoom(ctx, application.CreateRoomParams{
				Name:     "Orion",
				Location: "3F",
				Capacity: 6,
			})
			require.NoError(t, err)
			assert.NotEmpty(t, room.ID)

			rooms, err := services.Rooms.ListRooms(ctx)
			require.NoError(t, err)
			require.Len(t, rooms, 1)
			assert.Equal(t, "Orion", rooms[0].Name)
		})
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.StoreDriver = "postgres"

	_, err := OpenStore(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "postgres")
}
