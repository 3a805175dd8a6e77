package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meeting-reservations/internal/bootstrap"
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

func TestHandler_EveryDriverServesRequests(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, driver := range []string{config.DriverSQLite, config.DriverBadger, config.DriverMemory} {
		t.Run(driver, func(t *testing.T) {
			store, err := bootstrap.OpenStore(context.Background(), testConfig(t, driver), logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			server := httptest.NewServer(newHandler(store, logger))
			t.Cleanup(server.Close)

			resp, err := http.Post(server.URL+"/users", "application/json",
				strings.NewReader(`{"email":"Alice@Example.com","display_name":"Alice"}`))
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			resp, err = http.Get(server.URL + "/users")
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				Users []struct {
					Email string `json:"email"`
				} `json:"users"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Len(t, body.Users, 1)
			assert.Equal(t, "alice@example.com", body.Users[0].Email)
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.HTTPPort = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, err)
}
