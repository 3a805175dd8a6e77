package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		t.Parallel()

		cfg, err := Parse(map[string]string{})
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.HTTPPort)
		assert.Equal(t, ":8080", cfg.Addr())
		assert.Equal(t, DriverSQLite, cfg.StoreDriver)
		assert.Equal(t, "meetings.db", cfg.SQLitePath)
		assert.Equal(t, 5*time.Second, cfg.SQLiteBusyTimeout)
		assert.Equal(t, "data/badger", cfg.BadgerDir)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.EqualValues(t, 8, cfg.TxMaxRetries)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.Empty(t, cfg.OTelEndpoint)
		assert.Equal(t, "meetingd", cfg.OTelServiceName)
	})

	t.Run("reads prefixed overrides", func(t *testing.T) {
		t.Parallel()

		cfg, err := Parse(map[string]string{
			"MEETINGS_HTTP_PORT":        "9090",
			"MEETINGS_STORE_DRIVER":     "Badger",
			"MEETINGS_BADGER_DIR":       "/var/lib/meetings",
			"MEETINGS_LOG_LEVEL":        "DEBUG",
			"MEETINGS_LOG_FORMAT":       "text",
			"MEETINGS_TX_MAX_RETRIES":   "3",
			"MEETINGS_SHUTDOWN_TIMEOUT": "2s",
			"MEETINGS_OTEL_ENDPOINT":    "localhost:4318",
			"HTTP_PORT":                 "1",
		})
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.HTTPPort)
		assert.Equal(t, DriverBadger, cfg.StoreDriver)
		assert.Equal(t, "/var/lib/meetings", cfg.BadgerDir)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.EqualValues(t, 3, cfg.TxMaxRetries)
		assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, "localhost:4318", cfg.OTelEndpoint)
	})

	t.Run("empty values fall back to defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := Parse(map[string]string{"MEETINGS_SQLITE_PATH": ""})
		require.NoError(t, err)
		assert.Equal(t, "meetings.db", cfg.SQLitePath)
	})

	t.Run("reports malformed values", func(t *testing.T) {
		t.Parallel()

		_, err := Parse(map[string]string{"MEETINGS_HTTP_PORT": "eighty"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "eighty")
	})

	t.Run("reports every out of range value together", func(t *testing.T) {
		t.Parallel()

		_, err := Parse(map[string]string{
			"MEETINGS_HTTP_PORT":    "70000",
			"MEETINGS_STORE_DRIVER": "postgres",
			"MEETINGS_LOG_FORMAT":   "xml",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MEETINGS_HTTP_PORT")
		assert.Contains(t, err.Error(), "MEETINGS_STORE_DRIVER")
		assert.Contains(t, err.Error(), "MEETINGS_LOG_FORMAT")
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MEETINGS_HTTP_PORT=7070\nMEETINGS_LOG_LEVEL=warn\n"), 0o600))
	t.Setenv("MEETINGS_LOG_LEVEL", "error")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTPPort)
	assert.Equal(t, "error", cfg.LogLevel, "process environment wins over the file")

	_, err = LoadFile(filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}
