package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output honours the level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := New("warn", "json", &buf)
		require.NoError(t, err)

		logger.Info("dropped")
		logger.Warn("kept", "meeting_id", "m1")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "m1", entry["meeting_id"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := New("DEBUG", "text", &buf)
		require.NoError(t, err)

		logger.Debug("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		t.Parallel()

		_, err := New("loud", "json", &bytes.Buffer{})
		assert.Error(t, err)

		_, err = New("info", "xml", &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	assert.Equal(t, ctx, ContextWithLogger(ctx, nil))
}
