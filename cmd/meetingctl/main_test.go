package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/example/meeting-reservations/internal/bootstrap"
	"github.com/example/meeting-reservations/internal/persistence/memory"
)

func newServices(t *testing.T) bootstrap.Services {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })
	return bootstrap.NewServices(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func exec(t *testing.T, svc bootstrap.Services, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), svc, args, &out)
	return out.String(), err
}

func TestRun_Workflow(t *testing.T) {
	svc := newServices(t)

	out, err := exec(t, svc, "add-room", "-name", "Orion", "-capacity", "6", "-features", "Projector, whiteboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Orion")
	assert.Contains(t, out, "projector,whiteboard")

	rooms, err := svc.Rooms.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	roomID := rooms[0].ID

	out, err = exec(t, svc, "add-user", "-email", "alice@example.com", "-name", "Alice")
	require.NoError(t, err)
	aliceID := strings.TrimSpace(out)
	require.NotEmpty(t, aliceID)

	out, err = exec(t, svc, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com")

	out, err = exec(t, svc, "book",
		"-title", "Planning", "-organizer", aliceID, "-room", roomID,
		"-start", "2024-01-03T10:00:00Z", "-end", "2024-01-03T11:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "Planning")
	assert.Contains(t, out, "Scheduled")

	out, err = exec(t, svc, "available", "-start", "2024-01-03T10:30:00Z", "-end", "2024-01-03T11:30:00Z")
	require.NoError(t, err)
	assert.NotContains(t, out, "Orion")

	out, err = exec(t, svc, "available", "-start", "2024-01-03T11:00:00Z", "-end", "2024-01-03T12:00:00Z", "-min-capacity", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Orion")

	meetings, err := svc.Reservations.ListMeetings(context.Background(), application.ListMeetingsParams{})
	require.NoError(t, err)
	require.Len(t, meetings, 1)

	out, err = exec(t, svc, "cancel", meetings[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, err = exec(t, svc, "cancel", meetings[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "already Cancelled")

	out, err = exec(t, svc, "meetings")
	require.NoError(t, err)
	assert.NotContains(t, out, "Planning")

	out, err = exec(t, svc, "meetings", "-all")
	require.NoError(t, err)
	assert.Contains(t, out, "Planning")
}

func TestRun_Errors(t *testing.T) {
	svc := newServices(t)

	_, err := exec(t, svc)
	assert.ErrorIs(t, err, errUsage)

	_, err = exec(t, svc, "frobnicate")
	assert.ErrorIs(t, err, errUsage)

	_, err = exec(t, svc, "available", "-end", "2024-01-03T11:00:00Z")
	assert.ErrorIs(t, err, errUsage)

	_, err = exec(t, svc, "book", "-start", "tomorrow", "-end", "2024-01-03T11:00:00Z")
	assert.ErrorContains(t, err, "-start")

	_, err = exec(t, svc, "cancel")
	assert.ErrorIs(t, err, errUsage)

	_, err = exec(t, svc, "add-room", "-capacity", "3")
	assert.Error(t, err)

	_, err = exec(t, svc, "meetings", "-from", "2024-01-03T10:00:00Z")
	assert.Error(t, err)
}
