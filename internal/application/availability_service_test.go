package application_test

import (
	"testing"
	"time"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityService_FindAvailableRooms(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *env) {
		start, end := slot(10, 0, time.Hour)
		busy := e.book(t, "room-b", "alice", start, end)
		cancelled := e.book(t, "room-a", "bob", start, end)
		_, err := e.reservations.CancelMeeting(e.ctx, cancelled.ID)
		require.NoError(t, err)

		t.Run("excludes small and booked rooms", func(t *testing.T) {
			rooms, err := e.availability.FindAvailableRooms(e.ctx, application.FindAvailableRoomsParams{
				Start: start, End: end, MinCapacity: ptr(2),
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"room-a"}, roomIDs(rooms))
		})

		t.Run("without a capacity every free room is returned in id order", func(t *testing.T) {
			rooms, err := e.availability.FindAvailableRooms(e.ctx, application.FindAvailableRoomsParams{Start: start, End: end})
			require.NoError(t, err)
			assert.Equal(t, []string{"room-a", "room-tiny"}, roomIDs(rooms))

			again, err := e.availability.FindAvailableRooms(e.ctx, application.FindAvailableRoomsParams{Start: start, End: end})
			require.NoError(t, err)
			assert.Equal(t, rooms, again)
		})

		t.Run("excluded meeting does not occupy its room", func(t *testing.T) {
			rooms, err := e.availability.FindAvailableRooms(e.ctx, application.FindAvailableRoomsParams{
				Start: start, End: end, MinCapacity: ptr(4), ExcludeMeetingID: busy.ID,
			})
			require.NoError(t, err)
			require.Equal(t, []string{"room-b"}, roomIDs(rooms))
			assert.Equal(t, []string{"projector"}, rooms[0].Features)
		})

		t.Run("adjacent windows are free", func(t *testing.T) {
			rooms, err := e.availability.FindAvailableRooms(e.ctx, application.FindAvailableRoomsParams{
				Start: end, End: end.Add(time.Hour), MinCapacity: ptr(8),
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"room-b"}, roomIDs(rooms))
		})

		t.Run("rejects bad input", func(t *testing.T) {
			_, err := e.availability.FindAvailableRooms(e.ctx, application.FindAvailableRoomsParams{Start: end, End: start})
			requireFieldError(t, err, "end")

			_, err = e.availability.FindAvailableRooms(e.ctx, application.FindAvailableRoomsParams{
				Start: start, End: end, MinCapacity: ptr(0),
			})
			requireFieldError(t, err, "min_capacity")
		})
	})
}

func roomIDs(rooms []application.Room) []string {
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}
