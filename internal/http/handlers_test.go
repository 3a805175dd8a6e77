package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/meeting-reservations/internal/testfixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	factory := testfixtures.NewServiceFactory(testfixtures.NewMemoryStore(t))
	return NewRouter(RouterConfig{
		Meetings: NewMeetingHandler(factory.Reservations(), factory.Logger),
		Rooms:    NewRoomHandler(factory.Rooms(), factory.Availability(), factory.Logger),
		Users:    NewUserHandler(factory.Users(), factory.Logger),
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// seedHTTP registers two users and a single-seat room through the API.
func seedHTTP(t *testing.T, h http.Handler) (organizer, guest, room string) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/users", map[string]string{"email": "org@example.com", "display_name": "Org"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	organizer = decodeBody[userResponse](t, rec).User.ID

	rec = do(t, h, http.MethodPost, "/users", map[string]string{"email": "guest@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	guest = decodeBody[userResponse](t, rec).User.ID

	rec = do(t, h, http.MethodPost, "/rooms", map[string]any{"name": "Aurora", "capacity": 1, "features": []string{"Projector"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	room = decodeBody[roomResponse](t, rec).Room.ID
	return organizer, guest, room
}

func meetingBody(organizer, room string, start, end time.Time) map[string]any {
	return map[string]any{
		"title":        "Design review",
		"start":        start.Format(time.RFC3339),
		"end":          end.Format(time.RFC3339),
		"organizer_id": organizer,
		"room_id":      room,
	}
}

func TestMeetingEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	organizer, guest, room := seedHTTP(t, h)
	start, end := testfixtures.Slot(10, 0, time.Hour)

	rec := do(t, h, http.MethodPost, "/meetings", meetingBody(organizer, room, start, end))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[meetingResponse](t, rec).Meeting
	assert.Equal(t, "Scheduled", created.Status)
	assert.Equal(t, start.UTC().Format(time.RFC3339), created.Start)

	t.Run("overlap answers 409 CONFLICT with details", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/meetings", meetingBody(organizer, room, start.Add(30*time.Minute), end))
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "CONFLICT", body.ErrorCode)
		require.NotEmpty(t, body.Conflicts)
		assert.Equal(t, created.ID, body.Conflicts[0].MeetingID)
	})

	t.Run("inverted window answers 422", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/meetings", meetingBody(organizer, room, end, start))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "INVALID_INPUT", body.ErrorCode)
		assert.Contains(t, body.Errors, "end")
	})

	t.Run("malformed body answers 400", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/meetings", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown room answers 404", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/meetings", meetingBody(organizer, "missing", end, end.Add(time.Hour)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("capacity overflow answers 409", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/meetings/"+created.ID+"/attendees", map[string]any{"user_ids": []string{guest}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, decodeBody[meetingResponse](t, rec).Meeting.Attendees, 1)

		other := do(t, h, http.MethodPost, "/users", map[string]string{"email": "third@example.com"})
		third := decodeBody[userResponse](t, other).User.ID
		rec = do(t, h, http.MethodPost, "/meetings/"+created.ID+"/attendees", map[string]any{"user_ids": []string{third}})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("get and list", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/meetings/"+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.ID, decodeBody[meetingResponse](t, rec).Meeting.ID)

		rec = do(t, h, http.MethodGet, "/meetings?room_id="+room, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[listMeetingsResponse](t, rec).Meetings, 1)

		rec = do(t, h, http.MethodGet, "/meetings?from=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, h, http.MethodGet, "/meetings?from="+start.Format(time.RFC3339), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("update title", func(t *testing.T) {
		rec := do(t, h, http.MethodPut, "/meetings/"+created.ID, map[string]any{"title": "Renamed"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Renamed", decodeBody[meetingResponse](t, rec).Meeting.Title)
	})

	t.Run("cancel twice is a 200 no-op", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/meetings/"+created.ID+"/cancel", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		first := decodeBody[meetingResponse](t, rec)
		assert.Equal(t, "Cancelled", first.Meeting.Status)
		assert.False(t, first.AlreadyTerminal)

		rec = do(t, h, http.MethodPost, "/meetings/"+created.ID+"/cancel", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		second := decodeBody[meetingResponse](t, rec)
		assert.True(t, second.AlreadyTerminal)
		assert.Equal(t, "Cancelled", second.Meeting.Status)
	})

	t.Run("terminal meetings", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/meetings/"+created.ID+"/complete", nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "ALREADY_TERMINAL", decodeBody[errorResponse](t, rec).ErrorCode)

		rec = do(t, h, http.MethodPost, "/meetings/"+created.ID+"/reschedule", map[string]any{
			"start": start.Format(time.RFC3339), "end": end.Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, "/meetings/"+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, h, http.MethodGet, "/meetings/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("routing", func(t *testing.T) {
		assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPatch, "/meetings", nil).Code)
		assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/meetings/x/cancel", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/meetings/x/archive", nil).Code)
	})
}

func TestRescheduleEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	organizer, _, room := seedHTTP(t, h)
	start, end := testfixtures.Slot(9, 0, time.Hour)

	rec := do(t, h, http.MethodPost, "/meetings", meetingBody(organizer, room, start, end))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody[meetingResponse](t, rec).Meeting.ID

	rec = do(t, h, http.MethodPost, "/meetings/"+id+"/reschedule", map[string]any{
		"start": end.Format(time.RFC3339), "end": end.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decodeBody[meetingResponse](t, rec).Meeting
	assert.Equal(t, "Rescheduled", moved.Status)
	assert.Equal(t, room, moved.RoomID)
}

func TestRoomEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	organizer, _, room := seedHTTP(t, h)

	rec := do(t, h, http.MethodGet, "/rooms/"+room, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[roomResponse](t, rec).Room
	assert.Equal(t, []string{"projector"}, got.Features)
	assert.Equal(t, "Available", got.Status)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/rooms/missing", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodPost, "/rooms", map[string]any{"name": "X", "capacity": 0}).Code)

	rec = do(t, h, http.MethodPost, "/rooms", map[string]any{"name": "Borealis", "capacity": 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	big := decodeBody[roomResponse](t, rec).Room.ID

	start, end := testfixtures.Slot(13, 0, time.Hour)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/meetings", meetingBody(organizer, big, start, end)).Code)

	window := "start=" + start.Format(time.RFC3339) + "&end=" + end.Format(time.RFC3339)
	rec = do(t, h, http.MethodGet, "/rooms/available?"+window, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rooms := decodeBody[listRoomsResponse](t, rec).Rooms
	require.Len(t, rooms, 1)
	assert.Equal(t, room, rooms[0].ID)

	rec = do(t, h, http.MethodGet, "/rooms/available?"+window+"&min_capacity=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[listRoomsResponse](t, rec).Rooms)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/rooms/available?"+window+"&min_capacity=many", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodGet, "/rooms/available", nil).Code)

	rec = do(t, h, http.MethodGet, "/rooms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[listRoomsResponse](t, rec).Rooms, 2)
}

func TestUserEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	organizer, _, _ := seedHTTP(t, h)

	rec := do(t, h, http.MethodPost, "/users", map[string]string{"email": "ORG@example.com"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeBody[errorResponse](t, rec).ErrorCode)

	rec = do(t, h, http.MethodPost, "/users", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Errors, "email")

	rec = do(t, h, http.MethodGet, "/users/"+organizer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "org@example.com", decodeBody[userResponse](t, rec).User.Email)

	rec = do(t, h, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[listUsersResponse](t, rec).Users, 2)
}
