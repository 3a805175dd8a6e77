package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/testfixtures"
	"github.com/stretchr/testify/require"
)

// env is a seeded store with services built over it. Users: alice, bob,
// carol, dave, erin. Rooms: room-a (3 seats), room-b (8 seats), room-tiny
// (1 seat).
type env struct {
	ctx          context.Context
	store        persistence.Store
	factory      *testfixtures.ServiceFactory
	reservations *application.ReservationService
	availability *application.AvailabilityService
}

func newEnv(t *testing.T, open testfixtures.StoreFactory) *env {
	t.Helper()

	store := open(t)
	users := make([]testfixtures.UserFixture, 0, 5)
	for _, id := range []string{"alice", "bob", "carol", "dave", "erin"} {
		users = append(users, testfixtures.NewUserFixture(
			testfixtures.WithUserID(id),
			testfixtures.WithUserEmail(id+"@example.com"),
		))
	}
	testfixtures.Seed(t, store, testfixtures.Dataset{
		Users: users,
		Rooms: []testfixtures.RoomFixture{
			testfixtures.NewRoomFixture(testfixtures.WithRoomID("room-a"), testfixtures.WithRoomCapacity(3)),
			testfixtures.NewRoomFixture(testfixtures.WithRoomID("room-b"), testfixtures.WithRoomCapacity(8), testfixtures.WithRoomFeatures("projector")),
			testfixtures.NewRoomFixture(testfixtures.WithRoomID("room-tiny"), testfixtures.WithRoomCapacity(1)),
		},
	})

	factory := testfixtures.NewServiceFactory(store, testfixtures.WithIDGenerator(testfixtures.NewIDGenerator("mtg")))
	return &env{
		ctx:          context.Background(),
		store:        store,
		factory:      factory,
		reservations: factory.Reservations(),
		availability: factory.Availability(),
	}
}

// eachBackend runs fn against a fresh env for every store implementation.
func eachBackend(t *testing.T, fn func(t *testing.T, e *env)) {
	t.Helper()
	for name, open := range testfixtures.Backends() {
		t.Run(name, func(t *testing.T) {
			fn(t, newEnv(t, open))
		})
	}
}

func (e *env) book(t *testing.T, roomID, organizerID string, start, end time.Time) application.Meeting {
	t.Helper()
	m, err := e.reservations.CreateMeeting(e.ctx, application.CreateMeetingParams{
		Title:       "Sync",
		Start:       start,
		End:         end,
		OrganizerID: organizerID,
		RoomID:      roomID,
	})
	require.NoError(t, err)
	return m
}

func (e *env) create(roomID, organizerID string, start, end time.Time) (application.Meeting, error) {
	return e.reservations.CreateMeeting(e.ctx, application.CreateMeetingParams{
		Title:       "Sync",
		Start:       start,
		End:         end,
		OrganizerID: organizerID,
		RoomID:      roomID,
	})
}

func slot(hour, minute int, d time.Duration) (time.Time, time.Time) {
	return testfixtures.Slot(hour, minute, d)
}

func ptr[T any](v T) *T { return &v }

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.FieldErrors, field, "field errors: %v", vErr.FieldErrors)
}
