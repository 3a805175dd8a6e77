package testfixtures

import (
	"context"
	"testing"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceFactoryUsesDeterministicIDsAndClock(t *testing.T) {
	factory := NewServiceFactory(NewMemoryStore(t))

	user, err := factory.Users().RegisterUser(context.Background(), application.RegisterUserParams{
		Email:       "Someone@Example.com",
		DisplayName: "Someone",
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", user.ID)
	assert.Equal(t, "someone@example.com", user.Email)
	assert.True(t, user.CreatedAt.Equal(factory.Clock.Now()))
}

func TestSeedWritesEveryBackend(t *testing.T) {
	for name, open := range Backends() {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			organizer := NewUserFixture()
			guest := NewUserFixture()
			room := NewRoomFixture(WithRoomFeatures("projector"))
			mtg := NewMeetingFixture(
				WithMeetingOrganizer(organizer.ID),
				WithMeetingRoom(room.ID),
				WithMeetingAttendees(guest.ID),
			)
			Seed(t, store, Dataset{
				Users:    []UserFixture{organizer, guest},
				Rooms:    []RoomFixture{room},
				Meetings: []MeetingFixture{mtg},
			})

			got, err := NewServiceFactory(store).Reservations().GetMeeting(context.Background(), mtg.ID)
			require.NoError(t, err)
			assert.Equal(t, room.ID, got.RoomID)
			require.Len(t, got.Attendees, 1)
			assert.Equal(t, guest.ID, got.Attendees[0].UserID)
		})
	}
}
