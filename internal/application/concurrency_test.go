package application_test

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/example/meeting-reservations/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestConcurrentOverlappingCreatesAdmitOne(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *env) {
		start, end := slot(10, 0, time.Hour)
		organizers := []string{"alice", "bob"}

		var wins, conflicts atomic.Int32
		var g errgroup.Group
		for i, organizer := range organizers {
			g.Go(func() error {
				_, err := e.create("room-b", organizer, start.Add(time.Duration(i)*15*time.Minute), end)
				switch {
				case err == nil:
					wins.Add(1)
				case assert.ErrorIs(t, err, application.ErrConflict):
					conflicts.Add(1)
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, int32(1), wins.Load())
		assert.Equal(t, int32(1), conflicts.Load())
	})
}

func TestConcurrentAttendeeAdditionsRespectCapacity(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *env) {
		start, end := slot(10, 0, time.Hour)
		m := e.book(t, "room-a", "alice", start, end)

		var g errgroup.Group
		for _, batch := range [][]string{{"bob", "carol"}, {"dave", "erin"}} {
			g.Go(func() error {
				_, err := e.reservations.AddAttendees(e.ctx, application.AddAttendeesParams{MeetingID: m.ID, UserIDs: batch})
				if err != nil && !assert.ErrorIs(t, err, application.ErrConflict) {
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		stored, err := e.reservations.GetMeeting(e.ctx, m.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Attendees, 2)
	})
}

// TestRandomWorkloadKeepsInvariants drives a seeded mix of operations from
// several goroutines and then checks the stored state: no two live meetings
// share a room or an organizer at overlapping times, and no meeting holds
// more attendees than its room seats.
func TestRandomWorkloadKeepsInvariants(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *env) {
		users := []string{"alice", "bob", "carol", "dave", "erin"}
		rooms := []string{"room-a", "room-b", "room-tiny"}
		var created atomic.Int32

		var g errgroup.Group
		for worker := range 4 {
			rng := rand.New(rand.NewPCG(uint64(worker), 42))
			g.Go(func() error {
				var mine []string
				for range 25 {
					start, end := slot(8+rng.IntN(8), 15*rng.IntN(4), time.Duration(1+rng.IntN(4))*30*time.Minute)
					var err error
					switch op := rng.IntN(5); {
					case op <= 1 || len(mine) == 0:
						var m application.Meeting
						m, err = e.create(rooms[rng.IntN(len(rooms))], users[rng.IntN(len(users))], start, end)
						if err == nil {
							mine = append(mine, m.ID)
							created.Add(1)
						}
					case op == 2:
						_, err = e.reservations.RescheduleMeeting(e.ctx, application.RescheduleMeetingParams{
							MeetingID: mine[rng.IntN(len(mine))],
							Start:     start,
							End:       end,
							RoomID:    ptr(rooms[rng.IntN(len(rooms))]),
						})
					case op == 3:
						_, err = e.reservations.AddAttendees(e.ctx, application.AddAttendeesParams{
							MeetingID: mine[rng.IntN(len(mine))],
							UserIDs:   []string{users[rng.IntN(len(users))], users[rng.IntN(len(users))]},
						})
					default:
						_, err = e.reservations.CancelMeeting(e.ctx, mine[rng.IntN(len(mine))])
					}
					if err != nil && application.ErrorKind(err) == "unexpected" {
						return fmt.Errorf("worker %d: %w", worker, err)
					}
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		require.Positive(t, created.Load())

		assertInvariants(t, e)
	})
}

func assertInvariants(t *testing.T, e *env) {
	t.Helper()

	listed, err := e.reservations.ListMeetings(e.ctx, application.ListMeetingsParams{})
	require.NoError(t, err)

	capacity := map[string]int{"room-a": 3, "room-b": 8, "room-tiny": 1}
	for i, a := range listed {
		assert.NotEqual(t, scheduler.StatusCancelled, a.Status)

		full, err := e.reservations.GetMeeting(e.ctx, a.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(full.Attendees), capacity[a.RoomID], "meeting %s over capacity", a.ID)

		for _, b := range listed[i+1:] {
			if !a.Interval().Overlaps(b.Interval()) {
				continue
			}
			assert.NotEqual(t, a.RoomID, b.RoomID, "room double booked by %s and %s", a.ID, b.ID)
			assert.NotEqual(t, a.OrganizerID, b.OrganizerID, "organizer double booked by %s and %s", a.ID, b.ID)
		}
	}
}
