// Package storetest holds the behavioural contract every persistence.Store
// implementation must satisfy. Backends run it from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

// Factory opens a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) persistence.Store

// Run executes the contract suite against stores produced by factory.
func Run(t *testing.T, factory Factory) {
	suite.Run(t, &storeSuite{factory: factory})
}

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return base.Add(time.Duration(hour-9)*time.Hour + time.Duration(minute)*time.Minute)
}

type storeSuite struct {
	suite.Suite
	factory Factory
	store   persistence.Store
	ctx     context.Context
}

func (s *storeSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.factory(s.T())
	s.seed()
}

func (s *storeSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *storeSuite) seed() {
	err := s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		for _, u := range []persistence.User{
			{ID: "u1", Email: "alice@example.com", DisplayName: "Alice", CreatedAt: base, UpdatedAt: base},
			{ID: "u2", Email: "bob@example.com", DisplayName: "Bob", CreatedAt: base, UpdatedAt: base},
			{ID: "u3", Email: "carol@example.com", DisplayName: "Carol", CreatedAt: base, UpdatedAt: base},
		} {
			if _, err := tx.InsertUser(s.ctx, u); err != nil {
				return err
			}
		}
		for _, r := range []persistence.Room{
			{ID: "r1", Name: "Aurora", Capacity: 4, Status: "Available", Features: []string{"whiteboard", "projector"}, CreatedAt: base, UpdatedAt: base},
			{ID: "r2", Name: "Borealis", Capacity: 10, Status: "Available", CreatedAt: base, UpdatedAt: base},
		} {
			if _, err := tx.InsertRoom(s.ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
}

func meeting(id, room, organizer string, start, end time.Time) persistence.Meeting {
	return persistence.Meeting{
		ID: id, Title: "Meeting " + id, Start: start, End: end, Status: "Scheduled",
		OrganizerID: organizer, RoomID: room, CreatedAt: base, UpdatedAt: base,
	}
}

func (s *storeSuite) insert(meetings ...persistence.Meeting) {
	err := s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		for _, m := range meetings {
			if _, err := tx.InsertMeeting(s.ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
}

func (s *storeSuite) find(filter persistence.MeetingFilter) []string {
	var ids []string
	err := s.store.View(s.ctx, func(tx persistence.Tx) error {
		found, err := tx.FindMeetings(s.ctx, filter)
		for _, m := range found {
			ids = append(ids, m.ID)
		}
		return err
	})
	s.Require().NoError(err)
	return ids
}

func (s *storeSuite) TestUsers() {
	err := s.store.View(s.ctx, func(tx persistence.Tx) error {
		u, err := tx.GetUser(s.ctx, "u2")
		s.Require().NoError(err)
		s.Equal("bob@example.com", u.Email)

		all, err := tx.ListUsers(s.ctx)
		s.Require().NoError(err)
		s.Len(all, 3)
		s.Equal("u1", all[0].ID)

		some, err := tx.FindUsers(s.ctx, []string{"u3", "missing", "u1", "u3"})
		s.Require().NoError(err)
		s.Equal([]string{"u1", "u3"}, []string{some[0].ID, some[1].ID})

		_, err = tx.GetUser(s.ctx, "missing")
		s.ErrorIs(err, persistence.ErrNotFound)
		return nil
	})
	s.Require().NoError(err)
}

func (s *storeSuite) TestDuplicateEmailIsCaseInsensitive() {
	err := s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		_, err := tx.InsertUser(s.ctx, persistence.User{ID: "u9", Email: "ALICE@example.com", CreatedAt: base, UpdatedAt: base})
		return err
	})
	s.ErrorIs(err, persistence.ErrDuplicate)
}

func (s *storeSuite) TestRooms() {
	err := s.store.View(s.ctx, func(tx persistence.Tx) error {
		r, err := tx.GetRoom(s.ctx, "r1")
		s.Require().NoError(err)
		s.Equal(4, r.Capacity)
		s.Equal([]string{"projector", "whiteboard"}, r.Features)

		rooms, err := tx.ListRooms(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(rooms, 2)
		s.Equal("r1", rooms[0].ID)
		s.Equal("r2", rooms[1].ID)
		s.Empty(rooms[1].Features)

		_, err = tx.GetRoom(s.ctx, "nope")
		s.ErrorIs(err, persistence.ErrNotFound)
		return nil
	})
	s.Require().NoError(err)

	err = s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		_, err := tx.InsertRoom(s.ctx, persistence.Room{ID: "r1", Name: "dup", Capacity: 2, Status: "Available", CreatedAt: base, UpdatedAt: base})
		return err
	})
	s.ErrorIs(err, persistence.ErrDuplicate)
}

func (s *storeSuite) TestMeetingRoundTrip() {
	m := meeting("m1", "r1", "u1", at(10, 0), at(11, 0))
	s.insert(m)

	err := s.store.View(s.ctx, func(tx persistence.Tx) error {
		got, err := tx.GetMeeting(s.ctx, "m1")
		s.Require().NoError(err)
		s.Equal(m.Title, got.Title)
		s.Equal(m.RoomID, got.RoomID)
		s.Equal(m.OrganizerID, got.OrganizerID)
		s.Equal(m.Status, got.Status)
		s.True(m.Start.Equal(got.Start), "start %v != %v", got.Start, m.Start)
		s.True(m.End.Equal(got.End), "end %v != %v", got.End, m.End)
		return nil
	})
	s.Require().NoError(err)
}

func (s *storeSuite) TestMeetingConstraints() {
	cases := map[string]struct {
		meeting persistence.Meeting
		want    error
	}{
		"unknown room":      {meeting("m1", "r9", "u1", at(10, 0), at(11, 0)), persistence.ErrForeignKeyViolation},
		"unknown organizer": {meeting("m1", "r1", "u9", at(10, 0), at(11, 0)), persistence.ErrForeignKeyViolation},
		"empty interval":    {meeting("m1", "r1", "u1", at(10, 0), at(10, 0)), persistence.ErrConstraintViolation},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			err := s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
				_, err := tx.InsertMeeting(s.ctx, tc.meeting)
				return err
			})
			s.ErrorIs(err, tc.want)
		})
	}

	s.insert(meeting("m1", "r1", "u1", at(10, 0), at(11, 0)))
	err := s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		_, err := tx.InsertMeeting(s.ctx, meeting("m1", "r2", "u2", at(12, 0), at(13, 0)))
		return err
	})
	s.ErrorIs(err, persistence.ErrDuplicate)
}

func (s *storeSuite) TestFindMeetings() {
	cancelled := meeting("m4", "r1", "u2", at(10, 30), at(11, 30))
	cancelled.Status = persistence.StatusCancelled
	s.insert(
		meeting("m1", "r1", "u1", at(9, 0), at(10, 0)),
		meeting("m2", "r1", "u2", at(10, 0), at(11, 0)),
		meeting("m3", "r2", "u1", at(10, 0), at(12, 0)),
		cancelled,
	)

	s.Equal([]string{"m1", "m2", "m3", "m4"}, s.find(persistence.MeetingFilter{}))
	s.Equal([]string{"m1", "m2", "m4"}, s.find(persistence.MeetingFilter{RoomID: "r1"}))
	s.Equal([]string{"m1", "m3"}, s.find(persistence.MeetingFilter{OrganizerID: "u1"}))
	s.Equal([]string{"m2"}, s.find(persistence.MeetingFilter{RoomID: "r1", From: at(10, 0), Until: at(11, 0), SkipCancelled: true}))
	s.Equal([]string{"m2", "m4"}, s.find(persistence.MeetingFilter{RoomID: "r1", From: at(10, 0), Until: at(11, 0)}))
	s.Empty(s.find(persistence.MeetingFilter{RoomID: "r1", From: at(10, 0), Until: at(11, 0), SkipCancelled: true, ExcludeID: "m2"}))
	// [9,10) and [10,11) only touch.
	s.Equal([]string{"m1"}, s.find(persistence.MeetingFilter{RoomID: "r1", From: at(8, 0), Until: at(10, 0)}))
}

func (s *storeSuite) TestUpdateAndDeleteMeeting() {
	s.insert(meeting("m1", "r1", "u1", at(10, 0), at(11, 0)))
	s.Require().NoError(s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		return tx.InsertAttendees(s.ctx, []persistence.Attendee{
			{MeetingID: "m1", UserID: "u2", Role: "Participant", AddedAt: base},
		})
	}))

	err := s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		m, err := tx.GetMeeting(s.ctx, "m1")
		s.Require().NoError(err)
		m.RoomID = "r2"
		m.Start, m.End = at(14, 0), at(15, 0)
		m.Status = "Rescheduled"
		updated, err := tx.UpdateMeeting(s.ctx, m)
		s.Require().NoError(err)
		s.Equal("r2", updated.RoomID)
		return nil
	})
	s.Require().NoError(err)
	s.Equal([]string{"m1"}, s.find(persistence.MeetingFilter{RoomID: "r2"}))
	s.Empty(s.find(persistence.MeetingFilter{RoomID: "r1"}))

	err = s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		_, err := tx.UpdateMeeting(s.ctx, meeting("ghost", "r1", "u1", at(10, 0), at(11, 0)))
		return err
	})
	s.ErrorIs(err, persistence.ErrNotFound)

	var deleted persistence.Meeting
	s.Require().NoError(s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		var err error
		deleted, err = tx.DeleteMeeting(s.ctx, "m1")
		return err
	}))
	s.Equal("m1", deleted.ID)
	s.Equal("Rescheduled", deleted.Status)

	err = s.store.View(s.ctx, func(tx persistence.Tx) error {
		_, err := tx.GetMeeting(s.ctx, "m1")
		s.ErrorIs(err, persistence.ErrNotFound)
		attendees, err := tx.ListAttendees(s.ctx, "m1")
		s.Require().NoError(err)
		s.Empty(attendees)
		return nil
	})
	s.Require().NoError(err)

	err = s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		_, err := tx.DeleteMeeting(s.ctx, "m1")
		return err
	})
	s.ErrorIs(err, persistence.ErrNotFound)
}

func (s *storeSuite) TestAttendees() {
	s.insert(meeting("m1", "r1", "u1", at(10, 0), at(11, 0)))
	s.Require().NoError(s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		return tx.InsertAttendees(s.ctx, []persistence.Attendee{
			{MeetingID: "m1", UserID: "u3", Role: "Participant", AddedAt: base},
			{MeetingID: "m1", UserID: "u2", Role: "Participant", AddedAt: base},
		})
	}))

	err := s.store.View(s.ctx, func(tx persistence.Tx) error {
		list, err := tx.ListAttendees(s.ctx, "m1")
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal("u2", list[0].UserID)
		s.Equal("u3", list[1].UserID)
		s.False(list[0].Attended)
		return nil
	})
	s.Require().NoError(err)

	err = s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		return tx.InsertAttendees(s.ctx, []persistence.Attendee{{MeetingID: "m1", UserID: "u2", Role: "Participant", AddedAt: base}})
	})
	s.ErrorIs(err, persistence.ErrDuplicate)

	err = s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		return tx.InsertAttendees(s.ctx, []persistence.Attendee{{MeetingID: "m1", UserID: "nobody", Role: "Participant", AddedAt: base}})
	})
	s.ErrorIs(err, persistence.ErrForeignKeyViolation)
}

func (s *storeSuite) TestFailedUnitLeavesNoTrace() {
	boom := errors.New("boom")
	err := s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
		if _, err := tx.InsertMeeting(s.ctx, meeting("m1", "r1", "u1", at(10, 0), at(11, 0))); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	s.Empty(s.find(persistence.MeetingFilter{}))
}

func (s *storeSuite) TestViewIsReadOnly() {
	err := s.store.View(s.ctx, func(tx persistence.Tx) error {
		_, err := tx.InsertMeeting(s.ctx, meeting("m1", "r1", "u1", at(10, 0), at(11, 0)))
		return err
	})
	s.ErrorIs(err, persistence.ErrReadOnly)
}

func (s *storeSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	err := s.store.Atomic(ctx, func(tx persistence.Tx) error { return nil })
	s.ErrorIs(err, context.Canceled)
}

var errSlotTaken = errors.New("slot taken")

// TestConcurrentCheckThenInsert races units that each look for an overlapping
// booking and insert only when none is found. Exactly one may win.
func (s *storeSuite) TestConcurrentCheckThenInsert() {
	const workers = 6
	var wins, losses atomic.Int32

	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			err := s.store.Atomic(s.ctx, func(tx persistence.Tx) error {
				existing, err := tx.FindMeetings(s.ctx, persistence.MeetingFilter{
					RoomID: "r1", From: at(10, 0), Until: at(11, 0), SkipCancelled: true,
				})
				if err != nil {
					return err
				}
				if len(existing) > 0 {
					return errSlotTaken
				}
				organizer := []string{"u1", "u2", "u3"}[i%3]
				_, err = tx.InsertMeeting(s.ctx, meeting(fmt.Sprintf("race-%d", i), "r1", organizer, at(10, i), at(11, i)))
				return err
			})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, errSlotTaken):
				losses.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(int32(1), wins.Load())
	s.Equal(int32(workers-1), losses.Load())
	s.Len(s.find(persistence.MeetingFilter{RoomID: "r1"}), 1)
}
