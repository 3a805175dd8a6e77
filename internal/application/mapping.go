package application

import (
	"errors"
	"fmt"
	"slices"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/scheduler"
	"github.com/samber/lo"
)

func meetingFromRecord(rec persistence.Meeting, attendees []persistence.Attendee) Meeting {
	m := Meeting{
		ID:          rec.ID,
		Title:       rec.Title,
		Start:       rec.Start,
		End:         rec.End,
		Status:      scheduler.Status(rec.Status),
		OrganizerID: rec.OrganizerID,
		RoomID:      rec.RoomID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if attendees != nil {
		m.Attendees = lo.Map(attendees, func(a persistence.Attendee, _ int) Attendee {
			return Attendee{UserID: a.UserID, Role: AttendeeRole(a.Role), Attended: a.Attended, AddedAt: a.AddedAt}
		})
	}
	return m
}

func meetingRecord(m Meeting) persistence.Meeting {
	return persistence.Meeting{
		ID:          m.ID,
		Title:       m.Title,
		Start:       m.Start,
		End:         m.End,
		Status:      m.Status.String(),
		OrganizerID: m.OrganizerID,
		RoomID:      m.RoomID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func bookingFromRecord(rec persistence.Meeting) scheduler.Booking {
	return scheduler.Booking{
		ID:          rec.ID,
		RoomID:      rec.RoomID,
		OrganizerID: rec.OrganizerID,
		Status:      scheduler.Status(rec.Status),
		Interval:    scheduler.Interval{Start: rec.Start, End: rec.End},
	}
}

func roomFromRecord(rec persistence.Room) Room {
	return Room{
		ID:        rec.ID,
		Name:      rec.Name,
		Location:  rec.Location,
		Capacity:  rec.Capacity,
		Status:    RoomStatus(rec.Status),
		Features:  slices.Clone(rec.Features),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func userFromRecord(rec persistence.User) User {
	return User{
		ID:          rec.ID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

// mapRepoError translates storage sentinels into application errors. what
// names the missing or duplicated entity. Anything unrecognised is returned
// untouched.
func mapRepoError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%w: %s", ErrAlreadyExists, what)
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fmt.Errorf("%w: %s references a missing record", ErrNotFound, what)
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add(what, "violates a storage constraint")
		return vErr
	}
	return err
}
