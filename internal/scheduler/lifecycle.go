package scheduler

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a meeting.
type Status string

const (
	StatusScheduled   Status = "Scheduled"
	StatusRescheduled Status = "Rescheduled"
	StatusCancelled   Status = "Cancelled"
	StatusCompleted   Status = "Completed"
)

// Event is an action requested against a meeting.
type Event string

const (
	EventCancel       Event = "cancel"
	EventReschedule   Event = "reschedule"
	EventComplete     Event = "complete"
	EventAddAttendees Event = "add_attendees"
	EventEditDetails  Event = "edit_details"
)

var (
	// ErrTerminal is returned when an event would mutate a cancelled or completed meeting.
	ErrTerminal = errors.New("scheduler: meeting is in a terminal state")
	// ErrUnknownStatus is returned for statuses outside the lifecycle.
	ErrUnknownStatus = errors.New("scheduler: unknown status")
)

// ParseStatus converts a stored status label.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
	}
	return s, nil
}

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusRescheduled, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further time, room or attendee mutation is allowed.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) String() string { return string(s) }

// InitialStatus is the state assigned at creation.
func InitialStatus() Status { return StatusScheduled }

// Transition returns the state reached by applying ev to from.
// Detail edits are allowed in every state and leave it unchanged; every
// other event fails with ErrTerminal once the meeting is cancelled or completed.
func Transition(from Status, ev Event) (Status, error) {
	if !from.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if ev == EventEditDetails {
		return from, nil
	}
	if from.Terminal() {
		return from, fmt.Errorf("%w: cannot %s a %s meeting", ErrTerminal, ev, from)
	}

	switch ev {
	case EventCancel:
		return StatusCancelled, nil
	case EventReschedule:
		return StatusRescheduled, nil
	case EventComplete:
		return StatusCompleted, nil
	case EventAddAttendees:
		return from, nil
	default:
		return "", fmt.Errorf("scheduler: unknown event %q", ev)
	}
}
