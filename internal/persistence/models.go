package persistence

import "time"

// User is an identity that can organize or attend meetings.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Room is a bookable meeting room. Features are stored as names.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Status    string
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Meeting is a booking of a room by an organizer over [Start, End).
type Meeting struct {
	ID          string
	Title       string
	Start       time.Time
	End         time.Time
	Status      string
	OrganizerID string
	RoomID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attendee links a user to a meeting. (MeetingID, UserID) is unique.
type Attendee struct {
	MeetingID string
	UserID    string
	Role      string
	Attended  bool
	AddedAt   time.Time
}

// MeetingFilter narrows FindMeetings. Zero-valued fields do not filter.
type MeetingFilter struct {
	RoomID      string
	OrganizerID string
	// From and Until select meetings overlapping [From, Until) when both are set.
	From  time.Time
	Until time.Time
	// ExcludeID drops a single meeting from the result, typically the one being moved.
	ExcludeID string
	// SkipCancelled drops meetings whose status is Cancelled.
	SkipCancelled bool
}

// HasWindow reports whether the filter restricts by time.
func (f MeetingFilter) HasWindow() bool {
	return !f.From.IsZero() && !f.Until.IsZero()
}

// Matches applies the filter to a single meeting. Stores that cannot push the
// predicate down use it after scanning.
func (f MeetingFilter) Matches(m Meeting) bool {
	if f.RoomID != "" && m.RoomID != f.RoomID {
		return false
	}
	if f.OrganizerID != "" && m.OrganizerID != f.OrganizerID {
		return false
	}
	if f.ExcludeID != "" && m.ID == f.ExcludeID {
		return false
	}
	if f.SkipCancelled && m.Status == StatusCancelled {
		return false
	}
	if f.HasWindow() && !(m.Start.Before(f.Until) && m.End.After(f.From)) {
		return false
	}
	return true
}

// StatusCancelled mirrors the lifecycle label so stores can filter without
// importing the scheduler package.
const StatusCancelled = "Cancelled"
