package application

import (
	"time"

	"github.com/example/meeting-reservations/internal/scheduler"
)

// AttendeeRole describes what an attendee does in a meeting.
type AttendeeRole string

const (
	RoleParticipant AttendeeRole = "Participant"
	RoleSpeaker     AttendeeRole = "Speaker"
	RoleOrganizer   AttendeeRole = "Organizer"
	RoleNoteTaker   AttendeeRole = "NoteTaker"
)

// RoomStatus is the operational state of a room. It is informational only and
// does not affect booking.
type RoomStatus string

const (
	RoomAvailable        RoomStatus = "Available"
	RoomBooked           RoomStatus = "Booked"
	RoomUnderMaintenance RoomStatus = "Under Maintenance"
)

// Meeting is a room booking by an organizer over [Start, End).
type Meeting struct {
	ID          string
	Title       string
	Start       time.Time
	End         time.Time
	Status      scheduler.Status
	OrganizerID string
	RoomID      string
	Attendees   []Attendee
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Interval returns the meeting's time range.
func (m Meeting) Interval() scheduler.Interval {
	return scheduler.Interval{Start: m.Start, End: m.End}
}

// Attendee is a user linked to a meeting. Attendees count against room capacity.
type Attendee struct {
	UserID   string
	Role     AttendeeRole
	Attended bool
	AddedAt  time.Time
}

// Room is a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Status    RoomStatus
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is an identity that can organize or attend meetings.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateMeetingParams wraps the data required to book a meeting.
type CreateMeetingParams struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required,gtfield=Start"`
	OrganizerID string    `json:"organizer_id" validate:"required"`
	RoomID      string    `json:"room_id" validate:"required"`
}

// UpdateMeetingParams carries the fields to change. Nil fields keep their
// current value.
type UpdateMeetingParams struct {
	MeetingID string     `json:"meeting_id" validate:"required"`
	Title     *string    `json:"title" validate:"omitnil,min=1,max=200"`
	Start     *time.Time `json:"start"`
	End       *time.Time `json:"end"`
	RoomID    *string    `json:"room_id" validate:"omitnil,min=1"`
}

// schedules reports whether any time or room field was supplied.
func (p UpdateMeetingParams) schedules() bool {
	return p.Start != nil || p.End != nil || p.RoomID != nil
}

// RescheduleMeetingParams moves a meeting. A nil RoomID keeps the current room.
type RescheduleMeetingParams struct {
	MeetingID string    `json:"meeting_id" validate:"required"`
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required,gtfield=Start"`
	RoomID    *string   `json:"room_id" validate:"omitnil,min=1"`
}

// AddAttendeesParams lists users to add to a meeting.
type AddAttendeesParams struct {
	MeetingID string   `json:"meeting_id" validate:"required"`
	UserIDs   []string `json:"user_ids" validate:"min=1"`
}

// ListMeetingsParams narrows ListMeetings. From and Until must be given together.
type ListMeetingsParams struct {
	RoomID           string
	OrganizerID      string
	From             *time.Time
	Until            *time.Time
	IncludeCancelled bool
}

// FindAvailableRoomsParams describes the window and size a caller needs.
// A nil MinCapacity accepts any room.
type FindAvailableRoomsParams struct {
	Start            time.Time `json:"start" validate:"required"`
	End              time.Time `json:"end" validate:"required,gtfield=Start"`
	MinCapacity      *int      `json:"min_capacity" validate:"omitnil,min=1,max=1000"`
	ExcludeMeetingID string    `json:"exclude_meeting_id"`
}

// CreateRoomParams wraps the data required to add a room to the catalog.
type CreateRoomParams struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Location string     `json:"location" validate:"max=200"`
	Capacity int        `json:"capacity" validate:"min=1,max=1000"`
	Status   RoomStatus `json:"status" validate:"omitempty,oneof=Available Booked 'Under Maintenance'"`
	Features []string   `json:"features" validate:"dive,required,max=50"`
}

// RegisterUserParams wraps the data required to register a user.
type RegisterUserParams struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	DisplayName string `json:"display_name" validate:"max=100"`
}
