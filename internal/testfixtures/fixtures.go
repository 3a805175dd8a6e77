package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/scheduler"
)

var (
	userCounter    uint64
	roomCounter    uint64
	meetingCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDay is the calendar day fixture meetings are booked on. It is the
// day after ReferenceTime.
func ReferenceDay() time.Time {
	return time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record.
type UserFixture struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := UserFixture{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: fmt.Sprintf("User %03d", idx),
		CreatedAt:   referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// Persistence converts the fixture into a storage record.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.CreatedAt,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room record.
type RoomFixture struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Status    application.RoomStatus
	Features  []string
	CreatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture seating eight people.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  fmt.Sprintf("Floor %d", idx%5+1),
		Capacity:  8,
		Status:    application.RoomAvailable,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomCapacity overrides the seat count.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomFeatures sets the feature names.
func WithRoomFeatures(features ...string) RoomOption {
	return func(f *RoomFixture) {
		f.Features = features
	}
}

// Persistence converts the fixture into a storage record.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Status:    string(f.Status),
		Features:  f.Features,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.CreatedAt,
	}
}

// --------------------------- Meeting fixtures ----------------------------

// MeetingFixture represents a deterministic meeting record. Organizer and room
// must be set before the fixture is stored.
type MeetingFixture struct {
	ID          string
	Title       string
	Start       time.Time
	End         time.Time
	Status      scheduler.Status
	OrganizerID string
	RoomID      string
	Attendees   []string
	CreatedAt   time.Time
}

// MeetingOption configures the generated meeting fixture.
type MeetingOption func(*MeetingFixture)

// NewMeetingFixture returns a one hour Scheduled meeting at 10:00 on ReferenceDay.
func NewMeetingFixture(opts ...MeetingOption) MeetingFixture {
	idx := atomic.AddUint64(&meetingCounter, 1)
	start, end := Slot(10, 0, time.Hour)
	fixture := MeetingFixture{
		ID:        fmt.Sprintf("meeting-%03d", idx),
		Title:     fmt.Sprintf("Meeting %03d", idx),
		Start:     start,
		End:       end,
		Status:    scheduler.StatusScheduled,
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMeetingID overrides the generated meeting ID.
func WithMeetingID(id string) MeetingOption {
	return func(f *MeetingFixture) {
		f.ID = id
	}
}

// WithMeetingWindow overrides start and end.
func WithMeetingWindow(start, end time.Time) MeetingOption {
	return func(f *MeetingFixture) {
		f.Start = start
		f.End = end
	}
}

// WithMeetingStatus overrides the lifecycle state.
func WithMeetingStatus(status scheduler.Status) MeetingOption {
	return func(f *MeetingFixture) {
		f.Status = status
	}
}

// WithMeetingOrganizer sets the organizer.
func WithMeetingOrganizer(userID string) MeetingOption {
	return func(f *MeetingFixture) {
		f.OrganizerID = userID
	}
}

// WithMeetingRoom sets the booked room.
func WithMeetingRoom(roomID string) MeetingOption {
	return func(f *MeetingFixture) {
		f.RoomID = roomID
	}
}

// WithMeetingAttendees sets the attending users.
func WithMeetingAttendees(userIDs ...string) MeetingOption {
	return func(f *MeetingFixture) {
		f.Attendees = userIDs
	}
}

// Persistence converts the fixture into a storage record.
func (f MeetingFixture) Persistence() persistence.Meeting {
	return persistence.Meeting{
		ID:          f.ID,
		Title:       f.Title,
		Start:       f.Start,
		End:         f.End,
		Status:      f.Status.String(),
		OrganizerID: f.OrganizerID,
		RoomID:      f.RoomID,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.CreatedAt,
	}
}

// ------------------------------- Seeding ---------------------------------

// Dataset groups fixtures written to a store in one unit.
type Dataset struct {
	Users    []UserFixture
	Rooms    []RoomFixture
	Meetings []MeetingFixture
}

// Seed writes data into store inside a single Atomic unit and fails the test
// on any error.
func Seed(tb testing.TB, store persistence.Store, data Dataset) {
	tb.Helper()

	ctx := context.Background()
	err := store.Atomic(ctx, func(tx persistence.Tx) error {
		for _, u := range data.Users {
			if _, err := tx.InsertUser(ctx, u.Persistence()); err != nil {
				return fmt.Errorf("user %s: %w", u.ID, err)
			}
		}
		for _, r := range data.Rooms {
			if _, err := tx.InsertRoom(ctx, r.Persistence()); err != nil {
				return fmt.Errorf("room %s: %w", r.ID, err)
			}
		}
		for _, m := range data.Meetings {
			if _, err := tx.InsertMeeting(ctx, m.Persistence()); err != nil {
				return fmt.Errorf("meeting %s: %w", m.ID, err)
			}
			attendees := make([]persistence.Attendee, 0, len(m.Attendees))
			for _, userID := range m.Attendees {
				attendees = append(attendees, persistence.Attendee{
					MeetingID: m.ID,
					UserID:    userID,
					Role:      string(application.RoleParticipant),
					AddedAt:   m.CreatedAt,
				})
			}
			if err := tx.InsertAttendees(ctx, attendees); err != nil {
				return fmt.Errorf("attendees of %s: %w", m.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		tb.Fatalf("failed to seed store: %v", err)
	}
}
