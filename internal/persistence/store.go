//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks
package persistence

import "context"

// Store is the transactional handle the application layer is given.
type Store interface {
	// Atomic runs fn as a single serializable read-write unit. If fn returns an
	// error nothing it wrote is kept. Backends may re-run fn after a
	// serialization failure, so fn must not have effects outside tx.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	// View runs fn against a consistent read-only snapshot.
	View(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx exposes one explicit query per relationship. Every method observes and
// mutates only the enclosing unit of work.
type Tx interface {
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	FindMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
	InsertMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	UpdateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	DeleteMeeting(ctx context.Context, id string) (Meeting, error)

	ListAttendees(ctx context.Context, meetingID string) ([]Attendee, error)
	InsertAttendees(ctx context.Context, attendees []Attendee) error

	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	InsertRoom(ctx context.Context, room Room) (Room, error)

	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	FindUsers(ctx context.Context, ids []string) ([]User, error)
	InsertUser(ctx context.Context, user User) (User, error)
}
