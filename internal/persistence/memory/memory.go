// Package memory provides an in-process persistence.Store. A single writer
// lock plus copy-on-commit gives every Atomic unit serializable isolation.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/example/meeting-reservations/internal/persistence"
)

// Store keeps all records in maps guarded by a RWMutex.
type Store struct {
	mu     sync.RWMutex
	state  *state
	closed bool
}

type state struct {
	users     map[string]persistence.User
	rooms     map[string]persistence.Room
	meetings  map[string]persistence.Meeting
	attendees map[string][]persistence.Attendee
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		users:     make(map[string]persistence.User),
		rooms:     make(map[string]persistence.Room),
		meetings:  make(map[string]persistence.Meeting),
		attendees: make(map[string][]persistence.Attendee),
	}
}

// Atomic runs fn against a private copy of the data and publishes the copy
// only when fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(tx persistence.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("memory: store is closed")
	}

	work := s.state.clone()
	if err := fn(&tx{state: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

// View runs fn under the read lock.
func (s *Store) View(ctx context.Context, fn func(tx persistence.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("memory: store is closed")
	}
	return fn(&tx{state: s.state, readOnly: true})
}

// Close marks the store unusable.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (st *state) clone() *state {
	out := newState()
	for id, u := range st.users {
		out.users[id] = u
	}
	for id, r := range st.rooms {
		out.rooms[id] = cloneRoom(r)
	}
	for id, m := range st.meetings {
		out.meetings[id] = m
	}
	for id, list := range st.attendees {
		out.attendees[id] = slices.Clone(list)
	}
	return out
}

type tx struct {
	state    *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return persistence.ErrReadOnly
	}
	return nil
}

// --- meetings ---

func (t *tx) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	m, ok := t.state.meetings[id]
	if !ok {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	return m, nil
}

func (t *tx) FindMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	out := make([]persistence.Meeting, 0)
	for _, m := range t.state.meetings {
		if filter.Matches(m) {
			out = append(out, m)
		}
	}
	sortMeetings(out)
	return out, nil
}

func (t *tx) InsertMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	if err := t.checkMeeting(meeting); err != nil {
		return persistence.Meeting{}, err
	}
	if _, ok := t.state.meetings[meeting.ID]; ok {
		return persistence.Meeting{}, fmt.Errorf("memory: meeting %s: %w", meeting.ID, persistence.ErrDuplicate)
	}
	t.state.meetings[meeting.ID] = meeting
	return meeting, nil
}

func (t *tx) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	if _, ok := t.state.meetings[meeting.ID]; !ok {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	if err := t.checkMeeting(meeting); err != nil {
		return persistence.Meeting{}, err
	}
	t.state.meetings[meeting.ID] = meeting
	return meeting, nil
}

func (t *tx) DeleteMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	m, ok := t.state.meetings[id]
	if !ok {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	delete(t.state.meetings, id)
	delete(t.state.attendees, id)
	return m, nil
}

func (t *tx) checkMeeting(m persistence.Meeting) error {
	if m.ID == "" || m.Status == "" || !m.Start.Before(m.End) {
		return persistence.ErrConstraintViolation
	}
	if _, ok := t.state.rooms[m.RoomID]; !ok {
		return fmt.Errorf("memory: room %s: %w", m.RoomID, persistence.ErrForeignKeyViolation)
	}
	if _, ok := t.state.users[m.OrganizerID]; !ok {
		return fmt.Errorf("memory: organizer %s: %w", m.OrganizerID, persistence.ErrForeignKeyViolation)
	}
	return nil
}

// --- attendees ---

func (t *tx) ListAttendees(ctx context.Context, meetingID string) ([]persistence.Attendee, error) {
	list := slices.Clone(t.state.attendees[meetingID])
	if list == nil {
		list = []persistence.Attendee{}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].AddedAt.Equal(list[j].AddedAt) {
			return list[i].UserID < list[j].UserID
		}
		return list[i].AddedAt.Before(list[j].AddedAt)
	})
	return list, nil
}

func (t *tx) InsertAttendees(ctx context.Context, attendees []persistence.Attendee) error {
	if err := t.writable(); err != nil {
		return err
	}
	for _, a := range attendees {
		if _, ok := t.state.meetings[a.MeetingID]; !ok {
			return fmt.Errorf("memory: meeting %s: %w", a.MeetingID, persistence.ErrForeignKeyViolation)
		}
		if _, ok := t.state.users[a.UserID]; !ok {
			return fmt.Errorf("memory: user %s: %w", a.UserID, persistence.ErrForeignKeyViolation)
		}
		existing := t.state.attendees[a.MeetingID]
		if slices.ContainsFunc(existing, func(e persistence.Attendee) bool { return e.UserID == a.UserID }) {
			return fmt.Errorf("memory: attendee %s/%s: %w", a.MeetingID, a.UserID, persistence.ErrDuplicate)
		}
		t.state.attendees[a.MeetingID] = append(existing, a)
	}
	return nil
}

// --- rooms ---

func (t *tx) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	r, ok := t.state.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return cloneRoom(r), nil
}

func (t *tx) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rooms := make([]persistence.Room, 0, len(t.state.rooms))
	for _, r := range t.state.rooms {
		rooms = append(rooms, cloneRoom(r))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (t *tx) InsertRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	if err := t.writable(); err != nil {
		return persistence.Room{}, err
	}
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.Room{}, persistence.ErrConstraintViolation
	}
	if _, ok := t.state.rooms[room.ID]; ok {
		return persistence.Room{}, fmt.Errorf("memory: room %s: %w", room.ID, persistence.ErrDuplicate)
	}
	room = cloneRoom(room)
	slices.Sort(room.Features)
	room.Features = slices.Compact(room.Features)
	t.state.rooms[room.ID] = room
	return cloneRoom(room), nil
}

// --- users ---

func (t *tx) GetUser(ctx context.Context, id string) (persistence.User, error) {
	u, ok := t.state.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return u, nil
}

func (t *tx) ListUsers(ctx context.Context) ([]persistence.User, error) {
	users := make([]persistence.User, 0, len(t.state.users))
	for _, u := range t.state.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (t *tx) FindUsers(ctx context.Context, ids []string) ([]persistence.User, error) {
	users := make([]persistence.User, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := t.state.users[id]; ok {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (t *tx) InsertUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if err := t.writable(); err != nil {
		return persistence.User{}, err
	}
	if user.ID == "" || strings.TrimSpace(user.Email) == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}
	if _, ok := t.state.users[user.ID]; ok {
		return persistence.User{}, fmt.Errorf("memory: user %s: %w", user.ID, persistence.ErrDuplicate)
	}
	for _, existing := range t.state.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return persistence.User{}, fmt.Errorf("memory: email %s: %w", user.Email, persistence.ErrDuplicate)
		}
	}
	t.state.users[user.ID] = user
	return user, nil
}

func cloneRoom(room persistence.Room) persistence.Room {
	room.Features = slices.Clone(room.Features)
	return room
}

func sortMeetings(meetings []persistence.Meeting) {
	sort.Slice(meetings, func(i, j int) bool {
		if meetings[i].Start.Equal(meetings[j].Start) {
			return meetings[i].ID < meetings[j].ID
		}
		return meetings[i].Start.Before(meetings[j].Start)
	})
}
