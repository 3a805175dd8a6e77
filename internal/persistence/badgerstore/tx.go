package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/samber/lo"
)

const (
	prefixUser     = "user/"
	prefixEmail    = "email/"
	prefixRoom     = "room/"
	prefixMeeting  = "meeting/"
	prefixAttendee = "attendee/"

	guardAll       = "guard/meetings"
	guardRoom      = "guard/room/"
	guardOrganizer = "guard/organizer/"
	guardAttendees = "guard/attendees/"
)

type tx struct {
	txn      *badger.Txn
	readOnly bool
}

var _ persistence.Tx = (*tx)(nil)

func (t *tx) writable() error {
	if t.readOnly {
		return persistence.ErrReadOnly
	}
	return nil
}

func (t *tx) get(key string, dst any) error {
	item, err := t.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return persistence.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("badger: get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func (t *tx) exists(key string) (bool, error) {
	_, err := t.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger: get %s: %w", key, err)
	}
	return true, nil
}

func (t *tx) put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("badger: marshal %s: %w", key, err)
	}
	if err := t.txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("badger: set %s: %w", key, err)
	}
	return nil
}

// scan decodes every value under prefix. Each yielded key is registered as
// read by the transaction.
func scan[T any](t *tx, prefix string) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := t.txn.NewIterator(opts)
	defer it.Close()

	out := make([]T, 0)
	for it.Rewind(); it.Valid(); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return nil, fmt.Errorf("badger: decode %s: %w", it.Item().Key(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// touch rewrites guard keys so that concurrent units which read them fail
// at commit.
func (t *tx) touch(keys ...string) error {
	stamp := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	for _, key := range lo.Uniq(keys) {
		if err := t.txn.Set([]byte(key), stamp); err != nil {
			return fmt.Errorf("badger: set %s: %w", key, err)
		}
	}
	return nil
}

// --- meetings ---

func (t *tx) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	var m persistence.Meeting
	if err := t.get(prefixMeeting+id, &m); err != nil {
		return persistence.Meeting{}, err
	}
	return m, nil
}

func (t *tx) FindMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	var guards []string
	if filter.RoomID != "" {
		guards = append(guards, guardRoom+filter.RoomID)
	}
	if filter.OrganizerID != "" {
		guards = append(guards, guardOrganizer+filter.OrganizerID)
	}
	if len(guards) == 0 {
		guards = append(guards, guardAll)
	}
	for _, g := range guards {
		if _, err := t.exists(g); err != nil {
			return nil, err
		}
	}

	all, err := scan[persistence.Meeting](t, prefixMeeting)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(all, func(m persistence.Meeting, _ int) bool { return filter.Matches(m) })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (t *tx) checkMeeting(m persistence.Meeting) error {
	if m.ID == "" || m.Status == "" || !m.Start.Before(m.End) {
		return persistence.ErrConstraintViolation
	}
	if ok, err := t.exists(prefixRoom + m.RoomID); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("badger: room %s: %w", m.RoomID, persistence.ErrForeignKeyViolation)
	}
	if ok, err := t.exists(prefixUser + m.OrganizerID); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("badger: organizer %s: %w", m.OrganizerID, persistence.ErrForeignKeyViolation)
	}
	return nil
}

func meetingGuards(m persistence.Meeting) []string {
	return []string{guardAll, guardRoom + m.RoomID, guardOrganizer + m.OrganizerID}
}

func (t *tx) InsertMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	if err := t.checkMeeting(meeting); err != nil {
		return persistence.Meeting{}, err
	}
	if ok, err := t.exists(prefixMeeting + meeting.ID); err != nil {
		return persistence.Meeting{}, err
	} else if ok {
		return persistence.Meeting{}, fmt.Errorf("badger: meeting %s: %w", meeting.ID, persistence.ErrDuplicate)
	}
	if err := t.put(prefixMeeting+meeting.ID, meeting); err != nil {
		return persistence.Meeting{}, err
	}
	return meeting, t.touch(meetingGuards(meeting)...)
}

func (t *tx) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	current, err := t.GetMeeting(ctx, meeting.ID)
	if err != nil {
		return persistence.Meeting{}, err
	}
	if err := t.checkMeeting(meeting); err != nil {
		return persistence.Meeting{}, err
	}
	if err := t.put(prefixMeeting+meeting.ID, meeting); err != nil {
		return persistence.Meeting{}, err
	}
	return meeting, t.touch(append(meetingGuards(current), meetingGuards(meeting)...)...)
}

func (t *tx) DeleteMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	m, err := t.GetMeeting(ctx, id)
	if err != nil {
		return persistence.Meeting{}, err
	}

	attendees, err := scan[persistence.Attendee](t, attendeePrefix(id))
	if err != nil {
		return persistence.Meeting{}, err
	}
	for _, a := range attendees {
		if err := t.txn.Delete([]byte(attendeeKey(a.MeetingID, a.UserID))); err != nil {
			return persistence.Meeting{}, fmt.Errorf("badger: delete attendee: %w", err)
		}
	}
	if err := t.txn.Delete([]byte(prefixMeeting + id)); err != nil {
		return persistence.Meeting{}, fmt.Errorf("badger: delete meeting %s: %w", id, err)
	}
	return m, t.touch(meetingGuards(m)...)
}

// --- attendees ---

func attendeePrefix(meetingID string) string {
	return prefixAttendee + meetingID + "/"
}

func attendeeKey(meetingID, userID string) string {
	return attendeePrefix(meetingID) + userID
}

func (t *tx) ListAttendees(ctx context.Context, meetingID string) ([]persistence.Attendee, error) {
	// Iteration does not see keys inserted concurrently, the guard does.
	if _, err := t.exists(guardAttendees + meetingID); err != nil {
		return nil, err
	}
	list, err := scan[persistence.Attendee](t, attendeePrefix(meetingID))
	if err != nil {
		return nil, err
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
		if ok, err := t.exists(prefixMeeting + a.MeetingID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("badger: meeting %s: %w", a.MeetingID, persistence.ErrForeignKeyViolation)
		}
		if ok, err := t.exists(prefixUser + a.UserID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("badger: user %s: %w", a.UserID, persistence.ErrForeignKeyViolation)
		}
		key := attendeeKey(a.MeetingID, a.UserID)
		if ok, err := t.exists(key); err != nil {
			return err
		} else if ok {
			return fmt.Errorf("badger: attendee %s/%s: %w", a.MeetingID, a.UserID, persistence.ErrDuplicate)
		}
		if err := t.put(key, a); err != nil {
			return err
		}
	}
	return t.touch(lo.Map(attendees, func(a persistence.Attendee, _ int) string { return guardAttendees + a.MeetingID })...)
}

// --- rooms ---

func (t *tx) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	var r persistence.Room
	if err := t.get(prefixRoom+id, &r); err != nil {
		return persistence.Room{}, err
	}
	return r, nil
}

func (t *tx) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rooms, err := scan[persistence.Room](t, prefixRoom)
	if err != nil {
		return nil, err
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
	if ok, err := t.exists(prefixRoom + room.ID); err != nil {
		return persistence.Room{}, err
	} else if ok {
		return persistence.Room{}, fmt.Errorf("badger: room %s: %w", room.ID, persistence.ErrDuplicate)
	}
	room.Features = slices.Clone(room.Features)
	slices.Sort(room.Features)
	room.Features = slices.Compact(room.Features)
	if err := t.put(prefixRoom+room.ID, room); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// --- users ---

func (t *tx) GetUser(ctx context.Context, id string) (persistence.User, error) {
	var u persistence.User
	if err := t.get(prefixUser+id, &u); err != nil {
		return persistence.User{}, err
	}
	return u, nil
}

func (t *tx) ListUsers(ctx context.Context) ([]persistence.User, error) {
	users, err := scan[persistence.User](t, prefixUser)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (t *tx) FindUsers(ctx context.Context, ids []string) ([]persistence.User, error) {
	users := make([]persistence.User, 0, len(ids))
	for _, id := range lo.Uniq(ids) {
		u, err := t.GetUser(ctx, id)
		if errors.Is(err, persistence.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, u)
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
	if ok, err := t.exists(prefixUser + user.ID); err != nil {
		return persistence.User{}, err
	} else if ok {
		return persistence.User{}, fmt.Errorf("badger: user %s: %w", user.ID, persistence.ErrDuplicate)
	}
	emailKey := prefixEmail + strings.ToLower(user.Email)
	if ok, err := t.exists(emailKey); err != nil {
		return persistence.User{}, err
	} else if ok {
		return persistence.User{}, fmt.Errorf("badger: email %s: %w", user.Email, persistence.ErrDuplicate)
	}
	if err := t.put(prefixUser+user.ID, user); err != nil {
		return persistence.User{}, err
	}
	if err := t.txn.Set([]byte(emailKey), []byte(user.ID)); err != nil {
		return persistence.User{}, fmt.Errorf("badger: set %s: %w", emailKey, err)
	}
	return user, nil
}
