package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/samber/lo"
)

// timeLayout is fixed width so that string order in SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

type tx struct {
	tx       *sql.Tx
	mapper   *ErrorMapper
	readOnly bool
}

var _ persistence.Tx = (*tx)(nil)

func (t *tx) writable() error {
	if t.readOnly {
		return persistence.ErrReadOnly
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// --- meetings ---

const meetingColumns = `id, title, start_time, end_time, status, organizer_id, room_id, created_at, updated_at`

func scanMeeting(row scanner) (persistence.Meeting, error) {
	var (
		m                                persistence.Meeting
		start, end, createdAt, updatedAt string
	)
	if err := row.Scan(&m.ID, &m.Title, &start, &end, &m.Status, &m.OrganizerID, &m.RoomID, &createdAt, &updatedAt); err != nil {
		return persistence.Meeting{}, err
	}
	var err error
	if m.Start, err = parseTime(start); err != nil {
		return persistence.Meeting{}, err
	}
	if m.End, err = parseTime(end); err != nil {
		return persistence.Meeting{}, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Meeting{}, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Meeting{}, err
	}
	return m, nil
}

func (t *tx) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if err != nil {
		return persistence.Meeting{}, t.mapper.MapError(err)
	}
	return m, nil
}

func (t *tx) FindMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	var (
		where []string
		args  []any
	)
	if filter.RoomID != "" {
		where = append(where, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.OrganizerID != "" {
		where = append(where, "organizer_id = ?")
		args = append(args, filter.OrganizerID)
	}
	if filter.ExcludeID != "" {
		where = append(where, "id <> ?")
		args = append(args, filter.ExcludeID)
	}
	if filter.SkipCancelled {
		where = append(where, "status <> ?")
		args = append(args, persistence.StatusCancelled)
	}
	if filter.HasWindow() {
		where = append(where, "start_time < ? AND end_time > ?")
		args = append(args, formatTime(filter.Until), formatTime(filter.From))
	}

	query := `SELECT ` + meetingColumns + ` FROM meetings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_time, id`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.mapper.MapError(err)
	}
	defer rows.Close()

	meetings := make([]persistence.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, t.mapper.MapError(err)
	}
	return meetings, nil
}

func checkMeeting(m persistence.Meeting) error {
	if m.ID == "" || m.Status == "" || !m.Start.Before(m.End) {
		return persistence.ErrConstraintViolation
	}
	return nil
}

func (t *tx) InsertMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	if err := checkMeeting(meeting); err != nil {
		return persistence.Meeting{}, err
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO meetings (`+meetingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meeting.ID,
		meeting.Title,
		formatTime(meeting.Start),
		formatTime(meeting.End),
		meeting.Status,
		meeting.OrganizerID,
		meeting.RoomID,
		formatTime(meeting.CreatedAt),
		formatTime(meeting.UpdatedAt),
	)
	if err != nil {
		return persistence.Meeting{}, t.mapper.MapError(err)
	}
	return meeting, nil
}

func (t *tx) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	if err := checkMeeting(meeting); err != nil {
		return persistence.Meeting{}, err
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE meetings
		SET title = ?, start_time = ?, end_time = ?, status = ?, organizer_id = ?, room_id = ?, updated_at = ?
		WHERE id = ?`,
		meeting.Title,
		formatTime(meeting.Start),
		formatTime(meeting.End),
		meeting.Status,
		meeting.OrganizerID,
		meeting.RoomID,
		formatTime(meeting.UpdatedAt),
		meeting.ID,
	)
	if err != nil {
		return persistence.Meeting{}, t.mapper.MapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	return t.GetMeeting(ctx, meeting.ID)
}

func (t *tx) DeleteMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	if err := t.writable(); err != nil {
		return persistence.Meeting{}, err
	}
	m, err := t.GetMeeting(ctx, id)
	if err != nil {
		return persistence.Meeting{}, err
	}
	// Attendee rows go with the meeting through ON DELETE CASCADE.
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id); err != nil {
		return persistence.Meeting{}, t.mapper.MapError(err)
	}
	return m, nil
}

// --- attendees ---

func (t *tx) ListAttendees(ctx context.Context, meetingID string) ([]persistence.Attendee, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT meeting_id, user_id, role, attended, added_at
		FROM meeting_attendees
		WHERE meeting_id = ?
		ORDER BY added_at, user_id`, meetingID)
	if err != nil {
		return nil, t.mapper.MapError(err)
	}
	defer rows.Close()

	attendees := make([]persistence.Attendee, 0)
	for rows.Next() {
		var (
			a       persistence.Attendee
			addedAt string
		)
		if err := rows.Scan(&a.MeetingID, &a.UserID, &a.Role, &a.Attended, &addedAt); err != nil {
			return nil, t.mapper.MapError(err)
		}
		if a.AddedAt, err = parseTime(addedAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, t.mapper.MapError(err)
	}
	return attendees, nil
}

func (t *tx) InsertAttendees(ctx context.Context, attendees []persistence.Attendee) error {
	if err := t.writable(); err != nil {
		return err
	}
	if len(attendees) == 0 {
		return nil
	}
	stmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO meeting_attendees (meeting_id, user_id, role, attended, added_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return t.mapper.MapError(err)
	}
	defer stmt.Close()

	for _, a := range attendees {
		if _, err := stmt.ExecContext(ctx, a.MeetingID, a.UserID, a.Role, a.Attended, formatTime(a.AddedAt)); err != nil {
			return t.mapper.MapError(err)
		}
	}
	return nil
}

// --- rooms ---

func scanRoom(row scanner) (persistence.Room, error) {
	var (
		r                    persistence.Room
		createdAt, updatedAt string
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Location, &r.Capacity, &r.Status, &createdAt, &updatedAt); err != nil {
		return persistence.Room{}, err
	}
	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return r, nil
}

func (t *tx) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, name, location, capacity, status, created_at, updated_at
		FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, t.mapper.MapError(err)
	}
	features, err := t.roomFeatures(ctx, id)
	if err != nil {
		return persistence.Room{}, err
	}
	room.Features = features[id]
	return room, nil
}

func (t *tx) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, location, capacity, status, created_at, updated_at
		FROM rooms ORDER BY id`)
	if err != nil {
		return nil, t.mapper.MapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, t.mapper.MapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, t.mapper.MapError(err)
	}
	rows.Close()

	features, err := t.roomFeatures(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].Features = features[rooms[i].ID]
	}
	return rooms, nil
}

// roomFeatures loads feature names keyed by room. An empty roomID loads all.
func (t *tx) roomFeatures(ctx context.Context, roomID string) (map[string][]string, error) {
	query := `SELECT room_id, name FROM room_features`
	var args []any
	if roomID != "" {
		query += ` WHERE room_id = ?`
		args = append(args, roomID)
	}
	query += ` ORDER BY room_id, name`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.mapper.MapError(err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, t.mapper.MapError(err)
		}
		out[id] = append(out[id], name)
	}
	return out, t.mapper.MapError(rows.Err())
}

func (t *tx) InsertRoom(ctx context.Context, room persistence.Room) (persistence.Room, error) {
	if err := t.writable(); err != nil {
		return persistence.Room{}, err
	}
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.Room{}, persistence.ErrConstraintViolation
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO rooms (id, name, location, capacity, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.Location, room.Capacity, room.Status,
		formatTime(room.CreatedAt), formatTime(room.UpdatedAt),
	)
	if err != nil {
		return persistence.Room{}, t.mapper.MapError(err)
	}
	for _, feature := range lo.Uniq(room.Features) {
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO room_features (room_id, name) VALUES (?, ?)`, room.ID, feature); err != nil {
			return persistence.Room{}, t.mapper.MapError(err)
		}
	}
	return t.GetRoom(ctx, room.ID)
}

// --- users ---

const userColumns = `id, email, display_name, created_at, updated_at`

func scanUser(row scanner) (persistence.User, error) {
	var (
		u                    persistence.User
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &createdAt, &updatedAt); err != nil {
		return persistence.User{}, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return u, nil
}

func (t *tx) GetUser(ctx context.Context, id string) (persistence.User, error) {
	u, err := scanUser(t.tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return persistence.User{}, t.mapper.MapError(err)
	}
	return u, nil
}

func (t *tx) ListUsers(ctx context.Context) ([]persistence.User, error) {
	return t.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

func (t *tx) FindUsers(ctx context.Context, ids []string) ([]persistence.User, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return []persistence.User{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := lo.Map(ids, func(id string, _ int) any { return id })
	return t.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
}

func (t *tx) queryUsers(ctx context.Context, query string, args ...any) ([]persistence.User, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.mapper.MapError(err)
	}
	defer rows.Close()

	users := make([]persistence.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, t.mapper.MapError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, t.mapper.MapError(err)
	}
	return users, nil
}

func (t *tx) InsertUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if err := t.writable(); err != nil {
		return persistence.User{}, err
	}
	if user.ID == "" || strings.TrimSpace(user.Email) == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}
	_, err := t.tx.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	if err != nil {
		return persistence.User{}, t.mapper.MapError(err)
	}
	return user, nil
}
