package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/scheduler"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

// ReservationService books, moves, cancels and staffs meetings. Every
// operation that checks conflicts or capacity and then writes runs as a single
// store.Atomic unit, so the check and the write cannot be split by a
// concurrent caller.
type ReservationService struct {
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewReservationService wires dependencies for meeting operations.
func NewReservationService(store persistence.Store, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(store, idGenerator, now, nil)
}

// NewReservationServiceWithLogger wires dependencies with a specific logger.
func NewReservationServiceWithLogger(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

func (s *ReservationService) ready() error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("meeting store not configured")
	}
	return nil
}

// CreateMeeting books a room for an organizer. The meeting starts Scheduled.
func (s *ReservationService) CreateMeeting(ctx context.Context, params CreateMeetingParams) (meeting Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	ctx, span := startSpan(ctx, "ReservationService", "CreateMeeting",
		attribute.String("room.id", params.RoomID),
		attribute.String("organizer.id", params.OrganizerID),
	)
	logger := s.loggerWith(ctx, "CreateMeeting",
		"room_id", params.RoomID,
		"organizer_id", params.OrganizerID,
	)
	defer func() {
		endSpan(span, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to create meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("meeting_id", meeting.ID).InfoContext(ctx, "meeting created")
	}()

	params.Title = strings.TrimSpace(params.Title)
	if vErr := validateInput(params); vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	candidate := Meeting{
		ID:          s.idGenerator(),
		Title:       params.Title,
		Start:       params.Start,
		End:         params.End,
		Status:      scheduler.InitialStatus(),
		OrganizerID: params.OrganizerID,
		RoomID:      params.RoomID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		if _, err := tx.GetUser(ctx, candidate.OrganizerID); err != nil {
			return mapRepoError(err, "organizer "+candidate.OrganizerID)
		}
		if _, err := tx.GetRoom(ctx, candidate.RoomID); err != nil {
			return mapRepoError(err, "room "+candidate.RoomID)
		}
		if err := ensureNoOverlap(ctx, tx, candidate); err != nil {
			return err
		}

		rec, err := tx.InsertMeeting(ctx, meetingRecord(candidate))
		if err != nil {
			return mapRepoError(err, "meeting "+candidate.ID)
		}
		meeting = meetingFromRecord(rec, []persistence.Attendee{})
		return nil
	})
	if err != nil {
		meeting = Meeting{}
	}
	return
}

// GetMeeting returns a meeting together with its attendees.
func (s *ReservationService) GetMeeting(ctx context.Context, id string) (meeting Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	err = s.store.View(ctx, func(tx persistence.Tx) error {
		var loadErr error
		meeting, loadErr = loadMeeting(ctx, tx, id)
		return loadErr
	})
	if err != nil {
		if ErrorKind(err) == "unexpected" {
			s.loggerWith(ctx, "GetMeeting", "meeting_id", id).
				ErrorContext(ctx, "failed to get meeting", "error", err, "error_kind", ErrorKind(err))
		}
		return Meeting{}, err
	}
	return meeting, nil
}

// ListMeetings returns meetings ordered by start time then id. Attendees are
// not loaded.
func (s *ReservationService) ListMeetings(ctx context.Context, params ListMeetingsParams) (meetings []Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListMeetings",
		"room_id", params.RoomID,
		"organizer_id", params.OrganizerID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list meetings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(meetings)).DebugContext(ctx, "meetings listed")
	}()

	filter := persistence.MeetingFilter{
		RoomID:        params.RoomID,
		OrganizerID:   params.OrganizerID,
		SkipCancelled: !params.IncludeCancelled,
	}
	vErr := &ValidationError{}
	switch {
	case params.From == nil && params.Until == nil:
	case params.From == nil || params.Until == nil:
		vErr.add("from", "from and until must be provided together")
	case !params.From.Before(*params.Until):
		vErr.add("until", "until must be after from")
	default:
		filter.From, filter.Until = *params.From, *params.Until
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.store.View(ctx, func(tx persistence.Tx) error {
		recs, err := tx.FindMeetings(ctx, filter)
		if err != nil {
			return err
		}
		meetings = lo.Map(recs, func(rec persistence.Meeting, _ int) Meeting {
			return meetingFromRecord(rec, nil)
		})
		return nil
	})
	if err != nil {
		meetings = nil
	}
	return
}

// UpdateMeeting changes the supplied fields. A title-only change is applied
// in any state. When start, end or room actually change the meeting must not
// be terminal, the new schedule is re-validated excluding the meeting itself,
// and the status becomes Rescheduled.
func (s *ReservationService) UpdateMeeting(ctx context.Context, params UpdateMeetingParams) (meeting Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	ctx, span := startSpan(ctx, "ReservationService", "UpdateMeeting", attribute.String("meeting.id", params.MeetingID))
	logger := s.loggerWith(ctx, "UpdateMeeting", "meeting_id", params.MeetingID)
	defer func() {
		endSpan(span, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to update meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", meeting.Status).InfoContext(ctx, "meeting updated")
	}()

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		params.Title = &title
	}
	if vErr := validateInput(params); vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		rec, err := tx.GetMeeting(ctx, params.MeetingID)
		if err != nil {
			return mapRepoError(err, "meeting "+params.MeetingID)
		}
		current := meetingFromRecord(rec, nil)

		next := current
		if params.Title != nil {
			next.Title = *params.Title
		}
		if params.Start != nil {
			next.Start = *params.Start
		}
		if params.End != nil {
			next.End = *params.End
		}
		if params.RoomID != nil {
			next.RoomID = *params.RoomID
		}

		event := scheduler.EventEditDetails
		if params.schedules() && (!next.Interval().Equal(current.Interval()) || next.RoomID != current.RoomID) {
			event = scheduler.EventReschedule
		}
		next.Status, err = scheduler.Transition(current.Status, event)
		if err != nil {
			return lifecycleError(err)
		}
		if event == scheduler.EventReschedule {
			if err := s.guardSchedule(ctx, tx, next, next.RoomID != current.RoomID); err != nil {
				return err
			}
		}

		next.UpdatedAt = s.now()
		updated, err := tx.UpdateMeeting(ctx, meetingRecord(next))
		if err != nil {
			return mapRepoError(err, "meeting "+next.ID)
		}
		attendees, err := tx.ListAttendees(ctx, next.ID)
		if err != nil {
			return err
		}
		meeting = meetingFromRecord(updated, attendees)
		return nil
	})
	if err != nil {
		meeting = Meeting{}
	}
	return
}

// RescheduleMeeting moves a meeting to a new window and optionally a new
// room. A nil params.RoomID keeps the current room. Terminal meetings are
// reported as not found.
func (s *ReservationService) RescheduleMeeting(ctx context.Context, params RescheduleMeetingParams) (meeting Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	ctx, span := startSpan(ctx, "ReservationService", "RescheduleMeeting", attribute.String("meeting.id", params.MeetingID))
	logger := s.loggerWith(ctx, "RescheduleMeeting", "meeting_id", params.MeetingID)
	defer func() {
		endSpan(span, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to reschedule meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", meeting.RoomID).InfoContext(ctx, "meeting rescheduled")
	}()

	if vErr := validateInput(params); vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		rec, err := tx.GetMeeting(ctx, params.MeetingID)
		if err != nil {
			return mapRepoError(err, "meeting "+params.MeetingID)
		}
		current := meetingFromRecord(rec, nil)

		status, err := scheduler.Transition(current.Status, scheduler.EventReschedule)
		if err != nil {
			return fmt.Errorf("%w: meeting %s: %w", ErrNotFound, current.ID, err)
		}

		next := current
		next.Start, next.End = params.Start, params.End
		if params.RoomID != nil {
			next.RoomID = *params.RoomID
		}
		if err := s.guardSchedule(ctx, tx, next, next.RoomID != current.RoomID); err != nil {
			return err
		}

		next.Status = status
		next.UpdatedAt = s.now()
		updated, err := tx.UpdateMeeting(ctx, meetingRecord(next))
		if err != nil {
			return mapRepoError(err, "meeting "+next.ID)
		}
		attendees, err := tx.ListAttendees(ctx, next.ID)
		if err != nil {
			return err
		}
		meeting = meetingFromRecord(updated, attendees)
		return nil
	})
	if err != nil {
		meeting = Meeting{}
	}
	return
}

// CancelMeeting moves a meeting to Cancelled, releasing its room and
// organizer. Cancelling a meeting that is already terminal changes nothing:
// the stored meeting is returned together with ErrAlreadyTerminal.
func (s *ReservationService) CancelMeeting(ctx context.Context, id string) (meeting Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	ctx, span := startSpan(ctx, "ReservationService", "CancelMeeting", attribute.String("meeting.id", id))
	logger := s.loggerWith(ctx, "CancelMeeting", "meeting_id", id)
	defer func() {
		endSpan(span, err)
		switch {
		case errors.Is(err, ErrAlreadyTerminal):
			logger.With("status", meeting.Status).InfoContext(ctx, "meeting already terminal, cancel ignored")
		case err != nil:
			logger.ErrorContext(ctx, "failed to cancel meeting", "error", err, "error_kind", ErrorKind(err))
		default:
			logger.InfoContext(ctx, "meeting cancelled")
		}
	}()

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		rec, err := tx.GetMeeting(ctx, id)
		if err != nil {
			return mapRepoError(err, "meeting "+id)
		}
		attendees, err := tx.ListAttendees(ctx, id)
		if err != nil {
			return err
		}

		status, err := scheduler.Transition(scheduler.Status(rec.Status), scheduler.EventCancel)
		if err != nil {
			meeting = meetingFromRecord(rec, attendees)
			return lifecycleError(err)
		}

		rec.Status = status.String()
		rec.UpdatedAt = s.now()
		updated, err := tx.UpdateMeeting(ctx, rec)
		if err != nil {
			return mapRepoError(err, "meeting "+id)
		}
		meeting = meetingFromRecord(updated, attendees)
		return nil
	})
	if err != nil && !errors.Is(err, ErrAlreadyTerminal) {
		meeting = Meeting{}
	}
	return
}

// CompleteMeeting records the external signal that a meeting took place.
// Completion is never inferred from the clock.
func (s *ReservationService) CompleteMeeting(ctx context.Context, id string) (meeting Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	ctx, span := startSpan(ctx, "ReservationService", "CompleteMeeting", attribute.String("meeting.id", id))
	logger := s.loggerWith(ctx, "CompleteMeeting", "meeting_id", id)
	defer func() {
		endSpan(span, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to complete meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting completed")
	}()

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		rec, err := tx.GetMeeting(ctx, id)
		if err != nil {
			return mapRepoError(err, "meeting "+id)
		}
		status, err := scheduler.Transition(scheduler.Status(rec.Status), scheduler.EventComplete)
		if err != nil {
			return lifecycleError(err)
		}

		rec.Status = status.String()
		rec.UpdatedAt = s.now()
		updated, err := tx.UpdateMeeting(ctx, rec)
		if err != nil {
			return mapRepoError(err, "meeting "+id)
		}
		attendees, err := tx.ListAttendees(ctx, id)
		if err != nil {
			return err
		}
		meeting = meetingFromRecord(updated, attendees)
		return nil
	})
	if err != nil {
		meeting = Meeting{}
	}
	return
}

// DeleteMeeting hard-deletes a meeting in any state, together with its
// attendees, and returns what was removed.
func (s *ReservationService) DeleteMeeting(ctx context.Context, id string) (meeting Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	ctx, span := startSpan(ctx, "ReservationService", "DeleteMeeting", attribute.String("meeting.id", id))
	logger := s.loggerWith(ctx, "DeleteMeeting", "meeting_id", id)
	defer func() {
		endSpan(span, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", meeting.Status).InfoContext(ctx, "meeting deleted")
	}()

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		attendees, err := tx.ListAttendees(ctx, id)
		if err != nil {
			return err
		}
		rec, err := tx.DeleteMeeting(ctx, id)
		if err != nil {
			return mapRepoError(err, "meeting "+id)
		}
		meeting = meetingFromRecord(rec, attendees)
		return nil
	})
	if err != nil {
		meeting = Meeting{}
	}
	return
}

// AddAttendees adds users to a meeting as participants. Ids already attending,
// the organizer, and ids that match no user are skipped. The whole request is
// refused with a ConflictError when the new total would exceed the room's
// capacity.
func (s *ReservationService) AddAttendees(ctx context.Context, params AddAttendeesParams) (meeting Meeting, err error) {
	if err = s.ready(); err != nil {
		return
	}

	ctx, span := startSpan(ctx, "ReservationService", "AddAttendees",
		attribute.String("meeting.id", params.MeetingID),
		attribute.Int("requested", len(params.UserIDs)),
	)
	logger := s.loggerWith(ctx, "AddAttendees", "meeting_id", params.MeetingID)
	added := 0
	defer func() {
		endSpan(span, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to add attendees", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("added", added, "attendee_count", len(meeting.Attendees)).InfoContext(ctx, "attendees added")
	}()

	if vErr := validateInput(params); vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		rec, err := tx.GetMeeting(ctx, params.MeetingID)
		if err != nil {
			return mapRepoError(err, "meeting "+params.MeetingID)
		}
		if _, err := scheduler.Transition(scheduler.Status(rec.Status), scheduler.EventAddAttendees); err != nil {
			return lifecycleError(err)
		}
		room, err := tx.GetRoom(ctx, rec.RoomID)
		if err != nil {
			return mapRepoError(err, "room "+rec.RoomID)
		}
		existing, err := tx.ListAttendees(ctx, rec.ID)
		if err != nil {
			return err
		}

		skip := append(lo.Map(existing, func(a persistence.Attendee, _ int) string { return a.UserID }), rec.OrganizerID)
		candidates := lo.Without(lo.Compact(lo.Uniq(params.UserIDs)), skip...)
		known, err := tx.FindUsers(ctx, candidates)
		if err != nil {
			return err
		}
		knownIDs := lo.SliceToMap(known, func(u persistence.User) (string, struct{}) { return u.ID, struct{}{} })
		newIDs := lo.Filter(candidates, func(id string, _ int) bool { _, ok := knownIDs[id]; return ok })

		if scheduler.CapacityExceeded(room.Capacity, len(existing), len(newIDs)) {
			return &ConflictError{
				Reason: fmt.Sprintf("room capacity exceeded: available %d", max(room.Capacity-len(existing), 0)),
			}
		}

		addedAt := s.now()
		rows := lo.Map(newIDs, func(id string, _ int) persistence.Attendee {
			return persistence.Attendee{
				MeetingID: rec.ID,
				UserID:    id,
				Role:      string(RoleParticipant),
				Attended:  false,
				AddedAt:   addedAt,
			}
		})
		if err := tx.InsertAttendees(ctx, rows); err != nil {
			return mapRepoError(err, "attendees of meeting "+rec.ID)
		}

		attendees, err := tx.ListAttendees(ctx, rec.ID)
		if err != nil {
			return err
		}
		added = len(rows)
		meeting = meetingFromRecord(rec, attendees)
		return nil
	})
	if err != nil {
		meeting = Meeting{}
	}
	return
}

// guardSchedule checks a prospective schedule for m. When the room changes the
// new room must exist and hold the current attendees.
func (s *ReservationService) guardSchedule(ctx context.Context, tx persistence.Tx, m Meeting, roomChanged bool) error {
	if !m.Interval().Valid() {
		vErr := &ValidationError{}
		vErr.add("end", "end must be after start")
		return vErr
	}
	if roomChanged {
		room, err := tx.GetRoom(ctx, m.RoomID)
		if err != nil {
			return mapRepoError(err, "room "+m.RoomID)
		}
		attendees, err := tx.ListAttendees(ctx, m.ID)
		if err != nil {
			return err
		}
		if scheduler.CapacityExceeded(room.Capacity, len(attendees), 0) {
			return &ConflictError{
				Reason: fmt.Sprintf("room %s holds %d people but the meeting has %d attendees", room.ID, room.Capacity, len(attendees)),
			}
		}
	}
	return ensureNoOverlap(ctx, tx, m)
}

// ensureNoOverlap reports a ConflictError when another non-cancelled meeting
// shares m's room or organizer during m's interval.
func ensureNoOverlap(ctx context.Context, tx persistence.Tx, m Meeting) error {
	window := m.Interval()
	byRoom, err := tx.FindMeetings(ctx, persistence.MeetingFilter{
		RoomID: m.RoomID, From: window.Start, Until: window.End, ExcludeID: m.ID, SkipCancelled: true,
	})
	if err != nil {
		return err
	}
	byOrganizer, err := tx.FindMeetings(ctx, persistence.MeetingFilter{
		OrganizerID: m.OrganizerID, From: window.Start, Until: window.End, ExcludeID: m.ID, SkipCancelled: true,
	})
	if err != nil {
		return err
	}

	existing := lo.UniqBy(
		lo.Map(append(byRoom, byOrganizer...), func(rec persistence.Meeting, _ int) scheduler.Booking { return bookingFromRecord(rec) }),
		func(b scheduler.Booking) string { return b.ID },
	)
	candidate := scheduler.Booking{ID: m.ID, RoomID: m.RoomID, OrganizerID: m.OrganizerID, Status: m.Status, Interval: window}

	switch {
	case scheduler.RoomHasConflict(existing, m.RoomID, window, m.ID):
		return &ConflictError{
			Reason:    fmt.Sprintf("room %s is already booked for an overlapping time", m.RoomID),
			Conflicts: scheduler.DetectConflicts(existing, candidate),
		}
	case scheduler.OrganizerHasConflict(existing, m.OrganizerID, window, m.ID):
		return &ConflictError{
			Reason:    fmt.Sprintf("organizer %s already has a meeting at an overlapping time", m.OrganizerID),
			Conflicts: scheduler.DetectConflicts(existing, candidate),
		}
	}
	return nil
}

func loadMeeting(ctx context.Context, tx persistence.Tx, id string) (Meeting, error) {
	rec, err := tx.GetMeeting(ctx, id)
	if err != nil {
		return Meeting{}, mapRepoError(err, "meeting "+id)
	}
	attendees, err := tx.ListAttendees(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	return meetingFromRecord(rec, attendees), nil
}

func lifecycleError(err error) error {
	if errors.Is(err, scheduler.ErrTerminal) {
		return fmt.Errorf("%w: %w", ErrAlreadyTerminal, err)
	}
	return err
}
