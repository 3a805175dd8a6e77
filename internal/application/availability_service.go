package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/scheduler"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
)

// AvailabilityService answers "which rooms are free" questions. It only reads.
type AvailabilityService struct {
	store  persistence.Store
	logger *slog.Logger
}

// NewAvailabilityService constructs an availability service.
func NewAvailabilityService(store persistence.Store) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(store, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specific logger.
func NewAvailabilityServiceWithLogger(store persistence.Store, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{store: store, logger: defaultLogger(logger)}
}

// FindAvailableRooms returns rooms that seat at least MinCapacity people and
// have no non-cancelled meeting, other than ExcludeMeetingID, overlapping
// [Start, End). Rooms are ordered by id.
func (s *AvailabilityService) FindAvailableRooms(ctx context.Context, params FindAvailableRoomsParams) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("availability store not configured")
		return
	}

	ctx, span := startSpan(ctx, "AvailabilityService", "FindAvailableRooms",
		attribute.String("window.start", params.Start.String()),
		attribute.String("window.end", params.End.String()),
	)
	logger := serviceLogger(ctx, s.logger, "AvailabilityService", "FindAvailableRooms",
		"start", params.Start,
		"end", params.End,
	)
	defer func() {
		endSpan(span, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to find available rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "available rooms found")
	}()

	params.ExcludeMeetingID = strings.TrimSpace(params.ExcludeMeetingID)
	if vErr := validateInput(params); vErr.HasErrors() {
		err = vErr
		return
	}
	window := scheduler.Interval{Start: params.Start, End: params.End}

	err = s.store.View(ctx, func(tx persistence.Tx) error {
		catalog, err := tx.ListRooms(ctx)
		if err != nil {
			return err
		}
		busy, err := tx.FindMeetings(ctx, persistence.MeetingFilter{
			From:          window.Start,
			Until:         window.End,
			ExcludeID:     params.ExcludeMeetingID,
			SkipCancelled: true,
		})
		if err != nil {
			return err
		}
		bookings := lo.Map(busy, func(rec persistence.Meeting, _ int) scheduler.Booking { return bookingFromRecord(rec) })

		free := lo.Filter(catalog, func(room persistence.Room, _ int) bool {
			if params.MinCapacity != nil && room.Capacity < *params.MinCapacity {
				return false
			}
			return !scheduler.RoomHasConflict(bookings, room.ID, window, params.ExcludeMeetingID)
		})
		rooms = lo.Map(free, func(rec persistence.Room, _ int) Room { return roomFromRecord(rec) })
		return nil
	})
	if err != nil {
		rooms = nil
		return
	}

	slices.SortFunc(rooms, func(a, b Room) int { return strings.Compare(a.ID, b.ID) })
	return
}
