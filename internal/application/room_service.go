package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// RoomService maintains the room catalog that meetings are booked against.
type RoomService struct {
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(store persistence.Store, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(store, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and adds a room to the catalog.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom", "name", params.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	params.Name = strings.TrimSpace(params.Name)
	params.Location = strings.TrimSpace(params.Location)
	params.Features = normalizeFeatures(params.Features)
	if params.Status == "" {
		params.Status = RoomAvailable
	}
	if vErr := validateInput(params); vErr.HasErrors() {
		err = vErr
		return
	}
	if s.store == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	createdAt := s.now()
	rec := persistence.Room{
		ID:        s.idGenerator(),
		Name:      params.Name,
		Location:  params.Location,
		Capacity:  params.Capacity,
		Status:    string(params.Status),
		Features:  params.Features,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		persisted, err := tx.InsertRoom(ctx, rec)
		if err != nil {
			return mapRepoError(err, "room "+rec.ID)
		}
		room = roomFromRecord(persisted)
		return nil
	})
	if err != nil {
		room = Room{}
	}
	return
}

// GetRoom returns a room by id.
func (s *RoomService) GetRoom(ctx context.Context, id string) (room Room, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	err = s.store.View(ctx, func(tx persistence.Tx) error {
		rec, err := tx.GetRoom(ctx, id)
		if err != nil {
			return mapRepoError(err, "room "+id)
		}
		room = roomFromRecord(rec)
		return nil
	})
	if err != nil {
		if ErrorKind(err) == "unexpected" {
			s.loggerWith(ctx, "GetRoom", "room_id", id).ErrorContext(ctx, "failed to get room", "error", err)
		}
		return Room{}, err
	}
	return room, nil
}

// ListRooms returns every room ordered by id.
func (s *RoomService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("room store not configured")
		return
	}

	err = s.store.View(ctx, func(tx persistence.Tx) error {
		recs, err := tx.ListRooms(ctx)
		if err != nil {
			return err
		}
		rooms = lo.Map(recs, func(rec persistence.Room, _ int) Room { return roomFromRecord(rec) })
		return nil
	})
	if err != nil {
		s.loggerWith(ctx, "ListRooms").ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	slices.SortFunc(rooms, func(a, b Room) int { return strings.Compare(a.ID, b.ID) })
	return rooms, nil
}

// normalizeFeatures trims, lowercases and de-duplicates feature names.
func normalizeFeatures(features []string) []string {
	cleaned := lo.Uniq(lo.Compact(lo.Map(features, func(f string, _ int) string {
		return strings.ToLower(strings.TrimSpace(f))
	})))
	slices.Sort(cleaned)
	return cleaned
}
