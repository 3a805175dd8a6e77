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

// UserService registers and looks up the people who organize and attend meetings.
type UserService struct {
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService constructs a user service.
func NewUserService(store persistence.Store, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(store, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specific logger.
func NewUserServiceWithLogger(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// RegisterUser creates a user. Emails are stored lowercased and must be unique.
func (s *UserService) RegisterUser(ctx context.Context, params RegisterUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.DisplayName = strings.TrimSpace(params.DisplayName)

	logger := s.loggerWith(ctx, "RegisterUser", "email", params.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to register user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	if vErr := validateInput(params); vErr.HasErrors() {
		err = vErr
		return
	}
	if s.store == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	createdAt := s.now()
	rec := persistence.User{
		ID:          s.idGenerator(),
		Email:       params.Email,
		DisplayName: params.DisplayName,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	err = s.store.Atomic(ctx, func(tx persistence.Tx) error {
		persisted, err := tx.InsertUser(ctx, rec)
		if err != nil {
			return mapRepoError(err, "user with email "+rec.Email)
		}
		user = userFromRecord(persisted)
		return nil
	})
	if err != nil {
		user = User{}
	}
	return
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (user User, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	err = s.store.View(ctx, func(tx persistence.Tx) error {
		rec, err := tx.GetUser(ctx, id)
		if err != nil {
			return mapRepoError(err, "user "+id)
		}
		user = userFromRecord(rec)
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ListUsers returns every user ordered by email.
func (s *UserService) ListUsers(ctx context.Context) (users []User, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	err = s.store.View(ctx, func(tx persistence.Tx) error {
		recs, err := tx.ListUsers(ctx)
		if err != nil {
			return err
		}
		users = lo.Map(recs, func(rec persistence.User, _ int) User { return userFromRecord(rec) })
		return nil
	})
	if err != nil {
		s.loggerWith(ctx, "ListUsers").ErrorContext(ctx, "failed to list users", "error", err)
		return nil, err
	}
	slices.SortFunc(users, func(a, b User) int { return strings.Compare(a.Email, b.Email) })
	return users, nil
}
