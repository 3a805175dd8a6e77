package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/meeting-reservations/internal/application"
	"github.com/example/meeting-reservations/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks over a shared store.
type ServiceFactory struct {
	Store       persistence.Store
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory over store with defaults.
func NewServiceFactory(store persistence.Store, opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Store:       store,
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Logger:      quietLogger(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger overrides the logger handed to services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Reservations builds a reservation service.
func (f *ServiceFactory) Reservations() *application.ReservationService {
	return application.NewReservationServiceWithLogger(f.Store, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// Availability builds an availability service.
func (f *ServiceFactory) Availability() *application.AvailabilityService {
	return application.NewAvailabilityServiceWithLogger(f.Store, f.Logger)
}

// Rooms builds a room service.
func (f *ServiceFactory) Rooms() *application.RoomService {
	return application.NewRoomServiceWithLogger(f.Store, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// Users builds a user service.
func (f *ServiceFactory) Users() *application.UserService {
	return application.NewUserServiceWithLogger(f.Store, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}
