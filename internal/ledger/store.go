package ledger

import (
	"context"

	"github.com/ridepool/ridepool-backend/internal/models"
)

// Store is the persistence port for the ledger. Implementations must return
// ErrNotFound for unknown ids and ErrConflict for uniqueness violations; each
// mutation is a single atomic transaction.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)

	CreateRide(ctx context.Context, ride *models.Ride) error
	RideByID(ctx context.Context, id uint) (*models.Ride, error)
	// SearchRides filters by case-insensitive substring on destination and
	// origin (empty filter matches everything), ordered by creation time
	// descending with id descending as tiebreak.
	SearchRides(ctx context.Context, destination, origin string) ([]models.Ride, error)
	// ListRides returns every ride in creation order (id ascending).
	ListRides(ctx context.Context) ([]models.Ride, error)
	// AddParticipant adds the user to the ride's participant set. It reports
	// whether the user was newly added; joining twice is not an error.
	AddParticipant(ctx context.Context, rideID, userID uint) (bool, error)
	RidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error)
	RidesJoinedBy(ctx context.Context, userID uint) ([]models.Ride, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	BookingByID(ctx context.Context, id uint) (*models.Booking, error)
	BookingsByUser(ctx context.Context, userID uint) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uint, status models.BookingStatus) error
}

// Notifier is the sink for ledger events. Calls are dispatched fire-and-forget
// by the ledger; implementations may block or fail without affecting the
// operation that produced the event.
type Notifier interface {
	UserRegistered(user *models.User)
	BookingCreated(booking *models.Booking)
	BookingCancelled(booking *models.Booking)
	RideJoined(ride *models.Ride, user *models.User)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) UserRegistered(*models.User) {}

func (NopNotifier) BookingCreated(*models.Booking) {}

func (NopNotifier) BookingCancelled(*models.Booking) {}

func (NopNotifier) RideJoined(*models.Ride, *models.User) {}
