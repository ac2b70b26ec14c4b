package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/ridepool/ridepool-backend/internal/models"
)

// RideInput carries a ride-posting request.
type RideInput struct {
	Name        string
	Origin      string
	Destination string
	Contact     string
}

// GroupMode selects how GroupRidesByDestination filters its result.
type GroupMode string

const (
	// GroupAll maps every distinct destination to its rides.
	GroupAll GroupMode = "all"
	// GroupMultiOnly keeps only destinations with more than one ride, the
	// companion-finding behavior.
	GroupMultiOnly GroupMode = "multi"
)

// GroupEntry is one ride summarized inside a destination group.
type GroupEntry struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateRide posts a new ride offer. driverID is nil for anonymous posts.
func (l *Ledger) CreateRide(ctx context.Context, driverID *uint, in RideInput) (*models.Ride, error) {
	verr := newValidationError()
	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "must not be empty")
	}
	if strings.TrimSpace(in.Origin) == "" {
		verr.add("origin", "must not be empty")
	}
	if strings.TrimSpace(in.Destination) == "" {
		verr.add("destination", "must not be empty")
	}
	if n := len(in.Contact); n < minContactLen || n > maxRideContactLen {
		verr.add("contact", "must be between 10 and 50 characters")
	}
	if !verr.ok() {
		return nil, verr
	}

	ride := &models.Ride{
		DriverID:    driverID,
		Name:        strings.TrimSpace(in.Name),
		Origin:      strings.TrimSpace(in.Origin),
		Destination: strings.TrimSpace(in.Destination),
		Contact:     in.Contact,
	}
	if err := l.store.CreateRide(ctx, ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// SearchRides returns rides matching the optional destination and origin
// filters, newest first. Matching is a case-insensitive substring test; an
// empty filter matches everything.
func (l *Ledger) SearchRides(ctx context.Context, destination, origin string) ([]models.Ride, error) {
	return l.store.SearchRides(ctx, strings.TrimSpace(destination), strings.TrimSpace(origin))
}

// JoinRide adds the user to the ride's participant set. It is idempotent:
// joining a ride twice leaves the set unchanged and succeeds. The driver is
// notified only on first join.
func (l *Ledger) JoinRide(ctx context.Context, rideID, userID uint) (*models.Ride, error) {
	ride, err := l.store.RideByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	added, err := l.store.AddParticipant(ctx, rideID, userID)
	if err != nil {
		return nil, err
	}
	if added {
		user, err := l.store.UserByID(ctx, userID)
		if err == nil {
			l.notify("ride_joined", func() { l.notifier.RideJoined(ride, user) })
		}
	}
	return ride, nil
}

// GroupRidesByDestination buckets all rides by exact destination string, each
// group in creation order. GroupMultiOnly drops destinations with fewer than
// two rides.
func (l *Ledger) GroupRidesByDestination(ctx context.Context, mode GroupMode) (map[string][]GroupEntry, error) {
	rides, err := l.store.ListRides(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]GroupEntry)
	for _, ride := range rides {
		groups[ride.Destination] = append(groups[ride.Destination], GroupEntry{
			ID:          ride.ID,
			Name:        ride.Name,
			Origin:      ride.Origin,
			Destination: ride.Destination,
			CreatedAt:   ride.CreatedAt,
		})
	}

	if mode == GroupMultiOnly {
		for dest, entries := range groups {
			if len(entries) < 2 {
				delete(groups, dest)
			}
		}
	}
	return groups, nil
}

// Dashboard summarizes a user's activity: rides they drive, rides they
// joined, and their bookings newest first.
type Dashboard struct {
	MyRides     []models.Ride    `json:"myRides"`
	JoinedRides []models.Ride    `json:"joinedRides"`
	Bookings    []models.Booking `json:"bookings"`
}

// UserDashboard gathers the dashboard for one user.
func (l *Ledger) UserDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	myRides, err := l.store.RidesByDriver(ctx, userID)
	if err != nil {
		return nil, err
	}
	joined, err := l.store.RidesJoinedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	bookings, err := l.store.BookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{MyRides: myRides, JoinedRides: joined, Bookings: bookings}, nil
}
