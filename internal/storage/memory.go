package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ridepool/ridepool-backend/internal/ledger"
	"github.com/ridepool/ridepool-backend/internal/models"
)

// MemoryStore implements ledger.Store in process memory. It backs the
// development mode (no DB_HOST configured) and the ledger tests. All methods
// are safe for concurrent use; records are copied on the way in and out.
type MemoryStore struct {
	mu sync.Mutex

	users    map[uint]*models.User
	rides    map[uint]*models.Ride
	bookings map[uint]*models.Booking
	// participants maps ride id to the ordered set of joined user ids.
	participants map[uint][]uint

	nextUserID    uint
	nextRideID    uint
	nextBookingID uint

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uint]*models.User),
		rides:        make(map[uint]*models.Ride),
		bookings:     make(map[uint]*models.Booking),
		participants: make(map[uint][]uint),
		now:          time.Now,
	}
}

// SetClock overrides the timestamp source, used by tests that need
// deterministic creation times.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ledger.ErrConflict
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemoryStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ledger.ErrNotFound
}

func (s *MemoryStore) UserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *MemoryStore) CreateRide(_ context.Context, ride *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRideID++
	ride.ID = s.nextRideID
	ride.CreatedAt = s.now()
	cp := *ride
	s.rides[ride.ID] = &cp
	return nil
}

func (s *MemoryStore) RideByID(_ context.Context, id uint) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ride, ok := s.rides[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *ride
	for _, userID := range s.participants[id] {
		if user, ok := s.users[userID]; ok {
			cp.Passengers = append(cp.Passengers, *user)
		}
	}
	return &cp, nil
}

func (s *MemoryStore) SearchRides(_ context.Context, destination, origin string) ([]models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rides []models.Ride
	for _, ride := range s.rides {
		if destination != "" && !strings.Contains(strings.ToLower(ride.Destination), strings.ToLower(destination)) {
			continue
		}
		if origin != "" && !strings.Contains(strings.ToLower(ride.Origin), strings.ToLower(origin)) {
			continue
		}
		rides = append(rides, *ride)
	}
	sort.Slice(rides, func(i, j int) bool {
		if !rides[i].CreatedAt.Equal(rides[j].CreatedAt) {
			return rides[i].CreatedAt.After(rides[j].CreatedAt)
		}
		return rides[i].ID > rides[j].ID
	})
	return rides, nil
}

func (s *MemoryStore) ListRides(_ context.Context) ([]models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rides := make([]models.Ride, 0, len(s.rides))
	for _, ride := range s.rides {
		rides = append(rides, *ride)
	}
	sort.Slice(rides, func(i, j int) bool { return rides[i].ID < rides[j].ID })
	return rides, nil
}

func (s *MemoryStore) AddParticipant(_ context.Context, rideID, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rides[rideID]; !ok {
		return false, ledger.ErrNotFound
	}
	for _, id := range s.participants[rideID] {
		if id == userID {
			return false, nil
		}
	}
	s.participants[rideID] = append(s.participants[rideID], userID)
	return true, nil
}

func (s *MemoryStore) RidesByDriver(_ context.Context, driverID uint) ([]models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rides []models.Ride
	for _, ride := range s.rides {
		if ride.DriverID != nil && *ride.DriverID == driverID {
			rides = append(rides, *ride)
		}
	}
	sortRidesNewestFirst(rides)
	return rides, nil
}

func (s *MemoryStore) RidesJoinedBy(_ context.Context, userID uint) ([]models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rides []models.Ride
	for rideID, userIDs := range s.participants {
		for _, id := range userIDs {
			if id == userID {
				rides = append(rides, *s.rides[rideID])
				break
			}
		}
	}
	sortRidesNewestFirst(rides)
	return rides, nil
}

func (s *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBookingID++
	booking.ID = s.nextBookingID
	booking.CreatedAt = s.now()
	cp := *booking
	s.bookings[booking.ID] = &cp
	return nil
}

func (s *MemoryStore) BookingByID(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *booking
	return &cp, nil
}

func (s *MemoryStore) BookingsByUser(_ context.Context, userID uint) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []models.Booking
	for _, booking := range s.bookings {
		if booking.UserID != nil && *booking.UserID == userID {
			bookings = append(bookings, *booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].ID > bookings[j].ID
	})
	return bookings, nil
}

func (s *MemoryStore) UpdateBookingStatus(_ context.Context, id uint, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return ledger.ErrNotFound
	}
	booking.Status = status
	booking.UpdatedAt = s.now()
	return nil
}

func sortRidesNewestFirst(rides []models.Ride) {
	sort.Slice(rides, func(i, j int) bool {
		if !rides[i].CreatedAt.Equal(rides[j].CreatedAt) {
			return rides[i].CreatedAt.After(rides[j].CreatedAt)
		}
		return rides[i].ID > rides[j].ID
	})
}
