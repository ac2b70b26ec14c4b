package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ridepool/ridepool-backend/internal/ledger"
	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures dispatched events so tests can assert on
// fire-and-forget notifications.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) UserRegistered(*models.User) { n.record("user_registered") }

func (n *recordingNotifier) BookingCreated(*models.Booking) { n.record("booking_created") }

func (n *recordingNotifier) BookingCancelled(*models.Booking) { n.record("booking_cancelled") }

func (n *recordingNotifier) RideJoined(*models.Ride, *models.User) { n.record("ride_joined") }

var testNow = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, cfg ledger.Config) (*ledger.Ledger, *storage.MemoryStore, *recordingNotifier) {
	t.Helper()
	store := storage.NewMemoryStore()
	store.SetClock(func() time.Time { return testNow })
	notifier := &recordingNotifier{}
	l := ledger.New(store, notifier, cfg, ledger.WithClock(func() time.Time { return testNow }))
	return l, store, notifier
}

func registerUser(t *testing.T, l *ledger.Ledger, name, email string) *models.User {
	t.Helper()
	user, err := l.RegisterUser(context.Background(), ledger.RegisterInput{
		Name:            name,
		Email:           email,
		Contact:         "0712345678",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)
	return user
}

func validBooking() ledger.BookingInput {
	return ledger.BookingInput{
		Name:        "John Doe",
		Location:    "Central Station",
		Destination: "Airport Terminal",
		TravelDate:  testNow.AddDate(0, 0, 7),
		TravelTime:  "10:00",
		Passengers:  2,
		Contact:     "9876543210",
	}
}

func TestRegisterUser(t *testing.T) {
	l, _, notifier := newTestLedger(t, ledger.Config{})

	user := registerUser(t, l, "Test User", "test@example.com")
	assert.NotZero(t, user.ID)
	assert.Equal(t, "test@example.com", user.Email)

	// Credential is never stored in plain text.
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password123", user.PasswordHash)

	assert.Eventually(t, func() bool { return notifier.count("user_registered") == 1 },
		time.Second, 10*time.Millisecond)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{})
	registerUser(t, l, "First", "test@example.com")

	// Case-insensitive duplicate is rejected and nothing is created.
	_, err := l.RegisterUser(context.Background(), ledger.RegisterInput{
		Name:            "Second",
		Email:           "TEST@Example.COM",
		Contact:         "0712345678",
		Password:        "password456",
		ConfirmPassword: "password456",
	})
	require.ErrorIs(t, err, ledger.ErrConflict)

	_, err = l.Authenticate(context.Background(), "test@example.com", "password456")
	assert.ErrorIs(t, err, ledger.ErrInvalidCredentials)
}

func TestRegisterUserValidation(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{})

	tests := []struct {
		name  string
		in    ledger.RegisterInput
		field string
	}{
		{
			name:  "short name",
			in:    ledger.RegisterInput{Name: "A", Email: "a@example.com", Contact: "0712345678", Password: "password", ConfirmPassword: "password"},
			field: "name",
		},
		{
			name:  "bad email",
			in:    ledger.RegisterInput{Name: "Alice", Email: "not-an-email", Contact: "0712345678", Password: "password", ConfirmPassword: "password"},
			field: "email",
		},
		{
			name:  "short contact",
			in:    ledger.RegisterInput{Name: "Alice", Email: "a@example.com", Contact: "12345", Password: "password", ConfirmPassword: "password"},
			field: "contact",
		},
		{
			name:  "short password",
			in:    ledger.RegisterInput{Name: "Alice", Email: "a@example.com", Contact: "0712345678", Password: "pw", ConfirmPassword: "pw"},
			field: "password",
		},
		{
			name:  "mismatched confirmation",
			in:    ledger.RegisterInput{Name: "Alice", Email: "a@example.com", Contact: "0712345678", Password: "password1", ConfirmPassword: "password2"},
			field: "confirmPassword",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.RegisterUser(context.Background(), tt.in)
			verr, ok := ledger.AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{})
	registerUser(t, l, "Test User", "test@example.com")

	user, err := l.Authenticate(context.Background(), "Test@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)

	_, err = l.Authenticate(context.Background(), "test@example.com", "wrong-password")
	assert.ErrorIs(t, err, ledger.ErrInvalidCredentials)

	_, err = l.Authenticate(context.Background(), "unknown@example.com", "password123")
	assert.ErrorIs(t, err, ledger.ErrInvalidCredentials)
}

func TestCreateRideValidation(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{})

	_, err := l.CreateRide(context.Background(), nil, ledger.RideInput{
		Name:        "",
		Origin:      " ",
		Destination: "Airport Terminal",
		Contact:     "123",
	})
	verr, ok := ledger.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "origin")
	assert.Contains(t, verr.Fields, "contact")
	assert.NotContains(t, verr.Fields, "destination")
}

func TestSearchRidesOrderingAndFilters(t *testing.T) {
	l, store, _ := newTestLedger(t, ledger.Config{})
	ctx := context.Background()

	times := []time.Time{
		testNow.Add(-3 * time.Hour),
		testNow.Add(-1 * time.Hour),
		testNow.Add(-1 * time.Hour), // same instant, id breaks the tie
		testNow.Add(-2 * time.Hour),
	}
	i := 0
	store.SetClock(func() time.Time { ts := times[i]; i++; return ts })

	mk := func(origin, destination string) *models.Ride {
		ride, err := l.CreateRide(ctx, nil, ledger.RideInput{
			Name:        "Commuter",
			Origin:      origin,
			Destination: destination,
			Contact:     "0712345678",
		})
		require.NoError(t, err)
		return ride
	}
	r1 := mk("Central Station", "Airport Terminal")
	r2 := mk("North Station", "Airport Terminal")
	r3 := mk("South Station", "Bus Depot")
	r4 := mk("Central Station", "Metro Station")

	all, err := l.SearchRides(ctx, "", "")
	require.NoError(t, err)
	ids := make([]uint, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	// Newest first, identifier descending on equal timestamps.
	assert.Equal(t, []uint{r3.ID, r2.ID, r4.ID, r1.ID}, ids)

	// Case-insensitive substring match on destination.
	matches, err := l.SearchRides(ctx, "airport", "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, r2.ID, matches[0].ID)
	assert.Equal(t, r1.ID, matches[1].ID)

	// Combined origin filter.
	matches, err = l.SearchRides(ctx, "airport", "central")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, r1.ID, matches[0].ID)
}

func TestJoinRideIdempotent(t *testing.T) {
	l, store, notifier := newTestLedger(t, ledger.Config{})
	ctx := context.Background()

	user := registerUser(t, l, "Passenger", "passenger@example.com")
	ride, err := l.CreateRide(ctx, nil, ledger.RideInput{
		Name:        "Commuter",
		Origin:      "Central Station",
		Destination: "Airport Terminal",
		Contact:     "0712345678",
	})
	require.NoError(t, err)

	_, err = l.JoinRide(ctx, ride.ID, user.ID)
	require.NoError(t, err)

	// Second join is a no-op success, not an error.
	_, err = l.JoinRide(ctx, ride.ID, user.ID)
	require.NoError(t, err)

	got, err := store.RideByID(ctx, ride.ID)
	require.NoError(t, err)
	require.Len(t, got.Passengers, 1)
	assert.Equal(t, user.ID, got.Passengers[0].ID)

	// Only the first join notifies the driver.
	assert.Eventually(t, func() bool { return notifier.count("ride_joined") >= 1 },
		time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, notifier.count("ride_joined"))
}

func TestJoinRideNotFound(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{})
	user := registerUser(t, l, "Passenger", "passenger@example.com")

	_, err := l.JoinRide(context.Background(), 999, user.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestGroupRidesByDestination(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{})
	ctx := context.Background()

	mk := func(origin, destination string) {
		_, err := l.CreateRide(ctx, nil, ledger.RideInput{
			Name:        "Commuter",
			Origin:      origin,
			Destination: destination,
			Contact:     "0712345678",
		})
		require.NoError(t, err)
	}
	// Two anonymous posts to the same destination plus a singleton.
	mk("Central Station", "Airport Terminal")
	mk("North Station", "Airport Terminal")
	mk("South Station", "Bus Depot")

	all, err := l.GroupRidesByDestination(ctx, ledger.GroupAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Len(t, all["Airport Terminal"], 2)
	assert.Len(t, all["Bus Depot"], 1)

	// Entries keep creation order within a group.
	assert.Equal(t, "Central Station", all["Airport Terminal"][0].Origin)
	assert.Equal(t, "North Station", all["Airport Terminal"][1].Origin)

	multi, err := l.GroupRidesByDestination(ctx, ledger.GroupMultiOnly)
	require.NoError(t, err)
	require.Len(t, multi, 1)
	assert.Len(t, multi["Airport Terminal"], 2)
	for dest, entries := range multi {
		assert.GreaterOrEqual(t, len(entries), 2, "group %q below threshold", dest)
	}
}

func TestCreateBooking(t *testing.T) {
	l, _, notifier := newTestLedger(t, ledger.Config{})
	user := registerUser(t, l, "Test User", "test@example.com")

	booking, err := l.CreateBooking(context.Background(), &user.ID, validBooking())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.GreaterOrEqual(t, booking.Passengers, 1)
	assert.LessOrEqual(t, booking.Passengers, 8)
	require.NotNil(t, booking.UserID)
	assert.Equal(t, user.ID, *booking.UserID)

	assert.Eventually(t, func() bool { return notifier.count("booking_created") == 1 },
		time.Second, 10*time.Millisecond)
}

func TestCreateBookingValidation(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{StrictLocations: true})

	tests := []struct {
		name   string
		mutate func(*ledger.BookingInput)
		field  string
	}{
		{"short name", func(in *ledger.BookingInput) { in.Name = "J" }, "name"},
		{"empty location", func(in *ledger.BookingInput) { in.Location = "" }, "location"},
		{"unlisted station", func(in *ledger.BookingInput) { in.Location = "Nowhere" }, "location"},
		{"short destination", func(in *ledger.BookingInput) { in.Destination = "X" }, "destination"},
		{"zero travel date", func(in *ledger.BookingInput) { in.TravelDate = time.Time{} }, "travelDate"},
		{"bad travel time", func(in *ledger.BookingInput) { in.TravelTime = "25:99" }, "travelTime"},
		{"zero passengers", func(in *ledger.BookingInput) { in.Passengers = 0 }, "passengers"},
		{"nine passengers", func(in *ledger.BookingInput) { in.Passengers = 9 }, "passengers"},
		{"short contact", func(in *ledger.BookingInput) { in.Contact = "123" }, "contact"},
		{"long contact", func(in *ledger.BookingInput) { in.Contact = "0123456789012345" }, "contact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validBooking()
			tt.mutate(&in)
			_, err := l.CreateBooking(context.Background(), nil, in)
			verr, ok := ledger.AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCreateBookingAggregatesFieldErrors(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{})

	_, err := l.CreateBooking(context.Background(), nil, ledger.BookingInput{
		Name:       "",
		Location:   "",
		Passengers: 0,
		Contact:    "123",
	})
	verr, ok := ledger.AsValidationError(err)
	require.True(t, ok)
	for _, field := range []string{"name", "location", "destination", "travelDate", "travelTime", "passengers", "contact"} {
		assert.Contains(t, verr.Fields, field)
	}
}

func TestCreateBookingFreeTextLocations(t *testing.T) {
	l := ledger.New(storage.NewMemoryStore(), nil, ledger.Config{StrictLocations: false})

	in := validBooking()
	in.Location = "Corner of 5th and Main"
	booking, err := l.CreateBooking(context.Background(), nil, in)
	require.NoError(t, err)
	assert.Equal(t, "Corner of 5th and Main", booking.Location)
}

func TestCancelBookingWindow(t *testing.T) {
	tests := []struct {
		name       string
		travelDate time.Time
		travelTime string
		wantErr    error
	}{
		{"a week out", testNow.AddDate(0, 0, 7), "12:00", nil},
		{"just over two hours", testNow, "14:01", nil},
		{"exactly two hours", testNow, "14:00", ledger.ErrTooLate},
		{"one hour before travel", testNow, "13:00", ledger.ErrTooLate},
		{"already departed", testNow, "09:00", ledger.ErrTooLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, _ := newTestLedger(t, ledger.Config{})
			user := registerUser(t, l, "Test User", "test@example.com")

			in := validBooking()
			in.TravelDate = tt.travelDate
			in.TravelTime = tt.travelTime
			booking, err := l.CreateBooking(context.Background(), &user.ID, in)
			require.NoError(t, err)

			cancelled, err := l.CancelBooking(context.Background(), booking.ID, user.ID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
		})
	}
}

func TestCancelBookingIdempotent(t *testing.T) {
	l, store, notifier := newTestLedger(t, ledger.Config{})
	ctx := context.Background()
	user := registerUser(t, l, "Test User", "test@example.com")

	booking, err := l.CreateBooking(ctx, &user.ID, validBooking())
	require.NoError(t, err)

	_, err = l.CancelBooking(ctx, booking.ID, user.ID)
	require.NoError(t, err)

	// Re-cancelling is a no-op success and does not notify again.
	again, err := l.CancelBooking(ctx, booking.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, again.Status)

	got, err := store.BookingByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, got.Status)

	assert.Eventually(t, func() bool { return notifier.count("booking_cancelled") >= 1 },
		time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, notifier.count("booking_cancelled"))
}

func TestCancelBookingPermissions(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{AdminUserID: 1})
	ctx := context.Background()

	admin := registerUser(t, l, "Admin", "admin@example.com")
	require.Equal(t, uint(1), admin.ID)
	owner := registerUser(t, l, "Owner", "owner@example.com")
	other := registerUser(t, l, "Other", "other@example.com")

	booking, err := l.CreateBooking(ctx, &owner.ID, validBooking())
	require.NoError(t, err)

	_, err = l.CancelBooking(ctx, booking.ID, other.ID)
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)

	_, err = l.CancelBooking(ctx, 999, owner.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// Anonymous bookings can only be touched by the admin.
	anon, err := l.CreateBooking(ctx, nil, validBooking())
	require.NoError(t, err)
	_, err = l.CancelBooking(ctx, anon.ID, other.ID)
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)
	_, err = l.CancelBooking(ctx, anon.ID, admin.ID)
	assert.NoError(t, err)
}

func TestViewBookingVisibility(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{AdminUserID: 1})
	ctx := context.Background()

	admin := registerUser(t, l, "Admin", "admin@example.com")
	owner := registerUser(t, l, "Owner", "owner@example.com")
	other := registerUser(t, l, "Other", "other@example.com")

	booking, err := l.CreateBooking(ctx, &owner.ID, validBooking())
	require.NoError(t, err)

	got, err := l.ViewBooking(ctx, booking.ID, &owner.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = l.ViewBooking(ctx, booking.ID, &admin.ID)
	assert.NoError(t, err)

	_, err = l.ViewBooking(ctx, booking.ID, &other.ID)
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)

	_, err = l.ViewBooking(ctx, booking.ID, nil)
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)

	// Ownerless bookings are admin-only.
	anon, err := l.CreateBooking(ctx, nil, validBooking())
	require.NoError(t, err)
	_, err = l.ViewBooking(ctx, anon.ID, &other.ID)
	assert.ErrorIs(t, err, ledger.ErrPermissionDenied)
	_, err = l.ViewBooking(ctx, anon.ID, &admin.ID)
	assert.NoError(t, err)

	_, err = l.ViewBooking(ctx, 999, &owner.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestUserBookingsNewestFirst(t *testing.T) {
	l, store, _ := newTestLedger(t, ledger.Config{})
	ctx := context.Background()
	user := registerUser(t, l, "Test User", "test@example.com")

	times := []time.Time{testNow.Add(-2 * time.Hour), testNow.Add(-1 * time.Hour)}
	i := 0
	store.SetClock(func() time.Time { ts := times[i]; i++; return ts })

	first, err := l.CreateBooking(ctx, &user.ID, validBooking())
	require.NoError(t, err)
	second, err := l.CreateBooking(ctx, &user.ID, validBooking())
	require.NoError(t, err)

	bookings, err := l.UserBookings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, second.ID, bookings[0].ID)
	assert.Equal(t, first.ID, bookings[1].ID)
}

func TestUserDashboard(t *testing.T) {
	l, _, _ := newTestLedger(t, ledger.Config{})
	ctx := context.Background()

	driver := registerUser(t, l, "Driver", "driver@example.com")
	passenger := registerUser(t, l, "Passenger", "passenger@example.com")

	ride, err := l.CreateRide(ctx, &driver.ID, ledger.RideInput{
		Name:        "Commuter",
		Origin:      "Central Station",
		Destination: "Airport Terminal",
		Contact:     "0712345678",
	})
	require.NoError(t, err)
	_, err = l.JoinRide(ctx, ride.ID, passenger.ID)
	require.NoError(t, err)
	_, err = l.CreateBooking(ctx, &passenger.ID, validBooking())
	require.NoError(t, err)

	dash, err := l.UserDashboard(ctx, passenger.ID)
	require.NoError(t, err)
	assert.Empty(t, dash.MyRides)
	require.Len(t, dash.JoinedRides, 1)
	assert.Equal(t, ride.ID, dash.JoinedRides[0].ID)
	assert.Len(t, dash.Bookings, 1)

	dash, err = l.UserDashboard(ctx, driver.ID)
	require.NoError(t, err)
	require.Len(t, dash.MyRides, 1)
	assert.Equal(t, ride.ID, dash.MyRides[0].ID)
	assert.Empty(t, dash.JoinedRides)
	assert.Empty(t, dash.Bookings)
}
