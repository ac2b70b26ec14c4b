package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/ridepool/ridepool-backend/internal/models"
)

// BookingInput carries a booking submission.
type BookingInput struct {
	Name        string
	Location    string
	Destination string
	TravelDate  time.Time
	TravelTime  string
	Passengers  int
	Contact     string
}

// CreateBooking validates and persists a new booking with status pending.
// userID is nil for anonymous submissions. Confirmation and admin
// notifications are dispatched fire-and-forget.
func (l *Ledger) CreateBooking(ctx context.Context, userID *uint, in BookingInput) (*models.Booking, error) {
	verr := newValidationError()
	if n := len(strings.TrimSpace(in.Name)); n < minNameLen || n > maxNameLen {
		verr.add("name", "must be between 2 and 150 characters")
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		verr.add("location", "must not be empty")
	} else if l.cfg.StrictLocations && !l.validStation(location) {
		verr.add("location", "must be one of the listed stations")
	}
	if n := len(strings.TrimSpace(in.Destination)); n < minNameLen || n > maxNameLen {
		verr.add("destination", "must be between 2 and 150 characters")
	}
	if in.TravelDate.IsZero() {
		verr.add("travelDate", "must be provided")
	}
	if _, err := time.Parse(models.TravelTimeLayout, in.TravelTime); err != nil {
		verr.add("travelTime", "must be a valid time in HH:MM format")
	}
	if in.Passengers < minPassengers || in.Passengers > maxPassengers {
		verr.add("passengers", "must be between 1 and 8")
	}
	if n := len(in.Contact); n < minContactLen || n > maxBookingContactLen {
		verr.add("contact", "must be between 10 and 15 characters")
	}
	if !verr.ok() {
		return nil, verr
	}

	booking := &models.Booking{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Location:    location,
		Destination: strings.TrimSpace(in.Destination),
		TravelDate:  in.TravelDate,
		TravelTime:  in.TravelTime,
		Passengers:  in.Passengers,
		Contact:     in.Contact,
		Status:      models.BookingStatusPending,
	}
	if err := l.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	l.notify("booking_created", func() { l.notifier.BookingCreated(booking) })
	return booking, nil
}

// CancelBooking transitions a booking from pending to cancelled. Only the
// owner or the admin may cancel; ownerless bookings are admin-only. The
// transition is allowed strictly more than two hours before departure.
// Cancelling an already-cancelled booking is a no-op success, so two racing
// cancel requests converge on the same outcome.
func (l *Ledger) CancelBooking(ctx context.Context, bookingID, requesterID uint) (*models.Booking, error) {
	booking, err := l.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !l.mayCancel(booking, requesterID) {
		return nil, ErrPermissionDenied
	}
	if booking.Status == models.BookingStatusCancelled {
		return booking, nil
	}

	deadline, err := booking.TravelDeadline()
	if err != nil {
		return nil, err
	}
	if deadline.Sub(l.now()) <= cancelCutoff {
		return nil, ErrTooLate
	}

	if err := l.store.UpdateBookingStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled

	l.notify("booking_cancelled", func() { l.notifier.BookingCancelled(booking) })
	return booking, nil
}

// ViewBooking returns a booking to its owner or the admin. Bookings without
// an owner are visible to the admin only.
func (l *Ledger) ViewBooking(ctx context.Context, bookingID uint, requesterID *uint) (*models.Booking, error) {
	booking, err := l.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if requesterID == nil {
		return nil, ErrPermissionDenied
	}
	if l.isAdmin(*requesterID) {
		return booking, nil
	}
	if booking.UserID == nil || *booking.UserID != *requesterID {
		return nil, ErrPermissionDenied
	}
	return booking, nil
}

// UserBookings lists a user's bookings, newest first.
func (l *Ledger) UserBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	return l.store.BookingsByUser(ctx, userID)
}

func (l *Ledger) mayCancel(booking *models.Booking, requesterID uint) bool {
	if l.isAdmin(requesterID) {
		return true
	}
	return booking.UserID != nil && *booking.UserID == requesterID
}

func (l *Ledger) validStation(location string) bool {
	for _, s := range l.cfg.stations() {
		if s == location {
			return true
		}
	}
	return false
}
