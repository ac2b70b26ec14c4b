package services

import (
	"os"

	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/pkg/utils"
	"github.com/rs/zerolog"
)

// Notifier fans ledger events out to email and the websocket hub. Every
// delivery is best-effort: failures are logged and swallowed so they never
// reach the operation that produced the event.
type Notifier struct {
	mailer     *utils.Mailer
	hub        *Hub
	adminEmail string
	log        zerolog.Logger
}

func NewNotifier(mailer *utils.Mailer, hub *Hub, log zerolog.Logger) *Notifier {
	return &Notifier{
		mailer:     mailer,
		hub:        hub,
		adminEmail: os.Getenv("ADMIN_EMAIL"),
		log:        log,
	}
}

func (n *Notifier) UserRegistered(user *models.User) {
	if err := n.mailer.SendWelcome(user); err != nil {
		n.log.Warn().Err(err).Uint("userId", user.ID).Msg("failed to send welcome email")
	}
}

func (n *Notifier) BookingCreated(booking *models.Booking) {
	if err := n.mailer.SendBookingConfirmation(booking); err != nil {
		n.log.Warn().Err(err).Uint("bookingId", booking.ID).Msg("failed to send booking confirmation")
	}
	if n.adminEmail != "" {
		if err := n.mailer.SendAdminBookingNotification(n.adminEmail, booking); err != nil {
			n.log.Warn().Err(err).Uint("bookingId", booking.ID).Msg("failed to send admin notification")
		}
	}
	if n.hub != nil {
		n.hub.BroadcastEvent(EventBookingCreated, booking)
	}
}

func (n *Notifier) BookingCancelled(booking *models.Booking) {
	if err := n.mailer.SendBookingCancellation(booking); err != nil {
		n.log.Warn().Err(err).Uint("bookingId", booking.ID).Msg("failed to send cancellation email")
	}
	if n.hub != nil {
		n.hub.BroadcastEvent(EventBookingCancelled, booking)
	}
}

func (n *Notifier) RideJoined(ride *models.Ride, user *models.User) {
	// Anonymous rides have no driver to email.
	if ride.Driver != nil {
		if err := n.mailer.SendRideJoinNotification(ride.Driver.Email, ride, user); err != nil {
			n.log.Warn().Err(err).Uint("rideId", ride.ID).Msg("failed to send ride join email")
		}
	}
	if n.hub != nil {
		n.hub.BroadcastEvent(EventRideJoined, map[string]interface{}{
			"rideId":      ride.ID,
			"destination": ride.Destination,
			"userId":      user.ID,
		})
	}
}
