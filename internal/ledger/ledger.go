// Package ledger owns the set of rides and bookings: it enforces the
// uniqueness and temporal constraints and answers the grouping and search
// queries. It is independent of the HTTP layer and the storage engine; both
// are injected.
package ledger

import (
	"time"

	"github.com/rs/zerolog"
)

// cancelCutoff is how close to departure a booking can still be cancelled.
// Exactly at the cutoff is too late.
const cancelCutoff = 2 * time.Hour

const (
	minContactLen        = 10
	maxRideContactLen    = 50
	maxBookingContactLen = 15
	minNameLen           = 2
	maxNameLen           = 150
	minPassengers        = 1
	maxPassengers        = 8
	minPasswordLen       = 6
)

// DefaultStations is the enumerated pickup list enforced when Config.Stations
// is left empty and strict locations are enabled.
var DefaultStations = []string{
	"Central Station",
	"North Station",
	"South Station",
	"East Station",
	"West Station",
	"Airport Terminal",
	"Bus Depot",
	"Metro Station",
}

// Config carries the ledger's policy knobs.
type Config struct {
	// AdminUserID identifies the administrator principal for booking
	// visibility. Zero disables the admin override.
	AdminUserID uint
	// StrictLocations restricts booking pickup locations to Stations.
	StrictLocations bool
	// Stations overrides DefaultStations when non-empty.
	Stations []string
}

func (c Config) stations() []string {
	if len(c.Stations) > 0 {
		return c.Stations
	}
	return DefaultStations
}

// Ledger is the authoritative collection of User, Ride and Booking records.
type Ledger struct {
	store    Store
	notifier Notifier
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source, used by tests of the cancellation
// window.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger used for notification failures.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New builds a Ledger. A nil notifier discards events.
func New(store Store, notifier Notifier, cfg Config, opts ...Option) *Ledger {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	l := &Ledger{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// notify dispatches a notification without letting its outcome reach the
// caller. Panics are swallowed and logged.
func (l *Ledger) notify(event string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				l.log.Error().Str("event", event).Interface("panic", r).Msg("notifier panicked")
			}
		}()
		fn()
	}()
}

func (l *Ledger) isAdmin(userID uint) bool {
	return l.cfg.AdminUserID != 0 && userID == l.cfg.AdminUserID
}
