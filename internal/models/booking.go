package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// TravelTimeLayout is the wire format for a booking's travel time of day.
const TravelTimeLayout = "15:04"

// Booking is a reservation of travel on a date/time. UserID is nullable
// because bookings may be submitted without logging in.
type Booking struct {
	gorm.Model
	UserID      *uint         `gorm:"column:user_id" json:"userId"`
	User        *User         `json:"user,omitempty"`
	Name        string        `gorm:"column:name;not null" json:"name"`
	Location    string        `gorm:"column:location;not null" json:"location"`
	Destination string        `gorm:"column:destination;not null" json:"destination"`
	TravelDate  time.Time     `gorm:"column:travel_date;type:date;not null" json:"travelDate"`
	TravelTime  string        `gorm:"column:travel_time;not null" json:"travelTime"`
	Passengers  int           `gorm:"column:passengers;not null" json:"passengers"`
	Contact     string        `gorm:"column:contact;not null" json:"contact"`
	Status      BookingStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
}

func (Booking) TableName() string {
	return "bookings"
}

// TravelDeadline combines the travel date and time of day into the moment the
// trip departs, in the travel date's location.
func (b *Booking) TravelDeadline() (time.Time, error) {
	tod, err := time.Parse(TravelTimeLayout, b.TravelTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid travel time %q: %w", b.TravelTime, err)
	}
	d := b.TravelDate
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, d.Location()), nil
}
