package models

import (
	"gorm.io/gorm"
)

// Ride is an offer to travel posted by a driver. DriverID is nullable because
// rides may be posted anonymously.
type Ride struct {
	gorm.Model
	DriverID    *uint  `gorm:"column:driver_id" json:"driverId"`
	Driver      *User  `json:"driver,omitempty"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Origin      string `gorm:"column:origin;not null" json:"origin"`
	Destination string `gorm:"column:destination;not null" json:"destination"`
	Contact     string `gorm:"column:contact;not null" json:"contact"`

	Passengers []User `gorm:"many2many:user_rides;" json:"passengers,omitempty"`
}

func (Ride) TableName() string {
	return "rides"
}
