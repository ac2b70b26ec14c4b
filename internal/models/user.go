package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string `gorm:"column:name;not null" json:"name"`
	Email        string `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Contact      string `gorm:"column:contact;not null" json:"contact"`
	Password     string `gorm:"-" json:"-"` // transient, hashed before persistence
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`

	Rides       []Ride `gorm:"foreignKey:DriverID" json:"rides,omitempty"`
	JoinedRides []Ride `gorm:"many2many:user_rides;" json:"joinedRides,omitempty"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	u.Password = ""
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
