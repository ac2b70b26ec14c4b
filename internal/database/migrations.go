package database

import (
	"github.com/ridepool/ridepool-backend/internal/models"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the schema for all ledger entities. The
// user_rides join table behind the many-to-many ride participation is created
// by the Ride migration.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.Booking{},
	); err != nil {
		return err
	}

	// The status check mirrors the only transition the ledger performs,
	// pending to cancelled.
	if db.Migrator().HasTable(&models.Booking{}) {
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		if err := db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'cancelled'))`).Error; err != nil {
			return err
		}
	}

	return nil
}
