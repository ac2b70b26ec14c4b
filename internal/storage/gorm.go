// Package storage provides the persistence implementations behind the
// ledger's Store port: a postgres-backed store for normal operation and an
// in-memory store used as a development fallback and by tests.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/ridepool/ridepool-backend/internal/ledger"
	"github.com/ridepool/ridepool-backend/internal/models"
	"gorm.io/gorm"
)

// GormStore implements ledger.Store on top of gorm. The database must be
// opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ledger.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ledger.ErrConflict
	default:
		return err
	}
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	// Emails are normalized to lower case before storage; compare both sides
	// anyway so pre-normalization rows still match.
	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) CreateRide(ctx context.Context, ride *models.Ride) error {
	return translate(s.db.WithContext(ctx).Create(ride).Error)
}

func (s *GormStore) RideByID(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	err := s.db.WithContext(ctx).Preload("Driver").Preload("Passengers").First(&ride, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ride, nil
}

func (s *GormStore) SearchRides(ctx context.Context, destination, origin string) ([]models.Ride, error) {
	query := s.db.WithContext(ctx).Model(&models.Ride{})
	if destination != "" {
		query = query.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(destination)+"%")
	}
	if origin != "" {
		query = query.Where("LOWER(origin) LIKE ?", "%"+strings.ToLower(origin)+"%")
	}

	var rides []models.Ride
	if err := query.Order("created_at DESC, id DESC").Find(&rides).Error; err != nil {
		return nil, translate(err)
	}
	return rides, nil
}

func (s *GormStore) ListRides(ctx context.Context) ([]models.Ride, error) {
	var rides []models.Ride
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rides).Error; err != nil {
		return nil, translate(err)
	}
	return rides, nil
}

func (s *GormStore) AddParticipant(ctx context.Context, rideID, userID uint) (bool, error) {
	added := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("user_rides").
			Where("ride_id = ? AND user_id = ?", rideID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Exec(
			"INSERT INTO user_rides (user_id, ride_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			userID, rideID).Error; err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, translate(err)
}

func (s *GormStore) RidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC, id DESC").
		Find(&rides).Error
	if err != nil {
		return nil, translate(err)
	}
	return rides, nil
}

func (s *GormStore) RidesJoinedBy(ctx context.Context, userID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).
		Joins("JOIN user_rides ur ON ur.ride_id = rides.id").
		Where("ur.user_id = ?", userID).
		Order("rides.created_at DESC, rides.id DESC").
		Find(&rides).Error
	if err != nil {
		return nil, translate(err)
	}
	return rides, nil
}

func (s *GormStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return translate(s.db.WithContext(ctx).Create(booking).Error)
}

func (s *GormStore) BookingByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (s *GormStore) BookingsByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, translate(err)
	}
	return bookings, nil
}

func (s *GormStore) UpdateBookingStatus(ctx context.Context, id uint, status models.BookingStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}
