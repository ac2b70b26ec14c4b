package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridepool/ridepool-backend/internal/ledger"
)

type BookingInput struct {
	Name        string `json:"name" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	TravelDate  string `json:"travelDate" binding:"required"`
	TravelTime  string `json:"travelTime" binding:"required"`
	Passengers  int    `json:"passengers" binding:"required"`
	Contact     string `json:"contact" binding:"required"`
}

// CreateBooking submits a new booking, anonymously or as the authenticated
// user.
func CreateBooking(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		travelDate, err := time.Parse("2006-01-02", input.TravelDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "travelDate must be in YYYY-MM-DD format"})
			return
		}

		booking, err := l.CreateBooking(c.Request.Context(), principal(c), ledger.BookingInput{
			Name:        input.Name,
			Location:    input.Location,
			Destination: input.Destination,
			TravelDate:  travelDate,
			TravelTime:  input.TravelTime,
			Passengers:  input.Passengers,
			Contact:     input.Contact,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, gin.H{
			"message":   "Your ride has been booked successfully!",
			"bookingId": booking.ID,
			"booking":   booking,
		})
	}
}

// ViewBooking shows a booking to its owner or the admin.
func ViewBooking(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}

		booking, err := l.ViewBooking(c.Request.Context(), uint(bookingID), principal(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, booking)
	}
}

// CancelBooking cancels a pending booking if travel is still more than two
// hours away.
func CancelBooking(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking id"})
			return
		}
		userID := c.GetUint("userId")

		booking, err := l.CancelBooking(c.Request.Context(), uint(bookingID), userID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Booking cancelled successfully", "booking": booking})
	}
}

// MyBookings lists the authenticated user's bookings, newest first.
func MyBookings(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		bookings, err := l.UserBookings(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, bookings)
	}
}
