package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridepool/ridepool-backend/internal/ledger"
	"github.com/ridepool/ridepool-backend/internal/services"
)

type RideInput struct {
	Name        string `json:"name" binding:"required"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Contact     string `json:"contact" binding:"required"`
}

// CreateRide posts a new ride offer. The endpoint accepts anonymous posts, so
// it sits behind the optional auth middleware.
func CreateRide(l *ledger.Ledger, cache *services.GroupCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := l.CreateRide(c.Request.Context(), principal(c), ledger.RideInput{
			Name:        input.Name,
			Origin:      input.Origin,
			Destination: input.Destination,
			Contact:     input.Contact,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		cache.Invalidate(c.Request.Context())
		c.JSON(201, ride)
	}
}

// SearchRides lists rides matching optional destination and origin filters,
// newest first.
func SearchRides(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rides, err := l.SearchRides(c.Request.Context(), c.Query("destination"), c.Query("origin"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, rides)
	}
}

// JoinRide adds the authenticated user to a ride's participant set.
func JoinRide(l *ledger.Ledger, cache *services.GroupCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride id"})
			return
		}
		userID := c.GetUint("userId")

		ride, err := l.JoinRide(c.Request.Context(), uint(rideID), userID)
		if err != nil {
			respondError(c, err)
			return
		}

		cache.Invalidate(c.Request.Context())
		c.JSON(200, gin.H{"message": "Successfully joined the ride", "rideId": ride.ID})
	}
}

// GroupRides buckets rides by destination. mode=multi keeps only
// destinations with more than one ride; mode=all (the default) keeps every
// destination. Results are served from the redis cache when fresh.
func GroupRides(l *ledger.Ledger, cache *services.GroupCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := ledger.GroupAll
		if c.Query("mode") == string(ledger.GroupMultiOnly) {
			mode = ledger.GroupMultiOnly
		}

		if groups, ok := cache.Get(c.Request.Context(), mode); ok {
			c.JSON(200, groups)
			return
		}

		groups, err := l.GroupRidesByDestination(c.Request.Context(), mode)
		if err != nil {
			respondError(c, err)
			return
		}

		cache.Set(c.Request.Context(), mode, groups)
		c.JSON(200, groups)
	}
}

// Dashboard returns the authenticated user's rides, joined rides and
// bookings.
func Dashboard(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		dashboard, err := l.UserDashboard(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, dashboard)
	}
}
