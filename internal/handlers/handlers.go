// Package handlers exposes the ledger over HTTP. Handlers are thin: they
// decode input, resolve the requesting principal, call the ledger and map
// its error kinds to status codes.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ridepool/ridepool-backend/internal/ledger"
)

// principal returns the authenticated user id from the gin context, or nil
// for anonymous requests.
func principal(c *gin.Context) *uint {
	v, ok := c.Get("userId")
	if !ok {
		return nil
	}
	id, ok := v.(uint)
	if !ok {
		return nil
	}
	return &id
}

// respondError maps ledger error kinds to HTTP responses.
func respondError(c *gin.Context, err error) {
	if verr, ok := ledger.AsValidationError(err); ok {
		c.JSON(422, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(404, gin.H{"error": "Not found"})
	case errors.Is(err, ledger.ErrPermissionDenied):
		c.JSON(403, gin.H{"error": "Permission denied"})
	case errors.Is(err, ledger.ErrTooLate):
		c.JSON(409, gin.H{"error": "Cannot cancel booking less than 2 hours before travel"})
	case errors.Is(err, ledger.ErrConflict):
		c.JSON(409, gin.H{"error": "Already exists"})
	case errors.Is(err, ledger.ErrInvalidCredentials):
		c.JSON(401, gin.H{"error": "Invalid credentials"})
	default:
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}

// Health reports service liveness.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	}
}
