package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ridepool/ridepool-backend/pkg/utils"
)

func tokenFromRequest(c *gin.Context) string {
	// First try the Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	// Fall back to a query parameter (for WebSocket clients)
	return c.Query("token")
}

func userIDFromToken(tokenString string) (uint, bool) {
	token, err := utils.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return 0, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return 0, false
	}
	return uint(id), true
}

// AuthMiddleware rejects requests without a valid token and records the
// authenticated principal in the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Authorization header or token query parameter required"})
			c.Abort()
			return
		}

		userID, ok := userIDFromToken(tokenString)
		if !ok {
			c.JSON(401, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("userId", userID)
		c.Next()
	}
}

// OptionalAuthMiddleware records the principal when a valid token is present
// but lets anonymous requests through. Endpoints that allow anonymous rides
// and bookings use it.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if userID, ok := userIDFromToken(tokenString); ok {
				c.Set("userId", userID)
			}
		}
		c.Next()
	}
}
