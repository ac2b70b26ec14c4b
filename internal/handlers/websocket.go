package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ridepool/ridepool-backend/internal/services"
)

// WebSocketHandler upgrades the connection and streams ledger events to the
// authenticated client.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		services.HandleWebSocket(hub, c.Writer, c.Request, userID)
	}
}
