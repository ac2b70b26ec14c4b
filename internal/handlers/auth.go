package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ridepool/ridepool-backend/internal/ledger"
	"github.com/ridepool/ridepool-backend/pkg/utils"
)

type RegisterInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Contact         string `json:"contact" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account. Duplicate emails (case-insensitive) are
// rejected with a conflict.
func Register(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user, err := l.RegisterUser(c.Request.Context(), ledger.RegisterInput{
			Name:            input.Name,
			Email:           input.Email,
			Contact:         input.Contact,
			Password:        input.Password,
			ConfirmPassword: input.ConfirmPassword,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, gin.H{
			"message": "Account created. Please log in.",
			"user": gin.H{
				"id":      user.ID,
				"name":    user.Name,
				"email":   user.Email,
				"contact": user.Contact,
			},
		})
	}
}

// Login verifies credentials and issues a JWT.
func Login(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user, err := l.Authenticate(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := utils.GenerateToken(user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"user": gin.H{
				"id":      user.ID,
				"name":    user.Name,
				"email":   user.Email,
				"contact": user.Contact,
			},
		})
	}
}
