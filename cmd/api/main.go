package main

import (
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/ridepool/ridepool-backend/internal/database"
	"github.com/ridepool/ridepool-backend/internal/handlers"
	"github.com/ridepool/ridepool-backend/internal/ledger"
	"github.com/ridepool/ridepool-backend/internal/middleware"
	"github.com/ridepool/ridepool-backend/internal/services"
	"github.com/ridepool/ridepool-backend/internal/storage"
	"github.com/ridepool/ridepool-backend/pkg/utils"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using process environment")
	}

	// Storage: postgres when configured, in-memory fallback for development
	var store ledger.Store
	if os.Getenv("DB_HOST") != "" {
		db, err := database.InitDB()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		store = storage.NewGormStore(db)
	} else {
		log.Warn().Msg("DB_HOST not set, using in-memory store")
		store = storage.NewMemoryStore()
	}

	// Redis backs the destination-group cache; without it the cache is a
	// pass-through
	redisClient, err := services.InitRedis()
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, group cache disabled")
	}
	groupCache := services.NewGroupCache(redisClient)

	// WebSocket hub for ledger event broadcasts
	hub := services.NewHub(log)
	go hub.Run()

	notifier := services.NewNotifier(utils.NewMailerFromEnv(), hub, log)

	cfg := ledger.Config{
		AdminUserID:     adminUserID(),
		StrictLocations: os.Getenv("BOOKING_STATIONS") != "free",
	}
	l := ledger.New(store, notifier, cfg, ledger.WithLogger(log))

	// Initialize router
	r := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", handlers.Health())

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(l))
			auth.POST("/login", handlers.Login(l))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		rides := api.Group("/rides")
		{
			rides.GET("", handlers.SearchRides(l))
			rides.GET("/groups", handlers.GroupRides(l, groupCache))
			rides.POST("", middleware.OptionalAuthMiddleware(), handlers.CreateRide(l, groupCache))
			rides.POST("/:id/join", middleware.AuthMiddleware(), handlers.JoinRide(l, groupCache))
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", middleware.OptionalAuthMiddleware(), handlers.CreateBooking(l))
			bookings.GET("/mine", middleware.AuthMiddleware(), handlers.MyBookings(l))
			bookings.GET("/:id", middleware.OptionalAuthMiddleware(), handlers.ViewBooking(l))
			bookings.POST("/:id/cancel", middleware.AuthMiddleware(), handlers.CancelBooking(l))
		}

		api.GET("/dashboard", middleware.AuthMiddleware(), handlers.Dashboard(l))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func adminUserID() uint {
	id, err := strconv.ParseUint(os.Getenv("ADMIN_USER_ID"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
