package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"rideboard-api/config"
	"rideboard-api/controllers"
	"rideboard-api/database"
	"rideboard-api/jobs"
	"rideboard-api/middleware"
	"rideboard-api/repositories"
	"rideboard-api/routes"
	"rideboard-api/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Select the trip store: durable when DATABASE_URL is set, ephemeral
	// in-memory otherwise.
	var repo repositories.TripRepository
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, trips are stored in memory for this process only")
		repo = repositories.NewMemoryTripRepository()
	} else {
		db, err := database.Initialize(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		repo = repositories.NewGormTripRepository(db)
	}

	// Wire services
	tripService := services.NewTripService(repo)
	matchService := services.NewMatchService(repo)
	emailService := services.NewEmailService(cfg)
	dispatcher := services.NewNotificationDispatcher(repo, matchService, emailService)

	// Sweep expired trips on startup, then on schedule
	expiryJob := jobs.NewTripExpiryJob(tripService, time.Duration(cfg.CleanupIntervalHours)*time.Hour)
	expiryJob.Start()
	defer expiryJob.Stop()

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(routes.SetupCORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.ValidateJSON())
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst))

	tripController := controllers.NewTripController(tripService, matchService, dispatcher)
	routes.SetupRoutes(router, tripController)

	log.Printf("Starting RideBoard API server on port %s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/ping", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
