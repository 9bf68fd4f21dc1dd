package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"gatherly-api/config"
	"gatherly-api/database"
	"gatherly-api/jobs"
	"gatherly-api/middleware"
	"gatherly-api/routes"
	"gatherly-api/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Seed database with test data (optional - for development)
	if err := database.SeedData(db); err != nil {
		log.Printf("Warning: Failed to seed database: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Email service
	emailService := services.NewEmailService(cfg)

	// Background job: derive event status from event dates
	statusJob := jobs.NewEventStatusJob(db, 5*time.Minute)
	statusJob.Start()
	defer statusJob.Stop()

	// Create router
	router := gin.Default()

	// Setup CORS middleware
	router.Use(routes.SetupCORS())

	// Security headers and rate limiting
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(120, 20))

	// Recovery middleware
	router.Use(gin.Recovery())

	// Setup routes
	routes.SetupRoutes(router, db, cfg, emailService)

	// Start server
	log.Printf("Starting Gatherly API server on port %s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/ping", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
