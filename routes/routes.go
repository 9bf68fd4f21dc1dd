package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatherly-api/config"
	"gatherly-api/controllers"
	"gatherly-api/middleware"
	"gatherly-api/repositories"
	"gatherly-api/services"
)

// SetupCORS returns a permissive CORS middleware for the SPA front end.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService) {
	// Repositories and services
	eventRepo := repositories.NewEventRepository(db)
	userRepo := repositories.NewUserRepository(db)
	discoveryService := services.NewDiscoveryService(eventRepo)
	recommendationService := services.NewRecommendationService(eventRepo, userRepo)

	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService)
	userController := controllers.NewUserController(db)
	notificationController := controllers.NewNotificationController(db)
	eventController := controllers.NewEventController(db, discoveryService, emailService, notificationController)
	recommendationController := controllers.NewRecommendationController(recommendationService)
	groupController := controllers.NewGroupController(db, notificationController)
	commentController := controllers.NewCommentController(db, notificationController)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/logout", authController.Logout)
		auth.POST("/send-verification", authController.SendVerificationCode)
		auth.POST("/verify-code", authController.VerifyCode)
		auth.POST("/reset-password", authController.ResetPassword)
		auth.POST("/confirm-reset", authController.ConfirmResetPassword)

		auth.GET("/debug/verification-code", authController.GetVerificationCode)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
			users.GET("/statistics", userController.GetStatistics)
			users.GET("/:id", userController.GetUser)
		}

		// Event routes
		events := protected.Group("/events")
		{
			events.GET("/", eventController.GetEvents)
			events.POST("/", eventController.CreateEvent)
			events.GET("/search", eventController.SearchEvents)
			events.GET("/joined", eventController.GetJoinedEvents)
			events.GET("/created", eventController.GetCreatedEvents)
			events.GET("/:id", eventController.GetEvent)
			events.PUT("/:id", eventController.UpdateEvent)
			events.DELETE("/:id", eventController.DeleteEvent)
			events.POST("/:id/join", eventController.JoinEvent)
			events.DELETE("/:id/leave", eventController.LeaveEvent)
			events.POST("/:id/cancel", eventController.CancelEvent)
			events.POST("/:id/comments", commentController.CreateComment)
			events.GET("/:id/comments", commentController.GetComments)
			events.DELETE("/:id/comments/:commentId", commentController.DeleteComment)
		}

		// Recommendation routes
		recommendations := protected.Group("/recommendations")
		{
			recommendations.GET("/", recommendationController.GetRecommendations)
			recommendations.GET("/trending", recommendationController.GetTrendingEvents)
		}

		// Group routes
		groups := protected.Group("/groups")
		{
			groups.GET("/", groupController.GetGroups)
			groups.POST("/", groupController.CreateGroup)
			groups.GET("/joined", groupController.GetJoinedGroups)
			groups.GET("/:id", groupController.GetGroup)
			groups.DELETE("/:id", groupController.DeleteGroup)
			groups.POST("/:id/join", groupController.JoinGroup)
			groups.DELETE("/:id/leave", groupController.LeaveGroup)
			groups.GET("/:id/members", groupController.GetMembers)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("/", notificationController.GetNotifications)
			notifications.GET("/stats", notificationController.GetNotificationStats)
			notifications.PUT("/:id/read", notificationController.MarkAsRead)
			notifications.PUT("/read-all", notificationController.MarkAllAsRead)
			notifications.DELETE("/:id", notificationController.DeleteNotification)
		}
	}
}
