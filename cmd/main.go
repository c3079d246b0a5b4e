package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"eventpilot/internal/auth"
	"eventpilot/internal/config"
	"eventpilot/internal/database"
	"eventpilot/internal/forecast"
	"eventpilot/internal/handlers"
	"eventpilot/internal/insightgen"
	"eventpilot/internal/jobs"
	"eventpilot/internal/repository"
	"eventpilot/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// External collaborator clients
	forecastClient := forecast.NewClient(cfg.Forecast.BaseURL, cfg.Forecast.APIKey)
	insightClient := insightgen.NewClient(cfg.Insight.BaseURL, cfg.Insight.APIKey, cfg.Insight.Model)

	// Initialize services
	authService := services.NewAuthService(database.GetDB(), cfg.App.DefaultPlan)
	eventService := services.NewEventService(repo)
	analyticsService := services.NewAnalyticsService(repo, eventService)
	trendService := services.NewTrendService(repo, eventService, forecastClient)
	insightService := services.NewInsightService(repo, analyticsService, insightClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, trendService)
	insightHandler := handlers.NewInsightHandler(insightService)

	// Start the weekly usage pruner (runs every 24 hours)
	prunerJob := jobs.NewUsagePrunerJob(database.GetDB())
	prunerJob.Start(24 * time.Hour)
	log.Println("Insight usage pruner job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Event endpoints
		api.POST("/events", eventHandler.CreateEvent)
		api.GET("/events", eventHandler.ListEvents)
		api.GET("/events/:id", eventHandler.GetEvent)
		api.PUT("/events/:id", eventHandler.UpdateEvent)
		api.DELETE("/events/:id", eventHandler.DeleteEvent)

		// Line item endpoints
		api.POST("/events/:id/items", eventHandler.AddLineItem)
		api.DELETE("/events/:id/items/:itemId", eventHandler.RemoveLineItem)

		// Collaborator endpoint
		api.POST("/events/:id/collaborators", eventHandler.AddCollaborator)

		// Attendance + feedback endpoints
		api.PUT("/events/:id/attendance", eventHandler.UpsertAttendance)
		api.POST("/events/:id/feedback", eventHandler.AddFeedback)
		api.GET("/events/:id/feedback", eventHandler.ListFeedback)

		// Analytics endpoints
		api.GET("/events/:id/summary", analyticsHandler.GetEventSummary)
		api.GET("/analytics/portfolio", analyticsHandler.GetPortfolio)
		api.GET("/analytics/trends", analyticsHandler.GetTrends)
		api.GET("/analytics/top", analyticsHandler.GetTopEvents)

		// Insight endpoints
		api.GET("/insights/quota", insightHandler.GetQuota)
		api.POST("/insights/portfolio", insightHandler.GeneratePortfolioInsight)
		api.GET("/insights/portfolio", insightHandler.GetPortfolioInsight)
		api.POST("/events/:id/insight", insightHandler.GenerateEventInsight)
		api.GET("/events/:id/insight", insightHandler.GetEventInsight)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
