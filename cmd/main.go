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

	"marriage-bot/internal/auth"
	"marriage-bot/internal/bot"
	"marriage-bot/internal/config"
	"marriage-bot/internal/database"
	"marriage-bot/internal/handlers"
	"marriage-bot/internal/jobs"
	"marriage-bot/internal/services"
	"marriage-bot/internal/transport"
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
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	marriageService := services.NewMarriageService(
		database.GetDB(),
		time.Duration(cfg.Game.ProposalTTLSeconds)*time.Second,
	)
	preferenceService := services.NewPreferenceService(database.GetDB())
	tracker := services.NewBabyTracker()

	// Connect to the chat gateway
	client := transport.NewClient(cfg.Bot.WSURL, cfg.Bot.AccessToken)
	chatBot := bot.New(client, marriageService, preferenceService, tracker, cfg.Game)
	client.OnEvent(chatBot.HandleEvent)

	if err := client.Connect(); err != nil {
		log.Fatalf("Failed to connect to chat gateway: %v", err)
	}
	log.Printf("Connected to chat gateway at %s", cfg.Bot.WSURL)

	// Start background jobs
	sweeper := jobs.NewExpirySweeper(marriageService, 2*time.Minute)
	go sweeper.Start()

	dailyReset := jobs.NewDailyReset(marriageService)
	go dailyReset.Start()

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(database.GetDB(), marriageService, cfg.App.AdminToken)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
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
			"status":           "ok",
			"time":             time.Now().Format(time.RFC3339),
			"active_gestation": tracker.ActiveCount(),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", adminHandler.Login)
	}

	// Admin routes (protected)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.POST("/reset", adminHandler.TriggerReset)
		admin.POST("/sweep", adminHandler.TriggerSweep)
		admin.GET("/marriages/:user", adminHandler.GetUserMarriages)
		admin.GET("/babies/:user", adminHandler.GetUserBabies)
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

	sweeper.Stop()
	dailyReset.Stop()
	chatBot.Shutdown()
	tracker.Cleanup()
	client.Close()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
