// main.go
package main

import (
	"log"
	"os"
	"strings"
	"time"

	"gameplatform/config"
	"gameplatform/database"
	"gameplatform/handlers"
	"gameplatform/handlers/admin"
	"gameplatform/middleware"
	"gameplatform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Load platform configuration
	cfg, err := config.LoadOrDefault(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	database.InitDB()
	defer database.CloseDB()

	// Seed the game catalog and achievement definitions
	database.SeedGames(cfg)
	database.SeedAchievements()

	store := database.NewStore(database.GetDB())

	// Redis for leaderboard caching (optional)
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Printf("✅ Redis cache enabled at %s", addr)
	} else {
		log.Println("Warning: REDIS_ADDR not set, leaderboards served uncached")
	}

	// Kafka analytics (optional)
	var brokers []string
	if env := os.Getenv("KAFKA_BROKERS"); env != "" {
		brokers = strings.Split(env, ",")
	} else {
		brokers = cfg.Analytics.Brokers
	}
	events, err := services.NewAnalyticsPublisher(brokers, cfg.Analytics.Topic)
	if err != nil {
		log.Printf("Warning: analytics disabled: %v", err)
	}
	defer events.Close()

	// Wire services
	leaderboards := services.NewLeaderboardService(store, rdb, cfg)

	trackerOpts := []services.TrackerOption{
		services.WithCacheInvalidator(leaderboards),
	}
	if events != nil {
		trackerOpts = append(trackerOpts, services.WithEvents(events))
	}
	tracker := services.NewProgressTracker(store, cfg, trackerOpts...)

	generator := services.NewContentGenerator(store, cfg)

	handlers.Init(cfg, store, tracker, leaderboards, generator)
	admin.Init(cfg, store, generator)

	// Challenge generation scheduler
	scheduler := services.NewScheduler(generator, cfg)
	scheduler.Start()
	defer scheduler.Stop()

	// Background session and guest cleanup
	cleanup := services.NewCleanupService(store, cfg)
	cleanup.Start()
	defer cleanup.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api/v1")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/upgrade", middleware.AuthMiddleware, handlers.UpgradeGuest)

	// Game catalog and daily challenges
	api.Get("/games", handlers.ListGames)
	api.Get("/games/:slug", handlers.GetGame)
	api.Get("/games/:slug/daily", middleware.AuthMiddleware, handlers.GetDailyChallenge)
	api.Get("/games/:slug/archive", middleware.AuthMiddleware, handlers.GetChallengeArchive)
	api.Post("/challenges/:id/verify", middleware.AuthMiddleware, handlers.VerifyChallengeSolution)

	// Session lifecycle
	sessionGroup := api.Group("/sessions")
	sessionGroup.Use(middleware.AuthMiddleware)
	sessionGroup.Post("/", handlers.StartSession)
	sessionGroup.Put("/:id", handlers.UpdateSession)
	sessionGroup.Post("/:id/complete", handlers.CompleteSession)
	sessionGroup.Post("/:id/pause", handlers.PauseSession)
	sessionGroup.Post("/:id/resume", handlers.ResumeSession)
	sessionGroup.Post("/:id/abandon", handlers.AbandonSession)
	sessionGroup.Post("/:id/fail", handlers.FailSession)
	sessionGroup.Post("/:id/hint", handlers.UseHint)

	// Player routes
	playerGroup := api.Group("/player")
	playerGroup.Use(middleware.AuthMiddleware)
	playerGroup.Get("/profile", handlers.GetProfile)
	playerGroup.Put("/profile", handlers.UpdateProfile)
	playerGroup.Put("/preferences", handlers.UpdatePreferences)
	playerGroup.Get("/stats", handlers.GetStats)
	playerGroup.Get("/achievements", handlers.GetAchievements)
	playerGroup.Get("/streaks/:slug", handlers.GetStreak)
	playerGroup.Post("/streaks/:slug/freeze", handlers.UseStreakFreeze)
	playerGroup.Post("/ad-watched", handlers.RecordAdWatched)

	// Leaderboard routes
	api.Get("/leaderboards/:slug", handlers.GetLeaderboard)
	api.Get("/leaderboards/:slug/me", middleware.AuthMiddleware, handlers.GetMyRank)
	api.Get("/challenges/:id/leaderboard", handlers.GetChallengeLeaderboard)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	// Protected admin routes
	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/users", admin.GetUsers)
	adminProtected.Get("/users/:id", admin.GetUser)
	adminProtected.Put("/users/:id", admin.UpdateUser)
	adminProtected.Post("/users/:id/grant", admin.GrantResources)
	adminProtected.Get("/challenges", admin.GetChallenges)
	adminProtected.Post("/challenges/generate", admin.GenerateChallenges)
	adminProtected.Post("/challenges/:id/deactivate", admin.DeactivateChallenge)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	// Start HTTP server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🎮 Seeded games: %d", len(cfg.Games))

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "production" {
		// Additional production checks
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
