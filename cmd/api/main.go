package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/wolram/jobapp/internal/config"
	"github.com/wolram/jobapp/internal/handlers"
	"github.com/wolram/jobapp/internal/repositories"
	"github.com/wolram/jobapp/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	oppRepo := repositories.NewOpportunityRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	scoreRepo := repositories.NewScoreRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	tokenService := services.NewTokenService(tokenRepo)
	ingestService := services.NewIngestService(oppRepo, profileRepo, scoreRepo)
	digestService := services.NewDigestService(
		alertRepo,
		profileRepo,
		scoreRepo,
		services.LogNotifier{},
		cfg.Digest.Window,
	)
	log.Println("✅ Services initialized successfully")

	// Schedule the periodic digest
	digestCron := cron.New()
	_, err = digestCron.AddFunc(cfg.Digest.Schedule, func() {
		if _, _, err := digestService.Run(context.Background()); err != nil {
			log.Printf("❌ Digest run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("❌ Failed to schedule digest: %v", err)
	}
	digestCron.Start()
	log.Printf("✅ Digest scheduled: %s", cfg.Digest.Schedule)

	// Initialize handlers
	ingestHandler := handlers.NewIngestHandler(ingestService)
	opportunityHandler := handlers.NewOpportunityHandler(scoreRepo, profileRepo)
	alertHandler := handlers.NewAlertHandler(alertRepo)
	authMiddleware := handlers.NewAuthMiddleware(tokenService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Job Opportunity Ingest API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints (bearer token required)
	api.Post("/extension/ingest", authMiddleware, ingestHandler.HandleIngest)
	api.Get("/opportunities", authMiddleware, opportunityHandler.HandleList)
	api.Patch("/opportunities/:id/status", authMiddleware, opportunityHandler.HandleUpdateStatus)
	api.Get("/alerts", authMiddleware, alertHandler.HandleList)
	api.Post("/alerts", authMiddleware, alertHandler.HandleCreate)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Job Opportunity Ingest API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/extension/ingest",
				"GET /api/v1/opportunities",
				"PATCH /api/v1/opportunities/:id/status",
				"GET /api/v1/alerts",
				"POST /api/v1/alerts",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		digestCron.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
