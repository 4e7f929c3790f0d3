package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pavelkonansro/AIc/internal/ai"
	"github.com/pavelkonansro/AIc/internal/config"
	"github.com/pavelkonansro/AIc/internal/database"
	"github.com/pavelkonansro/AIc/internal/handler"
	"github.com/pavelkonansro/AIc/internal/middleware"
	"github.com/pavelkonansro/AIc/internal/repository"
	"github.com/pavelkonansro/AIc/internal/service"
)

func main() {
	cfg := config.Load()

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	sessionRepo := repository.NewChatSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	sosRepo := repository.NewSosRepository(db)
	safetyLogRepo := repository.NewSafetyLogRepository(db)

	// Services
	provider := ai.New(cfg)
	notifier := service.NewNotifier(cfg.PushGatewayURL, cfg.PushGatewayKey)
	alerts := service.NewSafetyWebhook(cfg.SafetyWebhookURL)
	authSvc := service.NewAuthService(userRepo, tokenRepo, cfg.JWTSecret)
	chatSvc := service.NewChatService(sessionRepo, messageRepo, userRepo, safetyLogRepo, provider, notifier, alerts, cfg.ContextMessages)
	sosSvc := service.NewSosService(sosRepo, safetyLogRepo)
	registry := service.NewSessionRegistry()

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// Health
	healthH := handler.NewHealthHandler(db, provider)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)
	auth.Post("/guest", middleware.RateLimit(10, time.Minute), authH.Guest)
	auth.Post("/refresh", middleware.RateLimit(20, time.Minute), authH.Refresh)
	auth.Post("/logout", authH.Logout)

	// SOS (public — must stay reachable without an account)
	sosH := handler.NewSosHandler(sosSvc)
	sos := v1.Group("/sos")
	sos.Get("/resources", sosH.GetResources)
	sos.Get("/crisis-check", sosH.CrisisCheck)

	// AI provider health
	v1.Get("/ai/health", healthH.AIHealth)

	// JWT-protected routes
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))

	chatH := handler.NewChatHandler(chatSvc)
	chat := protected.Group("/chat")
	chat.Post("/session", chatH.StartSession)
	chat.Get("/session/:id", chatH.GetSession)
	chat.Get("/session/:id/messages", chatH.GetMessages)
	chat.Post("/session/:id/end", chatH.EndSession)
	chat.Get("/sessions", chatH.ListSessions)

	// WebSocket
	wsH := handler.NewWSHandler(registry, chatSvc, authSvc)
	app.Get("/ws/chat", wsH.Upgrade)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("AIc backend running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	registry.Shutdown()
	log.Println("Server stopped")
}
