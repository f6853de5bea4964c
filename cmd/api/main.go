// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Marga-Ghale/backpackers-backend/internal/api"
	"github.com/Marga-Ghale/backpackers-backend/internal/catalog"
	"github.com/Marga-Ghale/backpackers-backend/internal/config"
	"github.com/Marga-Ghale/backpackers-backend/internal/cron"
	"github.com/Marga-Ghale/backpackers-backend/internal/db"
	"github.com/Marga-Ghale/backpackers-backend/internal/email"
	"github.com/Marga-Ghale/backpackers-backend/internal/identity"
	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/notification"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
	"github.com/Marga-Ghale/backpackers-backend/internal/seed"
	"github.com/Marga-Ghale/backpackers-backend/internal/service"
	"github.com/Marga-Ghale/backpackers-backend/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	envErr := godotenv.Load()

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()
	logger.Init(cfg.Environment, cfg.LogLevel)
	log := logger.Component("main")

	if envErr != nil {
		log.Info("no .env file found, using environment variables")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// ============================================
	// Storage
	// ============================================
	var (
		repos      *repository.Repositories
		postgresDB *db.PostgresDB
	)
	if cfg.InMemory() {
		repos = repository.NewInMemoryRepositories()
		log.Info("using in-memory storage")
	} else {
		log.Info("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.WithError(err).Fatal("migration failed")
		}

		var err error
		postgresDB, err = db.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to PostgreSQL")
		}
		defer postgresDB.Close()

		repos = repository.NewRepositories(postgresDB.Pool)
	}

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	var catalogCache catalog.Cache
	if cfg.RedisURL != "" {
		var err error
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("failed to connect to Redis, continuing without cache")
			redisDB = nil
		} else {
			defer redisDB.Close()
			catalogCache = redisDB
		}
	}

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		log.Info("email service initialized")
	} else {
		log.Info("email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	defer hub.Stop()
	broadcaster := socket.NewBroadcaster(hub)

	// ============================================
	// Initialize Notification Service
	// ============================================
	resolver := identity.NewResolver(repos.UserRepo)

	notificationSvc := notification.NewService(repos.NotificationRepo, resolver)
	notificationSvc.SetBroadcaster(broadcaster)
	if emailSvc != nil {
		notificationSvc.SetMailer(emailSvc, cfg.FrontendURL)
	}

	// ============================================
	// Seed Data (for development)
	// ============================================
	seeded := false
	if !cfg.IsProduction() && cfg.SeedData {
		seeded = seed.SeedData(ctx, repos)
	}

	// ============================================
	// Catalog snapshot
	// ============================================
	catalogLoader := catalog.NewLoader(repos.CatalogRepo, catalogCache, cfg.CatalogCacheTTL)
	warm := catalogLoader.Warm
	if seeded {
		// A cached snapshot predates the seeded listings.
		warm = catalogLoader.Refresh
	}
	if err := warm(ctx); err != nil {
		log.WithError(err).Warn("catalog not loaded, search returns nothing until the next refresh")
	}

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Resolver:    resolver,
		Notifier:    notificationSvc,
		Catalog:     catalogLoader,
		Broadcaster: broadcaster,
	})

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	scheduler := cron.NewScheduler(cron.Config{
		CatalogRefreshSpec:        cfg.CatalogRefreshSpec,
		NotificationRetentionDays: cfg.NotificationRetentionDays,
	}, catalogLoader, repos.NotificationRepo)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer scheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	router := api.NewRouter(api.RouterConfig{
		Services:       services,
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins,
		Health: map[string]api.HealthFunc{
			"database": func() string { return databaseStatus(cfg, postgresDB) },
			"cache":    func() string { return cacheStatus(redisDB) },
			"email":    func() string { return emailStatus(emailSvc) },
			"catalog":  func() string { return catalogLoader.LoadedAt().Format(time.RFC3339) },
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}

	log.Info("server exited")
}

func databaseStatus(cfg *config.Config, pg *db.PostgresDB) string {
	if cfg.InMemory() {
		return "memory"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pg.Pool.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "connected"
}

func cacheStatus(redisDB *db.RedisDB) string {
	if redisDB == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisDB.Client.Ping(ctx).Err(); err != nil {
		return "unreachable"
	}
	return "connected"
}

func emailStatus(emailSvc *email.Service) string {
	if emailSvc == nil || !emailSvc.IsConfigured() {
		return "disabled"
	}
	return "configured"
}
