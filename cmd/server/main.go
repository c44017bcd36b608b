package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studytrack-backend/internal/config"
	"studytrack-backend/internal/database"
	"studytrack-backend/internal/handlers"
	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/repository"
	"studytrack-backend/internal/router"
	"studytrack-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting StudyTrack Backend...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logger := logging.New(cfg.Env, cfg.LogLevel)
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Stores ────
	// The volatile stores always exist; the durable ones only when PostgreSQL is reachable.
	ids := repository.NewVolatileIDGenerator()
	var (
		durableSessions repository.SessionStore
		durableUsers    repository.UserStore
	)

	if cfg.DatabaseURL == "" {
		log.Println("✗ DATABASE_URL not set, running on the volatile store only")
	} else if pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL); err != nil {
		log.Printf("✗ PostgreSQL connection failed, running on the volatile store only: %v", err)
	} else {
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(ctx, pool, cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		durableSessions = repository.NewStudySessionRepo(pool)
		durableUsers = repository.NewUserRepo(pool)
	}

	sessionRepo := repository.NewSessionRepository(durableSessions, repository.NewMemorySessionStore(ids), logger)
	userDirectory := repository.NewUserDirectory(durableUsers, repository.NewMemoryUserStore(ids), logger)

	// ──── Step 3: Redis (refresh tokens) ────
	var tokenStore services.TokenStore
	if cfg.RedisURL == "" {
		log.Println("✗ REDIS_URL not set, refresh tokens disabled")
	} else if redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL); err != nil {
		log.Printf("✗ Redis connection failed, refresh tokens disabled: %v", err)
	} else {
		defer redisClient.Close()
		tokenStore = services.NewRedisTokenStore(redisClient)
		log.Println("✓ Redis connected")
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.AccessTokenTTL, userDirectory)
	authService := services.NewAuthService(userDirectory, tokenStore, jwtAuth, cfg.RefreshTokenTTL, logger)
	studyService := services.NewStudyService(sessionRepo, userDirectory, logger)
	analyticsService := services.NewAnalyticsService(sessionRepo, userDirectory, logger)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	studySessionHandler := handlers.NewStudySessionHandler(studyService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	adminHandler := handlers.NewAdminHandler(studyService, analyticsService)

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	go authLimiter.RunCleanup(ctx)

	// ──── Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authLimiter,
		authHandler,
		studySessionHandler,
		analyticsHandler,
		adminHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
		}
	}()

	log.Printf("✓ StudyTrack Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error(ctx, "server error", "error", err)
		os.Exit(1)
	}
}
