package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contentai/contentai-golang/internal/ai"
	"github.com/contentai/contentai-golang/internal/auth"
	"github.com/contentai/contentai-golang/internal/cache"
	"github.com/contentai/contentai-golang/internal/config"
	"github.com/contentai/contentai-golang/internal/database"
	"github.com/contentai/contentai-golang/internal/generation"
	"github.com/contentai/contentai-golang/internal/handlers"
	"github.com/contentai/contentai-golang/internal/logging"
	"github.com/contentai/contentai-golang/internal/middleware"
	"github.com/contentai/contentai-golang/internal/quota"
	"github.com/contentai/contentai-golang/internal/routes"
	"github.com/contentai/contentai-golang/internal/store"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Database Connection + Migrations ---
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	st := store.New(db)
	if err := st.Statistics.Ensure(ctx); err != nil {
		log.Fatalf("Failed to initialize statistics: %v", err)
	}

	// 2. --- AI Service Initialization ---
	// Without a usable key every generation uses the template fallback.
	var generator ai.Generator = ai.NewFallback()
	if cfg.AI.Configured() {
		gemini, err := ai.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
		if err != nil {
			logger.Warn(ctx, "gemini unavailable, using fallback content", "error", err)
		} else {
			defer gemini.Close()
			generator = gemini
			logger.Info(ctx, "gemini configured", "model", cfg.AI.Model)
		}
	} else {
		logger.Warn(ctx, "GEMINI_API_KEY not configured, using fallback content")
	}

	// 3. --- Caches + Background Sweeper ---
	caches, err := cache.New(cfg.Cache.Size)
	if err != nil {
		log.Fatalf("Failed to create caches: %v", err)
	}
	sweeper := cache.NewSweeper(caches, cfg.Cache.SweepInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	// --- Application Setup ---
	ledger := quota.NewLedger(st.Generations, quota.Limits{
		AnonymousDaily: cfg.Quota.AnonymousDaily,
		FreeDaily:      cfg.Quota.FreeDaily,
	})
	app := &handlers.Handlers{
		Store:      st,
		Generation: generation.NewService(st, ledger, caches, generator, logger),
		Caches:     caches,
		Issuer:     auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Log:        logger,
	}

	// --- Router Setup ---
	gin.SetMode(gin.ReleaseMode)
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	go func() {
		logger.Info(ctx, "starting ContentAI API server", "port", cfg.Server.Port, "db_driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
	}
}
