package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/offplan-catalog-api/internal/api"
	"github.com/offplan-catalog-api/internal/catalog"
	"github.com/offplan-catalog-api/internal/config"
	"github.com/offplan-catalog-api/internal/database"
	"github.com/offplan-catalog-api/internal/feed"
	"github.com/offplan-catalog-api/internal/query"
	"github.com/offplan-catalog-api/internal/repository"
	"github.com/offplan-catalog-api/pkg/logger"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load .env if present, then initialize logger
	_ = godotenv.Load()
	log := logger.New()
	log.Info().Msg("Starting offplan catalog API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize snapshot persistence (optional)
	var repos *repository.Repositories
	if cfg.Database.Enabled {
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		migrationsPath := os.Getenv("MIGRATIONS_PATH")
		if migrationsPath == "" {
			migrationsPath = "./migrations"
		}
		if err := db.RunMigrations(migrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}

		repos = repository.New(db)
	} else {
		log.Info().Msg("Snapshot persistence disabled")
	}

	// Initialize catalog store and loader
	store := catalog.NewStore()
	client := feed.NewClient(cfg.Feed.URL, cfg.Feed.FetchTimeout)
	var snapshots repository.SnapshotRepository
	if repos != nil {
		snapshots = repos.Snapshot
	}
	loader := catalog.NewLoader(client, store, snapshots, cfg.Database.SnapshotKeep, log)

	// Warm start from the last persisted snapshot, then fetch live
	if err := loader.Restore(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to restore persisted snapshot")
	}
	if cfg.Feed.LoadOnStart {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := loader.Load(ctx); err != nil {
				log.Warn().Err(err).Msg("Initial feed load failed")
			}
		}()
	}

	// Scheduled refresh (each tick is one fresh load attempt)
	var scheduler *cron.Cron
	if cfg.Feed.RefreshSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Feed.RefreshSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := loader.Load(ctx); err != nil {
				log.Warn().Err(err).Msg("Scheduled feed load failed")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Feed.RefreshSchedule).Msg("Invalid refresh schedule")
		}
		scheduler.Start()
		log.Info().Str("schedule", cfg.Feed.RefreshSchedule).Msg("Scheduled feed refresh enabled")
	}

	// Initialize router
	deps := &api.Deps{
		Store:     store,
		Loader:    loader,
		Selection: query.NewCoordinator(),
	}
	router := api.NewRouter(deps, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
