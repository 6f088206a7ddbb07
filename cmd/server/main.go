package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/internal/clients/openrouter"
	"github.com/quantfx/fx-risk-api/internal/config"
	"github.com/quantfx/fx-risk-api/internal/database"
	"github.com/quantfx/fx-risk-api/internal/modules/items"
	"github.com/quantfx/fx-risk-api/internal/modules/risk"
	sig "github.com/quantfx/fx-risk-api/internal/modules/signal"
	"github.com/quantfx/fx-risk-api/internal/modules/tracking"
	"github.com/quantfx/fx-risk-api/internal/scheduler"
	"github.com/quantfx/fx-risk-api/internal/server"
	"github.com/quantfx/fx-risk-api/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting FX Risk API")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire services
	analyzer := openrouter.New(openrouter.Config{
		BaseURL: cfg.OpenRouterURL,
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		Timeout: cfg.RequestTimeout,
	}, log)
	signalService := sig.NewService(sig.NewCache(cfg.SignalCacheTTL), analyzer, log)
	trackingService := tracking.NewService(cfg.TrackingDir, log)
	riskEngine := risk.NewEngine(log)
	itemsRepo := items.NewRepository(db.Conn(), log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Register background jobs
	if err := registerJobs(sched, log, signalService, trackingService, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		Config:   cfg,
		DevMode:  cfg.DevMode,
		Risk:     risk.NewHandlers(riskEngine, log),
		Signal:   sig.NewHandlers(signalService, log),
		Tracking: tracking.NewHandlers(trackingService, log),
		Items:    items.NewHandlers(itemsRepo, log),
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	log zerolog.Logger,
	signalService *sig.Service,
	trackingService *tracking.Service,
	cfg *config.Config,
) error {
	if err := sched.AddJob("@every 1m", scheduler.NewCacheSweepJob(log, signalService)); err != nil {
		return err
	}
	// Daily at 03:00
	if err := sched.AddJob("0 0 3 * * *", scheduler.NewTrackingRetentionJob(log, trackingService, cfg.TrackingRetentionMonths)); err != nil {
		return err
	}
	return nil
}
