package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"careercast/internal/adapters/config"
	"careercast/internal/adapters/errors/noop"
	"careercast/internal/adapters/errors/sentry"
	"careercast/internal/api"
	"careercast/internal/api/health"
	"careercast/internal/artifacts"
	"careercast/internal/inference"
	authservice "careercast/internal/services/auth"
	historyservice "careercast/internal/services/history"
	"careercast/internal/storage"
	"careercast/pkg/auth"
	"careercast/pkg/errors"
	"careercast/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load model artifacts. A missing or broken bundle degrades serving but
	// never prevents startup.
	bundle := artifacts.Load(cfg.Artifacts.Dir)
	defer bundle.Close()

	// Select the storage engine: document store when configured and
	// reachable, single-file relational fallback otherwise.
	store, err := storage.Select(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Infof("Storage engine: %s", store.Engine())

	// Initialize services
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	authSvc := authservice.NewService(store, jwtService)
	historySvc := historyservice.NewService(store)
	predictor := inference.NewExecutor(bundle, store)

	// Initialize HTTP server
	handlers := api.NewHandlers(authSvc, historySvc, predictor)
	healthHandler := health.New(log, store, bundle, cfg.App.Name, cfg.App.Version)
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.HTTP.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}, handlers, healthHandler, jwtService, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	// Wait for shutdown signal
	waitForShutdown(cancel, log)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown error: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Errorf("Storage close error: %v", err)
	}
	if err := errorTracker.Flush(shutdownCtx); err != nil {
		log.Errorf("Error tracker flush error: %v", err)
	}

	log.Info("Shutdown complete")
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown blocks until SIGINT or SIGTERM
func waitForShutdown(cancel context.CancelFunc, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")
	cancel()
}
