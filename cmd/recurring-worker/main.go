package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/api"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.DefaultConfig().Level,
		Component: log.ComponentSweep,
	})
	log.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	stores, cleanup, err := backend.Open(cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer cleanup()

	refreshService := services.NewRefreshService(stores.Refresh)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring sweep configured",
		"interval", cfg.SweepInterval.String(),
		"trigger_port", cfg.SweepPort,
		"sqlite_db", cfg.SQLiteDBPath)

	// Run one sweep on startup so a long-stopped instance catches up
	// without waiting a full interval.
	runSweep(ctx, logger, refreshService)

	// The trigger server lets schedulers and consoles force a sweep.
	srv := &http.Server{
		Addr:         ":" + cfg.SweepPort,
		Handler:      api.NewSweepRouter(refreshService, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				runSweep(ctx, logger, refreshService)
			}
		}
	})
	g.Go(func() error {
		logger.Info("Trigger server listening", "port", cfg.SweepPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down recurring-worker...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Recurring-worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Recurring-worker shutdown complete")
}

func runSweep(ctx context.Context, logger *log.Logger, refresh *services.RefreshService) {
	created, err := refresh.TopUp(ctx, core.Today())
	if err != nil {
		logger.Error("Sweep failed", "created", created, "error", err)
		return
	}
	logger.Info("Sweep complete", "created", created)
}
