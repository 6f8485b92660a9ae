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

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting fintrack API server")

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
	logger.Info("Initialized backend", "backend", cfg.DataBackend)

	// AMQP is optional: without a broker the mirror is simply off.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without mirror", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - transactions will not mirror to the spreadsheet")
	}

	handler := api.NewHandler(
		services.NewTransactionService(stores.Transactions, publisher),
		services.NewRefreshService(stores.Refresh),
		services.NewBudgetService(stores.Budgets),
		logger,
	)

	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	defer limiter.Stop()

	router := api.NewRouter(handler, cfg.AllowedOrigins, limiter)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
