package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	mem "fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.DefaultConfig().Level,
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("Starting sync-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Without a spreadsheet ID the worker still drains the queue, it just
	// mirrors into memory. Useful for local development.
	var (
		appender sheets.TransactionAppender
		remover  sheets.TransactionRemover
	)
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender, remover = cli, cli
		logger.Info("Google Sheets mirror initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		mirror := mem.New()
		appender, remover = mirror, mirror
		logger.Info("Google Sheets disabled - mirroring to memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, appender, remover)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeMessages(ctx, func(env *amqp.Envelope) error {
			return syncWorker.HandleEnvelope(ctx, env)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Sync-worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Sync-worker shutdown complete")
}
