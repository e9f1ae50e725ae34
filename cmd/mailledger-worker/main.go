package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mailledger/internal/amqp"
	"mailledger/internal/config"
	"mailledger/internal/ledger"
	"mailledger/internal/ledger/memory"
	"mailledger/internal/ledger/sqlite"
	applog "mailledger/internal/log"
	"mailledger/internal/scan"
	"mailledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New("mailledger-worker", slog.LevelInfo)
	applog.SetDefault(logger)

	logger.Info("Starting mailledger-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var store ledger.Store
	switch cfg.LedgerBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.SQLiteDSN)
		if err != nil {
			logger.Error("Failed to initialize SQLite ledger", "error", err)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	default:
		store = memory.New()
	}
	logger.Info("Initialized ledger backend", "backend", cfg.LedgerBackend)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanner := scan.New(store, logger.WithComponent("scan"))
	ingestWorker := worker.NewIngestWorker(scanner, logger.WithComponent("ingest"))

	go func() {
		if err := amqpClient.ConsumeScans(ctx, func(job *amqp.ScanJob) error {
			return ingestWorker.HandleScanJob(ctx, job)
		}); err != nil {
			if err != context.Canceled {
				logger.Error("Scan job consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Periodically log the running totals for the configured period.
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ingestWorker.LogReport(ctx, cfg.PeriodKind()); err != nil {
					logger.Error("Periodic report failed", "error", err)
				}
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker shutdown complete")
}
