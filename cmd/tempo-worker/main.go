package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/cli"
	"tempo/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting tempo-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := cli.InitSheetsWriter(ctx, logger, cfg)
	syncWorker := worker.NewSyncWorker(sqliteRepo, writer, cfg.SyncBatchSize)

	// On startup, process any pending records that might have been missed
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Don't exit - continue with normal operation
	}

	// AMQP consumption is optional; without it the worker relies on the
	// periodic pending sweep alone.
	if amqpClient := cli.InitSyncQueue(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()

		go func() {
			err := amqpClient.Consume(ctx, func(msg *amqp.SyncMessage) error {
				return syncWorker.HandleMessage(ctx, msg)
			})
			if err != nil && err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
				cancel()
			}
		}()
	}

	// Periodic sweep for any missed messages
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := syncWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
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

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight handlers a moment to finish
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
