package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"tempo/internal/cli"
	apphttp "tempo/internal/http"
	"tempo/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// AMQP is optional; without it records stay local until the worker's
	// periodic sweep picks them up from the pending queue.
	var queue services.SyncPublisher
	if amqpClient := cli.InitSyncQueue(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()
		queue = amqpClient
	}

	svc := services.NewTimesheetService(sqliteRepo, queue)

	srv := apphttp.NewServer(":"+cfg.Port, svc)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting tempo server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
