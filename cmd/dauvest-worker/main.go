package main

import (
	"context"
	"errors"
	"os"
	"time"

	"dauvest/internal/amqp"
	"dauvest/internal/cli"
	"dauvest/internal/log"
	gsheet "dauvest/internal/sheets/google"
	"dauvest/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"))
	logger.Info("Starting dauvest-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend != "sqlite" {
		logger.Error("The mirror worker reads the SQLite ledger; set DATA_BACKEND=sqlite")
		os.Exit(1)
	}
	if !cfg.MirrorEnabled() {
		logger.Error("GOOGLE_SPREADSHEET_ID is required to run the mirror worker")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to run the mirror worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	startCtx := context.Background()
	mirror, err := gsheet.New(startCtx, gsheet.Options{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		TransactionsSheet: cfg.GoogleSheetName,
		CredentialsJSON:   cfg.GoogleServiceAccountJSON,
		CredentialsFile:   cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		_ = repo.Close()
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		_ = repo.Close()
		os.Exit(1)
	}
	amqpClient.SetRequeueDelay(cfg.AMQPRequeueDelay)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		cli.CloseAll(logger, map[string]func() error{
			"amqp client":     amqpClient.Close,
			"sqlite database": repo.Close,
		})
	})

	w := worker.NewMirrorWorker(repo, mirror)

	// Writes made while the worker was down have no pending message.
	if err := w.StartupSync(ctx); err != nil {
		logger.Error("Startup mirror failed", log.FieldError, err, log.FieldOperation, log.OpStartup)
	}

	if err := amqpClient.ConsumeLedgerChanges(ctx, w.HandleLedgerChange); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
