package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"dauvest/internal/cli"
	"dauvest/internal/export"
	"dauvest/internal/ledger"
	"dauvest/internal/log"
)

func main() {
	cli.LoadEnvFile()

	out := flag.String("out", "", "output file (default dauvest-YYYY-MM-DD.xlsx)")
	year := flag.Int("year", time.Now().Year(), "year shown in the monthly summary")
	db := flag.String("db", "", "ledger database (default SQLITE_DB_PATH)")
	flag.Parse()

	logger := cli.SetupLogger(log.ComponentExport, os.Getenv("LOG_LEVEL"))

	path := *db
	if path == "" {
		path = os.Getenv("SQLITE_DB_PATH")
	}
	if path == "" {
		path = "./data/dauvest.db"
	}
	if _, err := os.Stat(path); err != nil {
		logger.Error("Ledger database not found", log.FieldError, err, "path", path)
		os.Exit(1)
	}

	if err := run(context.Background(), logger, path, *out, *year); err != nil {
		logger.Error("Export failed", log.FieldError, err, log.FieldOperation, log.OpExport)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, dbPath, out string, year int) error {
	repo := cli.InitSQLite(logger, dbPath)
	defer repo.Close()

	txs, err := ledger.OpenTransactions(ctx, repo)
	if err != nil {
		return err
	}
	goals, err := ledger.OpenGoals(ctx, repo)
	if err != nil {
		return err
	}

	if out == "" {
		out = export.Filename(time.Now())
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := export.Workbook(f, txs.List(), goals.List(), year); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	logger.Info("Ledger exported",
		"path", out,
		"transactions", len(txs.List()),
		"goals", len(goals.List()))
	return nil
}
