package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"expenses/internal/cli"
	"expenses/internal/report"
	"expenses/internal/services"
	"expenses/internal/shell"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	events := cli.InitAMQP(logger, cfg)
	sheetsExporter := cli.InitSheets(ctx, logger, cfg)

	ledger := services.NewLedgerService(repo, events)
	budget := services.NewBudgetService(repo)
	categories := services.NewCategoryService(repo)
	exporter := report.NewExporter(repo, cfg.ReportsDir, logger)

	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	sh := shell.New(ledger, budget, categories, exporter, sheetsExporter, logger, os.Stdin, os.Stdout)

	logger.Info("Starting expense tracker", "db", cfg.SQLiteDBPath, "reports_dir", cfg.ReportsDir)
	if err := sh.Run(ctx); err != nil {
		logger.Error("Shell error", "error", err)
		os.Exit(1)
	}
}
