// Package cli provides common initialization utilities for the
// expenses binary.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"expenses/internal/amqp"
	"expenses/internal/config"
	applog "expenses/internal/log"
	"expenses/internal/sheets"
	"expenses/internal/sheets/google"
	"expenses/internal/storage"
)

// SetupLogger initializes structured logging at the configured level
// and sets it as the process default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     cfg.LogLevel,
		Component: "expenses",
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		applog.New(applog.Config{Component: "config"}).
			Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository and runs migrations.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitAMQP connects the event publisher when an AMQP URL is
// configured. A nil client disables publishing; connection failures
// are logged and tolerated so the ledger works offline.
func InitAMQP(logger *applog.Logger, cfg *config.Config) *amqp.Client {
	if !cfg.AMQPEnabled() {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to connect to AMQP, event publishing disabled", "error", err)
		return nil
	}
	logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// InitSheets builds the Google Sheets exporter when a spreadsheet is
// configured. A nil exporter hides the sheets action in the shell.
func InitSheets(ctx context.Context, logger *applog.Logger, cfg *config.Config) sheets.Exporter {
	if !cfg.SheetsEnabled() {
		return nil
	}
	client, err := google.NewClient(ctx, google.Options{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Warn("Failed to initialize Google Sheets client, export disabled", "error", err)
		return nil
	}
	logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}
