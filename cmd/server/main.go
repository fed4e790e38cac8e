// Package main implements the entry point for the taskforge server: a task
// management API with a background job engine for bulk operations over tasks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jmorrow/taskforge/internal/config"
	"github.com/jmorrow/taskforge/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run database migrations (up|down|status) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		log.Fatalf("taskforge: %v", err)
	}
}

// run wires configuration, logging, the database, and the application, then
// either executes a migration command or serves until shutdown.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"notifier_enabled", cfg.Notifier.Enabled)

	db, err := openDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("failed to close database", "error", err)
			}
		}()
		return runMigrations(db, migrateCmd, appLogger)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		// The application owns the db handle once constructed; before that,
		// close it here.
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("failed to close database", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		return err
	}

	// cleanup runs inside the server shutdown path; reaching here means a
	// clean exit.
	_ = os.Stdout.Sync()
	return nil
}
