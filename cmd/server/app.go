package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmorrow/taskforge/internal/config"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/engine"
	"github.com/jmorrow/taskforge/internal/events"
	"github.com/jmorrow/taskforge/internal/platform/postgres"
	"github.com/jmorrow/taskforge/internal/platform/redisnotify"
	"github.com/jmorrow/taskforge/internal/service"
	"github.com/jmorrow/taskforge/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	taskStore   store.TaskStore
	jobStore    store.JobStore
	reportStore store.ReportStore
	retryStore  store.RetryStore

	// Engine
	registry *engine.Registry
	worker   *engine.Worker

	// Event system
	emitter  *events.InMemoryEmitter
	notifier *redisnotify.Notifier

	// Services
	taskService   service.TaskService
	jobService    service.JobService
	reportService service.ReportService
}

// newApplication creates the application with all dependencies wired:
// stores, executor registry, retry tracker, worker, event emitter, optional
// Redis notifier, and the services the HTTP handlers use. The worker is
// started here; cleanup stops it before the database closes.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Stores
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.jobStore = postgres.NewPostgresJobStore(db, logger)
	app.reportStore = postgres.NewPostgresReportStore(db, logger)
	app.retryStore = postgres.NewPostgresRetryStore(db, logger)

	// Executor registry with the built-in job types.
	app.registry = engine.NewRegistry()
	if err := app.registry.Register(domain.JobTypeMarkTasksCompleted,
		engine.NewMarkTasksCompletedExecutor(app.taskStore, logger)); err != nil {
		return nil, fmt.Errorf("failed to register executor: %w", err)
	}
	if err := app.registry.Register(domain.JobTypeGenerateTaskList,
		engine.NewGenerateTaskListExecutor(app.taskStore, logger)); err != nil {
		return nil, fmt.Errorf("failed to register executor: %w", err)
	}

	// Event emitter, optionally fanning out to Redis.
	app.emitter = events.NewInMemoryEmitter(logger)
	if cfg.Notifier.Enabled {
		notifier, err := redisnotify.New(ctx, cfg.Notifier.RedisURL, cfg.Notifier.Channel, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect notifier: %w", err)
		}
		app.notifier = notifier
		app.emitter.RegisterHandler(notifier)
		logger.Info("job status notifier enabled", "channel", cfg.Notifier.Channel)
	}

	// Retry tracker and worker.
	backoff := engine.NewExponentialBackoff(
		time.Duration(cfg.Retry.BackoffBaseSeconds)*time.Second,
		time.Duration(cfg.Retry.BackoffCapSeconds)*time.Second,
	)
	tracker := engine.NewRetryTracker(app.retryStore, backoff, cfg.Retry.MaxRetries, logger)

	app.worker = engine.NewWorker(
		app.jobStore,
		app.reportStore,
		app.registry,
		tracker,
		app.emitter,
		engine.WorkerConfig{
			PollInterval:         time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second,
			StalledJobAge:        time.Duration(cfg.Worker.StalledJobAgeMinutes) * time.Minute,
			StalledCheckInterval: time.Duration(cfg.Worker.StalledCheckIntervalMinutes) * time.Minute,
		},
		logger,
	)
	if err := app.worker.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job worker: %w", err)
	}

	// Services
	var err error
	app.taskService, err = service.NewTaskService(app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	app.jobService, err = service.NewJobService(
		app.jobStore, app.reportStore, app.retryStore, app.registry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}
	app.reportService, err = service.NewReportService(app.reportStore, store.NewTxManager(db), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create report service: %w", err)
	}

	logger.Info("application initialized",
		"job_types", app.registry.Types(),
		"poll_interval_seconds", cfg.Worker.PollIntervalSeconds)
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. The worker
// stops first so no job execution races the closing database handle.
func (app *application) cleanup() {
	if app.worker != nil {
		app.worker.Stop()
	}

	if app.notifier != nil {
		if err := app.notifier.Close(); err != nil {
			app.logger.Error("error closing notifier", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
