package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/events"
	"github.com/jmorrow/taskforge/internal/store"
)

// WorkerConfig holds configuration for the polling worker.
type WorkerConfig struct {
	// PollInterval is how often the worker attempts to claim a job.
	PollInterval time.Duration

	// StalledJobAge defines how long a job can sit in the running status
	// before the stalled-job monitor considers it orphaned and re-queues it.
	StalledJobAge time.Duration

	// StalledCheckInterval defines how often to check for stalled jobs.
	// If zero, defaults to 5 minutes.
	StalledCheckInterval time.Duration
}

// DefaultWorkerConfig returns a WorkerConfig with the documented defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:         10 * time.Second,
		StalledJobAge:        30 * time.Minute,
		StalledCheckInterval: 5 * time.Minute,
	}
}

// Worker is the polling control loop of the job engine. Each tick it claims
// at most one eligible job, drives it through the state machine, dispatches
// to the matching executor, and persists the outcome. Exactly one job
// executes at a time; throughput is bounded by serial execution by design.
type Worker struct {
	jobs     store.JobStore
	reports  store.ReportStore
	registry *Registry
	retries  *RetryTracker
	emitter  events.Emitter
	config   WorkerConfig
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a Worker wired to the given collaborators.
// The emitter may fan out to zero handlers; notification delivery never
// blocks processing.
func NewWorker(
	jobs store.JobStore,
	reports store.ReportStore,
	registry *Registry,
	retries *RetryTracker,
	emitter events.Emitter,
	config WorkerConfig,
	logger *slog.Logger,
) *Worker {
	if config.StalledCheckInterval == 0 {
		config.StalledCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		jobs:     jobs,
		reports:  reports,
		registry: registry,
		retries:  retries,
		emitter:  emitter,
		config:   config,
		logger:   logger.With("component", "job_worker"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start recovers jobs orphaned by a previous crash and launches the polling
// loop and the stalled-job monitor.
func (w *Worker) Start() error {
	// This is a single-process engine: any job still marked running at
	// startup was orphaned by a crash and is re-queued for another attempt.
	reclaimed, err := w.jobs.ReclaimStalled(w.ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to recover orphaned jobs: %w", err)
	}
	if reclaimed > 0 {
		w.logger.Info("recovered orphaned running jobs", "count", reclaimed)
	}

	w.wg.Add(1)
	go w.run()

	w.wg.Add(1)
	go w.stalledJobMonitor()

	return nil
}

// Stop cancels the loop and any in-flight execution and waits for both
// goroutines to exit.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}

// run is the polling loop: one claim attempt per tick, then sleep until the
// next tick or cancellation.
func (w *Worker) run() {
	defer w.wg.Done()

	w.logger.Info("job worker started", "poll_interval", w.config.PollInterval)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("job worker stopping")
			return

		case <-ticker.C:
			if err := w.ProcessNextJob(w.ctx); err != nil {
				// Per-job errors are already converted into state
				// transitions; what reaches here is store
				// unavailability. The tick aborts and the loop
				// retries on the next interval.
				w.logger.Error("tick aborted", "error", err)
			}
		}
	}
}

// ProcessNextJob claims and fully processes at most one eligible job. When
// nothing is eligible the call is a no-op. All per-job failures are handled
// internally; the returned error reports store unavailability only.
func (w *Worker) ProcessNextJob(ctx context.Context) error {
	claimed, err := w.jobs.ClaimNextEligible(ctx)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoEligibleJobs):
			return nil
		case errors.Is(err, ErrConcurrentClaim):
			// Benign race with another claimer; wait for the next tick.
			w.logger.Debug("claim lost to concurrent caller")
			return nil
		default:
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	job := *claimed
	logger := w.logger.With("job_id", job.ID, "job_type", job.JobType)

	// The claim is the queued -> running transition; announce it.
	w.emit(ctx, job, domain.JobStatusQueued, "")
	logger.Info("processing job")

	executor, err := w.registry.Get(job.JobType)
	if err != nil {
		// Unknown job type is routed through the failed-state guard like
		// any other executor failure.
		logger.Error("no executor for job type", "error", err)
		return w.failJob(ctx, job, err)
	}

	result, execErr := executor.Execute(ctx, job)
	if execErr != nil {
		if ctx.Err() != nil || errors.Is(execErr, context.Canceled) {
			// Shutdown interrupted the execution. No terminal transition
			// may be persisted; the job stays running and is re-queued by
			// startup recovery.
			logger.Warn("execution cancelled, leaving job for recovery")
			return nil
		}
		logger.Error("job execution failed", "error", execErr)
		return w.failJob(ctx, job, execErr)
	}

	if ctx.Err() != nil {
		logger.Warn("worker cancelled after execution, leaving job for recovery")
		return nil
	}

	return w.completeJob(ctx, job, result)
}

// completeJob persists the executor's artifact, if any, and moves the job to
// the completed status.
func (w *Worker) completeJob(ctx context.Context, job domain.Job, result Result) error {
	logger := w.logger.With("job_id", job.ID, "job_type", job.JobType)

	if result.Artifact != nil {
		switch err := w.reports.Create(ctx, result.Artifact); {
		case err == nil:
			job = job.WithReport(result.Artifact.ID)
		case errors.Is(err, store.ErrReportExists):
			// A replayed execution after a crash already produced this
			// job's report; link the existing one instead of failing.
			existing, lookupErr := w.reports.GetByJobID(ctx, job.ID)
			if lookupErr != nil {
				logger.Error("failed to load existing report", "error", lookupErr)
				return w.failJob(ctx, job, fmt.Errorf("failed to load existing report: %w", lookupErr))
			}
			logger.Info("reusing existing report", "report_id", existing.ID)
			job = job.WithReport(existing.ID)
		default:
			logger.Error("failed to persist report artifact", "error", err)
			return w.failJob(ctx, job, fmt.Errorf("failed to persist report: %w", err))
		}
	}

	completed, err := Transition(job, domain.JobStatusCompleted)
	if err != nil {
		// Data-integrity fault: log and leave the job untouched for
		// operator inspection.
		logger.Error("illegal completion transition", "error", err, "status", job.Status)
		return nil
	}

	if err := w.jobs.Save(ctx, &completed); err != nil {
		return fmt.Errorf("%w: failed to persist completed job: %v", ErrStoreUnavailable, err)
	}

	w.emit(ctx, completed, domain.JobStatusRunning, "")
	logger.Info("job completed")
	return nil
}

// failJob moves the job to the failed status, records the failure with the
// retry tracker, and re-queues the job when it still has retries left.
func (w *Worker) failJob(ctx context.Context, job domain.Job, cause error) error {
	logger := w.logger.With("job_id", job.ID, "job_type", job.JobType)

	failed, err := Transition(job, domain.JobStatusFailed)
	if err != nil {
		logger.Error("illegal failure transition", "error", err, "status", job.Status)
		return nil
	}

	if err := w.jobs.Save(ctx, &failed); err != nil {
		return fmt.Errorf("%w: failed to persist failed job: %v", ErrStoreUnavailable, err)
	}
	w.emit(ctx, failed, domain.JobStatusRunning, cause.Error())

	decision, err := w.retries.RecordFailure(ctx, job.ID, cause, time.Now().UTC())
	if err != nil {
		// Bookkeeping failed; the job stays failed and an operator can
		// re-queue it manually.
		logger.Error("failed to record retry bookkeeping", "error", err)
		return nil
	}

	if !decision.Requeue {
		logger.Info("job permanently failed",
			"retry_count", decision.Info.RetryCount,
			"max_retries", decision.Info.MaxRetries)
		return nil
	}

	requeued, err := Transition(failed, domain.JobStatusQueued)
	if err != nil {
		logger.Error("illegal re-queue transition", "error", err, "status", failed.Status)
		return nil
	}
	requeued = requeued.WithSchedule(decision.NextRetryAt)

	if err := w.jobs.Save(ctx, &requeued); err != nil {
		return fmt.Errorf("%w: failed to persist re-queued job: %v", ErrStoreUnavailable, err)
	}
	w.emit(ctx, requeued, domain.JobStatusFailed, "")

	logger.Info("job re-queued for retry",
		"retry_count", decision.Info.RetryCount,
		"next_retry_at", decision.NextRetryAt)
	return nil
}

// emit publishes a status-changed event. Emission failures are logged by the
// emitter; they never affect job processing.
func (w *Worker) emit(ctx context.Context, job domain.Job, from domain.JobStatus, errMsg string) {
	if w.emitter == nil {
		return
	}
	event := events.NewJobStatusEvent(job, from, errMsg)
	if err := w.emitter.EmitEvent(ctx, event); err != nil {
		w.logger.Debug("status event delivery failed",
			"job_id", job.ID,
			"to", job.Status,
			"error", err)
	}
}

// stalledJobMonitor periodically re-queues jobs that have been running
// longer than the configured age. With single-job execution a long-running
// status almost always means the process died mid-job.
func (w *Worker) stalledJobMonitor() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.StalledCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			reclaimed, err := w.jobs.ReclaimStalled(w.ctx, w.config.StalledJobAge)
			if err != nil {
				w.logger.Error("failed to check for stalled jobs", "error", err)
				continue
			}
			if reclaimed > 0 {
				w.logger.Info("re-queued stalled jobs", "count", reclaimed)
			}
		}
	}
}
