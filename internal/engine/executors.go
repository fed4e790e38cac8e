package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/store"
)

// reportTimestampLayout derives report file names from the generation time.
const reportTimestampLayout = "20060102T150405Z"

// MarkTasksCompletedExecutor transitions every task that is not already
// completed to the completed status, persisting the whole set as one batch.
// Running it against an already-completed task set is a no-op, so the job
// is idempotent under at-least-once delivery.
type MarkTasksCompletedExecutor struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewMarkTasksCompletedExecutor creates the executor for the
// mark_tasks_completed job type.
func NewMarkTasksCompletedExecutor(tasks store.TaskStore, logger *slog.Logger) *MarkTasksCompletedExecutor {
	return &MarkTasksCompletedExecutor{
		tasks:  tasks,
		logger: logger.With("component", "mark_tasks_completed_executor"),
	}
}

// Execute loads all tasks not already completed and completes them in a
// single batch. Produces no artifact.
func (e *MarkTasksCompletedExecutor) Execute(ctx context.Context, job domain.Job) (Result, error) {
	pending, err := e.tasks.List(ctx, store.TaskFilter{
		ExcludeStatus: domain.TaskStatusCompleted,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to load open tasks: %w", err)
	}

	if len(pending) == 0 {
		e.logger.Info("no open tasks to complete", "job_id", job.ID)
		return Result{}, nil
	}

	completed := make([]*domain.Task, 0, len(pending))
	for _, task := range pending {
		// Stamp each task with the job that completed it.
		done := task.WithStatus(domain.TaskStatusCompleted).WithJob(job.ID)
		completed = append(completed, &done)
	}

	// A cancelled execution must not persist a partial outcome.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := e.tasks.UpdateBatch(ctx, completed); err != nil {
		return Result{}, fmt.Errorf("failed to complete task batch: %w", err)
	}

	e.logger.Info("task batch completed",
		"job_id", job.ID,
		"task_count", len(completed))
	return Result{}, nil
}

// GenerateTaskListExecutor renders a deterministic plain-text snapshot of all
// tasks, one line per task, and produces it as a report artifact. An empty
// task set produces an empty report, not an error.
type GenerateTaskListExecutor struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewGenerateTaskListExecutor creates the executor for the
// generate_task_list job type.
func NewGenerateTaskListExecutor(tasks store.TaskStore, logger *slog.Logger) *GenerateTaskListExecutor {
	return &GenerateTaskListExecutor{
		tasks:  tasks,
		logger: logger.With("component", "generate_task_list_executor"),
	}
}

// Execute snapshots all tasks into a text report with a timestamp-derived
// file name.
func (e *GenerateTaskListExecutor) Execute(ctx context.Context, job domain.Job) (Result, error) {
	tasks, err := e.tasks.List(ctx, store.TaskFilter{})
	if err != nil {
		return Result{}, fmt.Errorf("failed to load tasks: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	content := renderTaskList(tasks)
	fileName := fmt.Sprintf("task-list-%s.txt", time.Now().UTC().Format(reportTimestampLayout))

	report, err := domain.NewReport(job.ID, fileName, content, "text/plain; charset=utf-8")
	if err != nil {
		return Result{}, fmt.Errorf("failed to build report: %w", err)
	}

	e.logger.Info("task list report generated",
		"job_id", job.ID,
		"file_name", fileName,
		"task_count", len(tasks),
		"bytes", len(content))
	return Result{Artifact: report}, nil
}

// renderTaskList produces one tab-separated line per task: title, status,
// creation time. Tasks are ordered by creation time with the ID as a
// tie-break so the same task set always renders the same bytes.
func renderTaskList(tasks []*domain.Task) []byte {
	sorted := make([]*domain.Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID.String() < sorted[j].ID.String()
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var buf bytes.Buffer
	for _, task := range sorted {
		fmt.Fprintf(&buf, "%s\t%s\t%s\n",
			task.Title,
			task.Status,
			task.CreatedAt.UTC().Format(time.RFC3339))
	}
	if buf.Len() == 0 {
		// An empty report body must still be a value, not NULL, when the
		// content column is written.
		return []byte{}
	}
	return buf.Bytes()
}
