package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/store"
)

// TaskService provides task CRUD operations.
type TaskService interface {
	// CreateTask creates a new task in the pending status.
	CreateTask(ctx context.Context, title, description string) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves tasks matching the filter.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)

	// UpdateTask updates a task's title, description, and status.
	// Returns ErrTaskInProgress if the task is currently claimed by a job;
	// the engine is the only actor that moves tasks in and out of
	// in-progress.
	UpdateTask(ctx context.Context, id uuid.UUID, title, description string, status domain.TaskStatus) (*domain.Task, error)

	// DeleteTask removes a task.
	// Returns ErrTaskInProgress if the task is currently claimed by a job.
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the task store is nil.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "task store cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With("component", "task_service"),
	}, nil
}

// CreateTask creates and persists a new pending task.
func (s *taskServiceImpl) CreateTask(ctx context.Context, title, description string) (*domain.Task, error) {
	task, err := domain.NewTask(title, description)
	if err != nil {
		s.logger.Warn("invalid task payload", "error", err)
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task", "error", err, "task_id", task.ID)
		return nil, NewServiceError("create_task", "failed to save task", err)
	}

	s.logger.Info("task created", "task_id", task.ID)
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("failed to retrieve task", "error", err, "task_id", id)
		return nil, NewServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// ListTasks retrieves tasks matching the filter.
func (s *taskServiceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// UpdateTask updates a task, guarding tasks the engine has claimed.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	title, description string,
	status domain.TaskStatus,
) (*domain.Task, error) {
	existing, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewServiceError("update_task", "failed to load task", err)
	}

	if existing.Status == domain.TaskStatusInProgress {
		s.logger.Warn("rejected update of in-progress task", "task_id", id)
		return nil, ErrTaskInProgress
	}

	// Only the job engine moves tasks in and out of in_progress.
	if status == domain.TaskStatusInProgress {
		s.logger.Warn("rejected client attempt to set in-progress status", "task_id", id)
		return nil, ErrTaskInProgress
	}

	updated := *existing
	updated.Title = title
	updated.Description = description
	updated.Status = status
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		s.logger.Warn("invalid task update", "error", err, "task_id", id)
		return nil, err
	}

	if err := s.tasks.Update(ctx, &updated); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("failed to update task", "error", err, "task_id", id)
		return nil, NewServiceError("update_task", "failed to save task", err)
	}

	s.logger.Info("task updated", "task_id", id, "status", updated.Status)
	return &updated, nil
}

// DeleteTask removes a task, guarding tasks the engine has claimed.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	existing, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return NewServiceError("delete_task", "failed to load task", err)
	}

	if existing.Status == domain.TaskStatusInProgress {
		s.logger.Warn("rejected delete of in-progress task", "task_id", id)
		return ErrTaskInProgress
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		s.logger.Error("failed to delete task", "error", err, "task_id", id)
		return NewServiceError("delete_task", "failed to delete task", err)
	}

	s.logger.Info("task deleted", "task_id", id)
	return nil
}
