package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskService(t *testing.T) (TaskService, *fakeTaskStore) {
	t.Helper()
	tasks := newFakeTaskStore()
	svc, err := NewTaskService(tasks, testLogger())
	require.NoError(t, err)
	return svc, tasks
}

func seedTask(t *testing.T, tasks *fakeTaskStore, title string, status domain.TaskStatus) domain.Task {
	t.Helper()
	task, err := domain.NewTask(title, "")
	require.NoError(t, err)
	seeded := task.WithStatus(status)
	require.NoError(t, tasks.Create(context.Background(), &seeded))
	return seeded
}

func TestNewTaskService_NilStore(t *testing.T) {
	t.Parallel()

	_, err := NewTaskService(nil, testLogger())
	assert.Error(t, err)
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Parallel()

	t.Run("creates pending task", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newTaskService(t)
		task, err := svc.CreateTask(context.Background(), "Write release notes", "for v1.2")
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusPending, task.Status)
		stored, err := tasks.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write release notes", stored.Title)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTaskService(t)
		_, err := svc.CreateTask(context.Background(), "", "")
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("updates an editable task", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newTaskService(t)
		seeded := seedTask(t, tasks, "Old title", domain.TaskStatusPending)

		updated, err := svc.UpdateTask(context.Background(),
			seeded.ID, "New title", "desc", domain.TaskStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	})

	t.Run("rejects update of in-progress task", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newTaskService(t)
		seeded := seedTask(t, tasks, "Claimed", domain.TaskStatusInProgress)

		_, err := svc.UpdateTask(context.Background(),
			seeded.ID, "New title", "", domain.TaskStatusPending)
		assert.ErrorIs(t, err, ErrTaskInProgress)

		// The task must be untouched.
		stored, err := tasks.GetByID(context.Background(), seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, "Claimed", stored.Title)
	})

	t.Run("rejects client setting in-progress status", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newTaskService(t)
		seeded := seedTask(t, tasks, "Editable", domain.TaskStatusPending)

		_, err := svc.UpdateTask(context.Background(),
			seeded.ID, "Editable", "", domain.TaskStatusInProgress)
		assert.ErrorIs(t, err, ErrTaskInProgress,
			"only the job engine may move tasks into in_progress")

		stored, err := tasks.GetByID(context.Background(), seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, stored.Status)
	})

	t.Run("unknown task maps to service sentinel", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTaskService(t)
		_, err := svc.UpdateTask(context.Background(),
			uuid.New(), "x", "", domain.TaskStatusPending)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("deletes an editable task", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newTaskService(t)
		seeded := seedTask(t, tasks, "Done with this", domain.TaskStatusCompleted)

		require.NoError(t, svc.DeleteTask(context.Background(), seeded.ID))
		_, err := tasks.GetByID(context.Background(), seeded.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("rejects delete of in-progress task", func(t *testing.T) {
		t.Parallel()

		svc, tasks := newTaskService(t)
		seeded := seedTask(t, tasks, "Claimed", domain.TaskStatusInProgress)

		err := svc.DeleteTask(context.Background(), seeded.ID)
		assert.ErrorIs(t, err, ErrTaskInProgress)

		_, err = tasks.GetByID(context.Background(), seeded.ID)
		assert.NoError(t, err, "task must survive the rejected delete")
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	t.Parallel()

	svc, tasks := newTaskService(t)
	seedTask(t, tasks, "A", domain.TaskStatusPending)
	seedTask(t, tasks, "B", domain.TaskStatusCompleted)

	pending, err := svc.ListTasks(context.Background(),
		store.TaskFilter{Status: domain.TaskStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "A", pending[0].Title)
}
