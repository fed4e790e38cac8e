package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/service"
	"github.com/jmorrow/taskforge/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTaskService implements service.TaskService with canned responses.
type stubTaskService struct {
	task *domain.Task
	list []*domain.Task
	err  error
}

func (s *stubTaskService) CreateTask(_ context.Context, title, description string) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.task, nil
}

func (s *stubTaskService) GetTask(_ context.Context, _ uuid.UUID) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.task, nil
}

func (s *stubTaskService) ListTasks(_ context.Context, _ store.TaskFilter) ([]*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubTaskService) UpdateTask(
	_ context.Context, _ uuid.UUID, _, _ string, _ domain.TaskStatus,
) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.task, nil
}

func (s *stubTaskService) DeleteTask(_ context.Context, _ uuid.UUID) error {
	return s.err
}

func newTaskRouter(svc service.TaskService) http.Handler {
	handler := NewTaskHandler(svc)
	r := chi.NewRouter()
	r.Post("/api/tasks", handler.CreateTask)
	r.Get("/api/tasks", handler.ListTasks)
	r.Get("/api/tasks/{id}", handler.GetTask)
	r.Put("/api/tasks/{id}", handler.UpdateTask)
	r.Delete("/api/tasks/{id}", handler.DeleteTask)
	return r
}

func sampleTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("Write docs", "user guide")
	require.NoError(t, err)
	return task
}

func TestTaskHandler_CreateTask(t *testing.T) {
	t.Parallel()

	t.Run("returns 201 with the created task", func(t *testing.T) {
		t.Parallel()

		task := sampleTask(t)
		router := newTaskRouter(&stubTaskService{task: task})

		body := bytes.NewBufferString(`{"title":"Write docs","description":"user guide"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, task.ID.String(), resp.ID)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{})
		req := httptest.NewRequest(http.MethodPost, "/api/tasks",
			bytes.NewBufferString(`{"description":"no title"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{})
		req := httptest.NewRequest(http.MethodPost, "/api/tasks",
			bytes.NewBufferString(`{not json`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandler_GetTask(t *testing.T) {
	t.Parallel()

	t.Run("returns the task", func(t *testing.T) {
		t.Parallel()

		task := sampleTask(t)
		router := newTaskRouter(&stubTaskService{task: task})

		req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+task.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("maps not-found to 404", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{err: service.ErrTaskNotFound})
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{})
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("maps in-progress guard to 409", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{err: service.ErrTaskInProgress})
		body := bytes.NewBufferString(`{"title":"x","status":"pending"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+uuid.NewString(), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("rejects unknown status value", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{})
		body := bytes.NewBufferString(`{"title":"x","status":"archived"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+uuid.NewString(), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects in_progress status value", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{})
		body := bytes.NewBufferString(`{"title":"x","status":"in_progress"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+uuid.NewString(), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code,
			"clients must not move tasks into in_progress")
	})
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("returns 204 on success", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{})
		req := httptest.NewRequest(http.MethodDelete, "/api/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("maps in-progress guard to 409", func(t *testing.T) {
		t.Parallel()

		router := newTaskRouter(&stubTaskService{err: service.ErrTaskInProgress})
		req := httptest.NewRequest(http.MethodDelete, "/api/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Parallel()

	task := sampleTask(t)
	router := newTaskRouter(&stubTaskService{list: []*domain.Task{task}})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?status=pending", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, task.ID.String(), resp[0].ID)
}
