package engine

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/store"
)

// In-memory store implementations for testing the engine without a database.
// Each store guards its map with a mutex and supports error injection via
// the *Fn hooks, mirroring how the claim and save paths fail in production.

// MockJobStore is an in-memory implementation of store.JobStore.
type MockJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]domain.Job

	// ClaimFn and SaveFn, when set, replace the default behavior.
	ClaimFn func(ctx context.Context) (*domain.Job, error)
	SaveFn  func(ctx context.Context, job *domain.Job) error
}

// NewMockJobStore creates an empty MockJobStore.
func NewMockJobStore() *MockJobStore {
	return &MockJobStore{jobs: make(map[uuid.UUID]domain.Job)}
}

// Create stores a new job.
func (s *MockJobStore) Create(_ context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

// Save upserts the job's current state.
func (s *MockJobStore) Save(ctx context.Context, job *domain.Job) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, job)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

// GetByID returns the stored job or store.ErrJobNotFound.
func (s *MockJobStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return &job, nil
}

// List returns jobs matching the filter, newest first.
func (s *MockJobStore) List(_ context.Context, filter store.JobFilter) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		j := job
		out = append(out, &j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ClaimNextEligible claims the oldest eligible queued job and moves it to
// running, or returns store.ErrNoEligibleJobs.
func (s *MockJobStore) ClaimNextEligible(ctx context.Context) (*domain.Job, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var candidate *domain.Job
	for id := range s.jobs {
		job := s.jobs[id]
		if !job.Eligible(now) {
			continue
		}
		if candidate == nil || job.CreatedAt.Before(candidate.CreatedAt) {
			j := job
			candidate = &j
		}
	}
	if candidate == nil {
		return nil, store.ErrNoEligibleJobs
	}

	claimed := candidate.WithStatus(domain.JobStatusRunning)
	s.jobs[claimed.ID] = claimed
	return &claimed, nil
}

// ReclaimStalled resets running jobs older than the cutoff back to queued.
func (s *MockJobStore) ReclaimStalled(_ context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	count := 0
	for id := range s.jobs {
		job := s.jobs[id]
		if job.Status != domain.JobStatusRunning {
			continue
		}
		if olderThan > 0 && job.UpdatedAt.After(cutoff) {
			continue
		}
		s.jobs[id] = job.WithStatus(domain.JobStatusQueued)
		count++
	}
	return count, nil
}

// WithTx returns the store itself; the mock has no real transactions.
func (s *MockJobStore) WithTx(_ *sql.Tx) store.JobStore { return s }

// RunningCount returns how many stored jobs are currently running.
// Used to assert the single-running-job invariant.
func (s *MockJobStore) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, job := range s.jobs {
		if job.Status == domain.JobStatusRunning {
			count++
		}
	}
	return count
}

// MockTaskStore is an in-memory implementation of store.TaskStore.
type MockTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]domain.Task

	// ListFn and UpdateBatchFn, when set, replace the default behavior.
	ListFn        func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateBatchFn func(ctx context.Context, tasks []*domain.Task) error
}

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]domain.Task)}
}

// Create stores a new task.
func (s *MockTaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

// GetByID returns the stored task or store.ErrTaskNotFound.
func (s *MockTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &task, nil
}

// List returns tasks matching the filter ordered by creation time.
func (s *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.ExcludeStatus != "" && task.Status == filter.ExcludeStatus {
			continue
		}
		t := task
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update replaces an existing task.
func (s *MockTaskStore) Update(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

// UpdateBatch replaces all given tasks at once.
func (s *MockTaskStore) UpdateBatch(ctx context.Context, tasks []*domain.Task) error {
	if s.UpdateBatchFn != nil {
		return s.UpdateBatchFn(ctx, tasks)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range tasks {
		s.tasks[task.ID] = *task
	}
	return nil
}

// Delete removes a task.
func (s *MockTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// WithTx returns the store itself; the mock has no real transactions.
func (s *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return s }

// MockReportStore is an in-memory implementation of store.ReportStore.
type MockReportStore struct {
	mu      sync.Mutex
	reports map[uuid.UUID]domain.Report

	// CreateFn, when set, replaces the default behavior.
	CreateFn func(ctx context.Context, report *domain.Report) error
}

// NewMockReportStore creates an empty MockReportStore.
func NewMockReportStore() *MockReportStore {
	return &MockReportStore{reports: make(map[uuid.UUID]domain.Report)}
}

// Create stores a new report, enforcing the one-report-per-job invariant.
func (s *MockReportStore) Create(ctx context.Context, report *domain.Report) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, report)
	}
	if err := report.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reports {
		if existing.JobID == report.JobID {
			return store.ErrReportExists
		}
	}
	s.reports[report.ID] = *report
	return nil
}

// GetByID returns the stored report or store.ErrReportNotFound.
func (s *MockReportStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, store.ErrReportNotFound
	}
	return &report, nil
}

// GetByJobID returns the report owned by the job or store.ErrReportNotFound.
func (s *MockReportStore) GetByJobID(_ context.Context, jobID uuid.UUID) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, report := range s.reports {
		if report.JobID == jobID {
			r := report
			return &r, nil
		}
	}
	return nil, store.ErrReportNotFound
}

// UpdateStatus updates a stored report's status.
func (s *MockReportStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ReportStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return store.ErrReportNotFound
	}
	s.reports[id] = report.WithStatus(status)
	return nil
}

// WithTx returns the store itself; the mock has no real transactions.
func (s *MockReportStore) WithTx(_ *sql.Tx) store.ReportStore { return s }

// MockRetryStore is an in-memory implementation of store.RetryStore.
type MockRetryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]domain.RetryInfo

	// UpsertFn, when set, replaces the default behavior.
	UpsertFn func(ctx context.Context, info *domain.RetryInfo) error
}

// NewMockRetryStore creates an empty MockRetryStore.
func NewMockRetryStore() *MockRetryStore {
	return &MockRetryStore{entries: make(map[uuid.UUID]domain.RetryInfo)}
}

// Get returns the retry info for the job or store.ErrRetryInfoNotFound.
func (s *MockRetryStore) Get(_ context.Context, jobID uuid.UUID) (*domain.RetryInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.entries[jobID]
	if !ok {
		return nil, store.ErrRetryInfoNotFound
	}
	return &info, nil
}

// Upsert creates or replaces the retry info for its job.
func (s *MockRetryStore) Upsert(ctx context.Context, info *domain.RetryInfo) error {
	if s.UpsertFn != nil {
		return s.UpsertFn(ctx, info)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[info.JobID] = *info
	return nil
}

// WithTx returns the store itself; the mock has no real transactions.
func (s *MockRetryStore) WithTx(_ *sql.Tx) store.RetryStore { return s }

// Compile-time interface checks.
var (
	_ store.JobStore    = (*MockJobStore)(nil)
	_ store.TaskStore   = (*MockTaskStore)(nil)
	_ store.ReportStore = (*MockReportStore)(nil)
	_ store.RetryStore  = (*MockRetryStore)(nil)
)
