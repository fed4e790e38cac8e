package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/store"
)

// Shared in-memory fakes for the service tests. Simpler than the engine's
// mocks: no concurrency, no error-injection hooks beyond what these tests
// need.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTaskStore struct {
	tasks map[uuid.UUID]domain.Task

	createErr error
	updateErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]domain.Task)}
}

func (s *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &task, nil
}

func (s *fakeTaskStore) List(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	out := []*domain.Task{}
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
	return out, nil
}

func (s *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *fakeTaskStore) UpdateBatch(_ context.Context, tasks []*domain.Task) error {
	for _, task := range tasks {
		s.tasks[task.ID] = *task
	}
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return s }

type fakeJobStore struct {
	jobs map[uuid.UUID]domain.Job

	createErr error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]domain.Job)}
}

func (s *fakeJobStore) Create(_ context.Context, job *domain.Job) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *fakeJobStore) Save(_ context.Context, job *domain.Job) error {
	s.jobs[job.ID] = *job
	return nil
}

func (s *fakeJobStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return &job, nil
}

func (s *fakeJobStore) List(_ context.Context, filter store.JobFilter) ([]*domain.Job, error) {
	out := []*domain.Job{}
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		j := job
		out = append(out, &j)
	}
	return out, nil
}

func (s *fakeJobStore) ClaimNextEligible(_ context.Context) (*domain.Job, error) {
	return nil, store.ErrNoEligibleJobs
}

func (s *fakeJobStore) ReclaimStalled(_ context.Context, _ time.Duration) (int, error) {
	return 0, nil
}

func (s *fakeJobStore) WithTx(_ *sql.Tx) store.JobStore { return s }

type fakeReportStore struct {
	reports map[uuid.UUID]domain.Report

	updateStatusErr error
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[uuid.UUID]domain.Report)}
}

func (s *fakeReportStore) Create(_ context.Context, report *domain.Report) error {
	for _, existing := range s.reports {
		if existing.JobID == report.JobID {
			return store.ErrReportExists
		}
	}
	s.reports[report.ID] = *report
	return nil
}

func (s *fakeReportStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Report, error) {
	report, ok := s.reports[id]
	if !ok {
		return nil, store.ErrReportNotFound
	}
	return &report, nil
}

func (s *fakeReportStore) GetByJobID(_ context.Context, jobID uuid.UUID) (*domain.Report, error) {
	for _, report := range s.reports {
		if report.JobID == jobID {
			r := report
			return &r, nil
		}
	}
	return nil, store.ErrReportNotFound
}

func (s *fakeReportStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ReportStatus) error {
	if s.updateStatusErr != nil {
		return s.updateStatusErr
	}
	report, ok := s.reports[id]
	if !ok {
		return store.ErrReportNotFound
	}
	s.reports[id] = report.WithStatus(status)
	return nil
}

func (s *fakeReportStore) WithTx(_ *sql.Tx) store.ReportStore { return s }

type fakeRetryStore struct {
	entries map[uuid.UUID]domain.RetryInfo
}

func newFakeRetryStore() *fakeRetryStore {
	return &fakeRetryStore{entries: make(map[uuid.UUID]domain.RetryInfo)}
}

func (s *fakeRetryStore) Get(_ context.Context, jobID uuid.UUID) (*domain.RetryInfo, error) {
	info, ok := s.entries[jobID]
	if !ok {
		return nil, store.ErrRetryInfoNotFound
	}
	return &info, nil
}

func (s *fakeRetryStore) Upsert(_ context.Context, info *domain.RetryInfo) error {
	s.entries[info.JobID] = *info
	return nil
}

func (s *fakeRetryStore) WithTx(_ *sql.Tx) store.RetryStore { return s }

// fakeCatalog accepts a fixed set of job types.
type fakeCatalog map[domain.JobType]bool

func (c fakeCatalog) Contains(jobType domain.JobType) bool { return c[jobType] }

// fakeTxRunner runs the function directly; the fakes above ignore the nil tx.
type fakeTxRunner struct {
	beginErr error
}

func (r fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if r.beginErr != nil {
		return r.beginErr
	}
	return fn(ctx, nil)
}
