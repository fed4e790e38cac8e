package api

import (
	"time"

	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/service"
)

// Request and response shapes for the task, job, and report endpoints.

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

// UpdateTaskRequest defines the payload for updating a task. The in_progress
// status is not accepted here; only the job engine moves tasks in and out of
// it.
type UpdateTaskRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Status      string `json:"status"      validate:"required,oneof=pending completed"`
}

// TaskResponse is the API-facing task record.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	JobID       string    `json:"job_id,omitempty"`
}

// EnqueueJobRequest defines the payload for enqueueing a job.
type EnqueueJobRequest struct {
	JobType     string     `json:"job_type"     validate:"required,min=1"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// JobResponse is the API-facing job record.
type JobResponse struct {
	ID               string     `json:"id"`
	JobType          string     `json:"job_type"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	HasReport        bool       `json:"has_report"`
	ReportID         string     `json:"report_id,omitempty"`
	ReportFileName   string     `json:"report_file_name,omitempty"`
	LastErrorMessage string     `json:"last_error_message,omitempty"`
	RetryCount       int        `json:"retry_count,omitempty"`
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.JobID != nil {
		resp.JobID = task.JobID.String()
	}
	return resp
}

// jobToResponse converts a service.JobDetail to a JobResponse.
func jobToResponse(detail *service.JobDetail) JobResponse {
	resp := JobResponse{
		ID:               detail.Job.ID.String(),
		JobType:          string(detail.Job.JobType),
		Status:           string(detail.Job.Status),
		CreatedAt:        detail.Job.CreatedAt,
		ScheduledAt:      detail.Job.ScheduledAt,
		HasReport:        detail.HasReport,
		ReportFileName:   detail.ReportFileName,
		LastErrorMessage: detail.LastErrorMessage,
		RetryCount:       detail.RetryCount,
	}
	if detail.Job.ReportID != nil {
		resp.ReportID = detail.Job.ReportID.String()
	}
	return resp
}
