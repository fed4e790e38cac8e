package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReportStatus represents the lifecycle state of a report artifact
type ReportStatus string

// Possible report status values
const (
	ReportStatusGenerated  ReportStatus = "generated"
	ReportStatusDownloaded ReportStatus = "downloaded"
	ReportStatusExpired    ReportStatus = "expired"
)

// Common validation errors for Report
var (
	ErrEmptyReportID       = errors.New("report ID cannot be empty")
	ErrEmptyReportJobID    = errors.New("report job ID cannot be empty")
	ErrEmptyReportFileName = errors.New("report file name cannot be empty")
	ErrInvalidReportStatus = errors.New("invalid report status")
)

// Report is an artifact produced by a successful job execution. Each job
// produces at most one report; the store enforces the one-to-one relationship.
// Content may be empty (a report over an empty task set is still a report).
type Report struct {
	ID          uuid.UUID    `json:"id"`
	JobID       uuid.UUID    `json:"job_id"`
	FileName    string       `json:"file_name"`
	Content     []byte       `json:"-"`
	ContentType string       `json:"content_type"`
	CreatedAt   time.Time    `json:"created_at"`
	Status      ReportStatus `json:"status"`
}

// NewReport creates a new Report for the given job with the given file name,
// content, and content type. The report starts in the generated status.
// Returns an error if validation fails.
func NewReport(jobID uuid.UUID, fileName string, content []byte, contentType string) (*Report, error) {
	report := &Report{
		ID:          uuid.New(),
		JobID:       jobID,
		FileName:    fileName,
		Content:     content,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
		Status:      ReportStatusGenerated,
	}

	if err := report.Validate(); err != nil {
		return nil, err
	}

	return report, nil
}

// Validate checks if the Report has valid data.
// Returns an error if any field fails validation.
func (r *Report) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReportID
	}

	if r.JobID == uuid.Nil {
		return ErrEmptyReportJobID
	}

	if r.FileName == "" {
		return ErrEmptyReportFileName
	}

	if !isValidReportStatus(r.Status) {
		return ErrInvalidReportStatus
	}

	return nil
}

// WithStatus returns a copy of the report with the given status.
// The receiver is not modified.
func (r Report) WithStatus(status ReportStatus) Report {
	r.Status = status
	return r
}

// isValidReportStatus checks if the given status is a valid ReportStatus.
func isValidReportStatus(status ReportStatus) bool {
	switch status {
	case ReportStatusGenerated, ReportStatusDownloaded, ReportStatusExpired:
		return true
	default:
		return false
	}
}
