package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/store"
)

// ReportDownload is the download contract: the artifact's file name, raw
// content, and content type.
type ReportDownload struct {
	FileName    string
	Content     []byte
	ContentType string
}

// TxRunner executes a function inside a database transaction. Satisfied by
// store.TxManager.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn store.TxFn) error
}

// ReportService provides access to job-produced report artifacts.
type ReportService interface {
	// Download returns the report's content and marks the report as
	// downloaded. Returns ErrReportNotFound if the report does not exist.
	Download(ctx context.Context, id uuid.UUID) (*ReportDownload, error)

	// GetByJob retrieves the report produced by the given job.
	// Returns ErrReportNotFound if the job has no report.
	GetByJob(ctx context.Context, jobID uuid.UUID) (*domain.Report, error)
}

// reportServiceImpl implements the ReportService interface.
type reportServiceImpl struct {
	reports store.ReportStore
	tx      TxRunner
	logger  *slog.Logger
}

// NewReportService creates a new ReportService.
// It returns an error if the report store or transaction runner is nil.
func NewReportService(reports store.ReportStore, tx TxRunner, logger *slog.Logger) (ReportService, error) {
	if reports == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "report store cannot be nil",
		}
	}
	if tx == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "transaction runner cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reportServiceImpl{
		reports: reports,
		tx:      tx,
		logger:  logger.With("component", "report_service"),
	}, nil
}

// Download loads the report and records the download by moving the report to
// the downloaded status. The read and the status update run in one
// transaction so the record never shows downloaded without the content having
// been served from the same snapshot.
func (s *reportServiceImpl) Download(ctx context.Context, id uuid.UUID) (*ReportDownload, error) {
	var report *domain.Report

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		reports := s.reports.WithTx(tx)

		var err error
		report, err = reports.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if report.Status != domain.ReportStatusGenerated {
			return nil
		}
		return reports.UpdateStatus(ctx, id, domain.ReportStatusDownloaded)
	})
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("failed to download report", "error", err, "report_id", id)
		return nil, NewServiceError("download_report", "failed to download report", err)
	}

	s.logger.Info("report downloaded",
		"report_id", id,
		"file_name", report.FileName,
		"size_bytes", len(report.Content))

	return &ReportDownload{
		FileName:    report.FileName,
		Content:     report.Content,
		ContentType: report.ContentType,
	}, nil
}

// GetByJob retrieves the report owned by the given job.
func (s *reportServiceImpl) GetByJob(ctx context.Context, jobID uuid.UUID) (*domain.Report, error) {
	report, err := s.reports.GetByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("failed to retrieve report for job", "error", err, "job_id", jobID)
		return nil, NewServiceError("get_report", "failed to retrieve report", err)
	}
	return report, nil
}
