package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReportService implements service.ReportService with canned responses.
type stubReportService struct {
	download *service.ReportDownload
	report   *domain.Report
	err      error
}

func (s *stubReportService) Download(_ context.Context, _ uuid.UUID) (*service.ReportDownload, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.download, nil
}

func (s *stubReportService) GetByJob(_ context.Context, _ uuid.UUID) (*domain.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func newReportRouter(svc service.ReportService) http.Handler {
	handler := NewReportHandler(svc)
	r := chi.NewRouter()
	r.Get("/api/reports/{id}/download", handler.DownloadReport)
	return r
}

func TestReportHandler_DownloadReport(t *testing.T) {
	t.Parallel()

	t.Run("streams the file with download headers", func(t *testing.T) {
		t.Parallel()

		router := newReportRouter(&stubReportService{
			download: &service.ReportDownload{
				FileName:    "task-list-20260826T120000Z.txt",
				Content:     []byte("Write docs\tpending\t2026-08-26T10:00:00Z\n"),
				ContentType: "text/plain; charset=utf-8",
			},
		})

		req := httptest.NewRequest(http.MethodGet,
			"/api/reports/"+uuid.NewString()+"/download", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "task-list-20260826T120000Z.txt")
		assert.Contains(t, rec.Body.String(), "Write docs")
	})

	t.Run("maps not-found to 404", func(t *testing.T) {
		t.Parallel()

		router := newReportRouter(&stubReportService{err: service.ErrReportNotFound})
		req := httptest.NewRequest(http.MethodGet,
			"/api/reports/"+uuid.NewString()+"/download", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		t.Parallel()

		router := newReportRouter(&stubReportService{})
		req := httptest.NewRequest(http.MethodGet, "/api/reports/abc/download", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
