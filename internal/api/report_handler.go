package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jmorrow/taskforge/internal/api/shared"
	"github.com/jmorrow/taskforge/internal/service"
)

// ReportHandler handles report download requests.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// DownloadReport handles GET /api/reports/{id}/download requests. It streams
// the report content as a file attachment; downloading also moves the report
// to the downloaded status.
func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	download, err := h.reportService.Download(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", download.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", download.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(download.Content); err != nil {
		// Headers are already out; nothing to send the client.
		return
	}
}
