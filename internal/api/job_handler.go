package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmorrow/taskforge/internal/api/shared"
	"github.com/jmorrow/taskforge/internal/domain"
	"github.com/jmorrow/taskforge/internal/service"
	"github.com/jmorrow/taskforge/internal/store"
)

// JobHandler handles job-related HTTP requests.
type JobHandler struct {
	jobService service.JobService
	validator  *validator.Validate
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		validator:  validator.New(),
	}
}

// EnqueueJob handles POST /api/jobs requests. Processing is asynchronous, so
// a successful enqueue returns 202 Accepted with the queued job record.
func (h *JobHandler) EnqueueJob(w http.ResponseWriter, r *http.Request) {
	var req EnqueueJobRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	job, err := h.jobService.Enqueue(r.Context(), domain.JobType(req.JobType), req.ScheduledAt)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, jobToResponse(&service.JobDetail{Job: *job}))
}

// GetJob handles GET /api/jobs/{id} requests.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.jobService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(detail))
}

// ListJobs handles GET /api/jobs requests. An optional "status" query
// parameter filters by job status.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := store.JobFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.JobStatus(status)
	}

	details, err := h.jobService.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list jobs")
		return
	}

	responses := make([]JobResponse, 0, len(details))
	for _, detail := range details {
		responses = append(responses, jobToResponse(detail))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
