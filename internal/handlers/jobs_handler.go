package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/jobs"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/reports"
)

// JobsHandler handles submission and inspection of dubbing, enhance and
// diagnose jobs.
type JobsHandler struct {
	jobs    *jobs.Service
	store   interfaces.StorageManager
	reports *reports.Service
	logger  arbor.ILogger
}

func NewJobsHandler(jobsService *jobs.Service, store interfaces.StorageManager, reportsService *reports.Service, logger arbor.ILogger) *JobsHandler {
	return &JobsHandler{
		jobs:    jobsService,
		store:   store,
		reports: reportsService,
		logger:  logger,
	}
}

// SubmitDubbingHandler handles POST /api/media/dubbing
func (h *JobsHandler) SubmitDubbingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req jobs.SubmitDubbingRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.jobs.SubmitDubbing(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Str("media_id", req.MediaID).Msg("Dubbing submission failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, job)
}

// ListDubbingHandler handles GET /api/media/dubbing
func (h *JobsHandler) ListDubbingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.store.DubbingStorage().ListByUser(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// DubbingItemHandler handles GET /api/media/dubbing/{id} and
// DELETE /api/media/dubbing/{id}.
func (h *JobsHandler) DubbingItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/media/dubbing/")

	if r.Method == http.MethodDelete {
		if err := h.jobs.RemoveDubbing(r.Context(), id); err != nil {
			h.logger.Error().Err(err).Str("job_id", id).Msg("Dubbing removal failed")
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "removed"})
		return
	}

	if !RequireMethod(w, r, "GET") {
		return
	}
	job, err := h.store.DubbingStorage().Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// SubmitEnhanceHandler handles POST /api/media/enhance
func (h *JobsHandler) SubmitEnhanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req jobs.SubmitEnhanceRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.jobs.SubmitEnhance(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Str("media_id", req.MediaID).Msg("Enhance submission failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, job)
}

// ListEnhanceHandler handles GET /api/media/enhance
func (h *JobsHandler) ListEnhanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.store.EnhanceStorage().ListByUser(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// GetEnhanceHandler handles GET /api/media/enhance/{id}
func (h *JobsHandler) GetEnhanceHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/media/enhance/")
	job, err := h.store.EnhanceStorage().Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// SubmitDiagnoseHandler handles POST /api/media/diagnose
func (h *JobsHandler) SubmitDiagnoseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req jobs.SubmitDiagnoseRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.jobs.SubmitDiagnose(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Str("media_id", req.MediaID).Msg("Diagnose submission failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, job)
}

// ListDiagnoseHandler handles GET /api/media/diagnose
func (h *JobsHandler) ListDiagnoseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.store.DiagnoseStorage().ListByUser(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// DiagnoseItemHandler handles GET /api/media/diagnose/{id} and
// POST /api/media/diagnose/{id}/report.
func (h *JobsHandler) DiagnoseItemHandler(w http.ResponseWriter, r *http.Request) {
	suffix := strings.TrimPrefix(r.URL.Path, "/api/media/diagnose/")

	if r.Method == http.MethodPost && strings.HasSuffix(suffix, "/report") {
		h.generateReport(w, r, strings.TrimSuffix(suffix, "/report"))
		return
	}

	if !RequireMethod(w, r, "GET") {
		return
	}
	job, err := h.store.DiagnoseStorage().Get(r.Context(), suffix)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// generateReport renders the PDF report for a completed diagnosis and
// returns its download URL.
func (h *JobsHandler) generateReport(w http.ResponseWriter, r *http.Request, id string) {
	if h.reports == nil {
		WriteError(w, http.StatusServiceUnavailable, "Report generation is not configured")
		return
	}

	url, err := h.reports.Generate(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", id).Msg("Report generation failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"report_url": url})
}
