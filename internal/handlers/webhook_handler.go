package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/jobs"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/media"
)

// WebhookHandler receives provider callbacks. Callbacks always answer
// 200 once parsed: an unmatched or already-applied callback must not make
// the provider retry forever.
type WebhookHandler struct {
	jobs   *jobs.Service
	media  *media.Service
	logger arbor.ILogger
}

func NewWebhookHandler(jobsService *jobs.Service, mediaService *media.Service, logger arbor.ILogger) *WebhookHandler {
	return &WebhookHandler{
		jobs:   jobsService,
		media:  mediaService,
		logger: logger,
	}
}

type dolbyCallback struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Error  struct {
		Title  string `json:"title,omitempty"`
		Detail string `json:"detail,omitempty"`
	} `json:"error"`
}

// DolbyJobStatusHandler handles POST /v1/public/dolby-job-status
func (h *WebhookHandler) DolbyJobStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var payload dolbyCallback
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid callback payload")
		return
	}
	if payload.JobID == "" {
		WriteError(w, http.StatusBadRequest, "Missing job_id")
		return
	}

	detail := payload.Error.Detail
	if detail == "" {
		detail = payload.Error.Title
	}

	err := h.jobs.HandleDolbyCallback(r.Context(), payload.JobID, payload.Status, detail)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		h.logger.Error().Err(err).
			Str("external_job_id", payload.JobID).
			Str("status", payload.Status).
			Msg("Dolby callback processing failed")
		WriteError(w, http.StatusInternalServerError, "Callback processing failed")
		return
	}

	WriteSuccess(w, "Callback processed")
}

type twelveLabsCallback struct {
	ID     string `json:"id"`
	TaskID string `json:"task_id,omitempty"` // some payload versions use task_id
	Status string `json:"status"`
	Type   string `json:"type,omitempty"`
}

// TwelveLabsTaskStatusHandler handles POST /v1/public/tl-task-status
func (h *WebhookHandler) TwelveLabsTaskStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var payload twelveLabsCallback
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid callback payload")
		return
	}

	taskID := payload.TaskID
	if taskID == "" {
		taskID = payload.ID
	}
	if taskID == "" {
		WriteError(w, http.StatusBadRequest, "Missing task id")
		return
	}

	if err := h.media.HandleIndexingCallback(r.Context(), taskID, payload.Status); err != nil {
		h.logger.Error().Err(err).
			Str("task_id", taskID).
			Str("status", payload.Status).
			Msg("Indexing callback processing failed")
		WriteError(w, http.StatusInternalServerError, "Callback processing failed")
		return
	}

	WriteSuccess(w, "Callback processed")
}
