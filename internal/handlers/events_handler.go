package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// EventsHandler streams job lifecycle notifications over Server-Sent
// Events, one stream per correlation id. Subscribers only see events
// emitted after they connect; there is no replay.
type EventsHandler struct {
	notifier interfaces.Notifier
	logger   arbor.ILogger
}

func NewEventsHandler(notifier interfaces.Notifier, logger arbor.ILogger) *EventsHandler {
	return &EventsHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// StreamHandler handles GET /api/media/*/events/{id}. The path segment
// before "events" selects an optional kind filter (dubbing, enhance,
// diagnose); "all" or an unknown segment streams everything for the id.
func (h *EventsHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	correlationID := parts[len(parts)-1]
	if correlationID == "" || correlationID == "events" {
		WriteError(w, http.StatusBadRequest, "Missing correlation id")
		return
	}

	var kindFilter models.JobKind
	for i, part := range parts {
		if part == "events" && i > 0 {
			kind := models.JobKind(parts[i-1])
			if kind.Validate() == nil {
				kindFilter = kind
			}
			break
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Flush headers immediately to trigger the browser's EventSource.onopen
	flusher.Flush()

	events, cancel := h.notifier.Subscribe(r.Context(), correlationID)
	defer cancel()

	h.logger.Debug().
		Str("correlation_id", correlationID).
		Str("kind", string(kindFilter)).
		Msg("SSE client connected")

	pingTicker := time.NewTicker(15 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug().Str("correlation_id", correlationID).Msg("SSE client disconnected")
			return

		case event, open := <-events:
			if !open {
				return
			}
			if kindFilter != "" && event.Kind != kindFilter {
				continue
			}
			h.sendEvent(w, flusher, "job_update", event)
			pingTicker.Reset(15 * time.Second)

		case <-pingTicker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func (h *EventsHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	flusher.Flush()
}
