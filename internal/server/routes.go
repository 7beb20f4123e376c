package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (dashboard log/event stream)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// Stored media artifacts (local-disk object store)
	mux.HandleFunc("/files/", s.app.FilesHandler.ServeHandler)

	// API routes - Media library
	mux.HandleFunc("/api/media/audios", s.handleAudiosRoute)             // GET (list), POST (upload)
	mux.HandleFunc("/api/media/audios/", s.app.MediaHandler.AudioItemHandler) // GET/DELETE /{id}
	mux.HandleFunc("/api/media/videos", s.handleVideosRoute)             // GET (list), POST (upload)
	mux.HandleFunc("/api/media/videos/", s.app.MediaHandler.VideoItemHandler) // GET/DELETE /{id}
	mux.HandleFunc("/api/media/videos/youtube", s.app.MediaHandler.YouTubeImportHandler)

	// API routes - YouTube OAuth
	mux.HandleFunc("/api/media/youtube/auth-url", s.app.MediaHandler.YouTubeAuthURLHandler)
	mux.HandleFunc("/api/media/youtube/exchange", s.app.MediaHandler.YouTubeExchangeHandler)

	// API routes - Voice (ElevenLabs)
	mux.HandleFunc("/api/media/voices", s.app.VoiceHandler.ListVoicesHandler)
	mux.HandleFunc("/api/media/voices/tts", s.app.VoiceHandler.TextToSpeechHandler)
	mux.HandleFunc("/api/media/voices/add", s.app.VoiceHandler.CloneVoiceHandler)
	mux.HandleFunc("/api/media/voices/random", s.app.VoiceHandler.GenerateRandomVoiceHandler)
	mux.HandleFunc("/api/media/voices/random/params", s.app.VoiceHandler.VoiceGenerationParamsHandler)
	mux.HandleFunc("/api/media/voices/random/save", s.app.VoiceHandler.SaveGeneratedVoiceHandler)
	mux.HandleFunc("/api/media/voices/inquiry", s.app.VoiceHandler.InquiryHandler)

	// API routes - Async jobs (dubbing, enhancement, diagnosis)
	mux.HandleFunc("/api/media/dubbing", s.handleDubbingRoute)
	mux.HandleFunc("/api/media/dubbing/", s.app.JobsHandler.DubbingItemHandler) // GET/DELETE /{id}
	mux.HandleFunc("/api/media/enhance", s.handleEnhanceRoute)
	mux.HandleFunc("/api/media/enhance/", s.app.JobsHandler.GetEnhanceHandler)
	mux.HandleFunc("/api/media/diagnose", s.handleDiagnoseRoute)
	mux.HandleFunc("/api/media/diagnose/", s.app.JobsHandler.DiagnoseItemHandler) // GET /{id}, POST /{id}/report

	// SSE event streams, one per correlation id. Longer prefixes win over
	// the job item routes above.
	mux.HandleFunc("/api/media/audios/dubbing/events/", s.app.EventsHandler.StreamHandler)
	mux.HandleFunc("/api/media/audios/enhance/events/", s.app.EventsHandler.StreamHandler)
	mux.HandleFunc("/api/media/audios/diagnose/events/", s.app.EventsHandler.StreamHandler)

	// Public provider callbacks (no auth, providers cannot send headers)
	mux.HandleFunc("/v1/public/dolby-job-status", s.app.WebhookHandler.DolbyJobStatusHandler)
	mux.HandleFunc("/v1/public/tl-task-status", s.app.WebhookHandler.TwelveLabsTaskStatusHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleAudiosRoute routes /api/media/audios requests (list and upload)
func (s *Server) handleAudiosRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.MediaHandler.ListAudiosHandler, s.app.MediaHandler.UploadAudioHandler)
}

// handleVideosRoute routes /api/media/videos requests (list and upload)
func (s *Server) handleVideosRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.MediaHandler.ListVideosHandler, s.app.MediaHandler.UploadVideoHandler)
}

// handleDubbingRoute routes /api/media/dubbing requests (list and submit)
func (s *Server) handleDubbingRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.JobsHandler.ListDubbingHandler, s.app.JobsHandler.SubmitDubbingHandler)
}

// handleEnhanceRoute routes /api/media/enhance requests (list and submit)
func (s *Server) handleEnhanceRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.JobsHandler.ListEnhanceHandler, s.app.JobsHandler.SubmitEnhanceHandler)
}

// handleDiagnoseRoute routes /api/media/diagnose requests (list and submit)
func (s *Server) handleDiagnoseRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.JobsHandler.ListDiagnoseHandler, s.app.JobsHandler.SubmitDiagnoseHandler)
}
