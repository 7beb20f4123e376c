package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/media"
)

// VoiceHandler handles voice listing, text-to-speech and clone inquiries.
type VoiceHandler struct {
	media  *media.Service
	logger arbor.ILogger
}

func NewVoiceHandler(mediaService *media.Service, logger arbor.ILogger) *VoiceHandler {
	return &VoiceHandler{
		media:  mediaService,
		logger: logger,
	}
}

// ListVoicesHandler handles GET /api/media/voices
func (h *VoiceHandler) ListVoicesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	voices, err := h.media.ListVoices(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list voices")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, voices)
}

// TextToSpeechHandler handles POST /api/media/voices/tts
func (h *VoiceHandler) TextToSpeechHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req media.TextToSpeechRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	audio, err := h.media.TextToSpeech(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Str("voice_id", req.VoiceID).Msg("Text-to-speech failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, audio)
}

// CloneVoiceHandler handles POST /api/media/voices/add
func (h *VoiceHandler) CloneVoiceHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req media.CloneVoiceRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	voice, err := h.media.CloneVoice(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Str("name", req.Name).Msg("Instant voice clone failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, voice)
}

// VoiceGenerationParamsHandler handles GET /api/media/voices/random/params
func (h *VoiceHandler) VoiceGenerationParamsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	params, err := h.media.VoiceGenerationParams(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to fetch voice generation parameters")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, params)
}

// GenerateRandomVoiceHandler handles POST /api/media/voices/random
func (h *VoiceHandler) GenerateRandomVoiceHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req media.GenerateRandomVoiceRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	preview, err := h.media.GenerateRandomVoice(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Random voice generation failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, preview)
}

// SaveGeneratedVoiceHandler handles POST /api/media/voices/random/save
func (h *VoiceHandler) SaveGeneratedVoiceHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req media.SaveGeneratedVoiceRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	voice, err := h.media.SaveGeneratedVoice(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Str("generated_voice_id", req.GeneratedVoiceID).Msg("Saving generated voice failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, voice)
}

// InquiryHandler handles POST /api/media/voices/inquiry
func (h *VoiceHandler) InquiryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req media.InquiryRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	inquiry, err := h.media.SubmitInquiry(r.Context(), userID, &req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Inquiry submission failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, inquiry)
}
