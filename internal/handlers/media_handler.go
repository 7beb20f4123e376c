package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/media"
)

// maxUploadSize bounds the multipart form memory buffer; larger files
// spill to disk via the stdlib multipart reader.
const maxUploadSize = 32 << 20

// MediaHandler handles the audio/video library HTTP surface.
type MediaHandler struct {
	media  *media.Service
	logger arbor.ILogger
}

func NewMediaHandler(mediaService *media.Service, logger arbor.ILogger) *MediaHandler {
	return &MediaHandler{
		media:  mediaService,
		logger: logger,
	}
}

// UploadAudioHandler handles POST /api/media/audios - multipart audio upload
func (h *MediaHandler) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	audio, err := h.media.UploadAudio(r.Context(), userID, &media.UploadAudioRequest{
		Name:     name,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Duration: duration,
		Body:     file,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Audio upload failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, audio)
}

// ListAudiosHandler handles GET /api/media/audios
func (h *MediaHandler) ListAudiosHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	audios, err := h.media.ListAudios(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list audios")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, audios)
}

// AudioItemHandler handles GET/DELETE /api/media/audios/{id}
func (h *MediaHandler) AudioItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/media/audios/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid audio id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		audio, err := h.media.GetAudio(r.Context(), id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, audio)
	case http.MethodDelete:
		if err := h.media.DeleteAudio(r.Context(), id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteSuccess(w, "Audio deleted")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// UploadVideoHandler handles POST /api/media/videos - multipart video upload
func (h *MediaHandler) UploadVideoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	video, err := h.media.UploadVideo(r.Context(), userID, &media.UploadVideoRequest{
		Name:     name,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Duration: duration,
		Body:     file,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Video upload failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, video)
}

// ListVideosHandler handles GET /api/media/videos
func (h *MediaHandler) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	videos, err := h.media.ListVideos(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list videos")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, videos)
}

// VideoItemHandler handles GET/DELETE /api/media/videos/{id}
func (h *MediaHandler) VideoItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/media/videos/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid video id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		video, err := h.media.GetVideo(r.Context(), id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, video)
	case http.MethodDelete:
		if err := h.media.DeleteVideo(r.Context(), id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteSuccess(w, "Video deleted")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// YouTubeAuthURLHandler handles GET /api/media/youtube/auth-url
func (h *MediaHandler) YouTubeAuthURLHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	state := r.URL.Query().Get("state")
	authURL, err := h.media.YouTubeAuthURL(state)
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

type youtubeExchangeRequest struct {
	Code string `json:"code" validate:"required"`
}

// YouTubeExchangeHandler handles POST /api/media/youtube/exchange - trades
// the consent code for a token the client holds on to.
func (h *MediaHandler) YouTubeExchangeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req youtubeExchangeRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.media.YouTubeExchange(r.Context(), req.Code)
	if err != nil {
		h.logger.Error().Err(err).Msg("YouTube code exchange failed")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, token)
}

// tokenFromAccessToken wraps a bearer token the client obtained through
// the exchange endpoint.
func tokenFromAccessToken(accessToken string) *oauth2.Token {
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
}

type youtubeImportRequest struct {
	URL         string `json:"url" validate:"required"`
	AccessToken string `json:"access_token" validate:"required"`
}

// YouTubeImportHandler handles POST /api/media/videos/youtube
func (h *MediaHandler) YouTubeImportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req youtubeImportRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	video, err := h.media.ImportYouTubeVideo(r.Context(), userID, req.URL, tokenFromAccessToken(req.AccessToken))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("YouTube import failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, video)
}
