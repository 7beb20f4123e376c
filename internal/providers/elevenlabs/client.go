// Package elevenlabs provides a client for the ElevenLabs dubbing and
// speech APIs.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the ElevenLabs API.
	DefaultBaseURL = "https://api.elevenlabs.io"

	// DefaultTimeout is the default HTTP timeout. Dub submissions carry
	// media payloads, so this is generous.
	DefaultTimeout = 2 * time.Minute

	// DefaultTTSModel is used when the caller does not pick a model.
	DefaultTTSModel = "eleven_multilingual_v2"
)

// Client is an ElevenLabs API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the minimum interval between requests.
func WithRateLimit(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// NewClient creates a new ElevenLabs API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// dubbingResponse is the provider's dub submission/status shape.
type dubbingResponse struct {
	DubbingID       string   `json:"dubbing_id"`
	Status          string   `json:"status"` // "dubbing", "dubbed", "failed"
	TargetLanguages []string `json:"target_languages"`
	Error           string   `json:"error,omitempty"`
}

type voicesResponse struct {
	Voices []struct {
		VoiceID     string            `json:"voice_id"`
		Name        string            `json:"name"`
		Category    string            `json:"category"`
		Description string            `json:"description"`
		Labels      map[string]string `json:"labels"`
		PreviewURL  string            `json:"preview_url"`
	} `json:"voices"`
}

// SubmitDub creates a dubbing project and returns the provider's id.
func (c *Client) SubmitDub(ctx context.Context, req *interfaces.DubRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if req.SourceReader != nil {
		name := req.SourceName
		if name == "" {
			name = "source"
		}
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			return "", fmt.Errorf("failed to build dub request: %w", err)
		}
		if _, err := io.Copy(part, req.SourceReader); err != nil {
			return "", fmt.Errorf("failed to copy dub source: %w", err)
		}
	} else {
		if err := w.WriteField("source_url", req.SourceURL); err != nil {
			return "", fmt.Errorf("failed to build dub request: %w", err)
		}
	}

	if req.SourceLanguage != "" {
		w.WriteField("source_lang", req.SourceLanguage)
	}
	for _, lang := range req.TargetLanguages {
		w.WriteField("target_lang", lang)
	}
	if req.NumSpeakers > 0 {
		w.WriteField("num_speakers", strconv.Itoa(req.NumSpeakers))
	}
	if req.StartTime > 0 || req.EndTime > 0 {
		w.WriteField("start_time", strconv.FormatFloat(req.StartTime, 'f', -1, 64))
		w.WriteField("end_time", strconv.FormatFloat(req.EndTime, 'f', -1, 64))
	}
	if req.Watermark {
		w.WriteField("watermark", "true")
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish dub request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/dubbing", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &models.UpstreamError{Provider: "elevenlabs", Operation: "submit_dubbing", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", &models.UpstreamError{
			Provider:   "elevenlabs",
			Operation:  "submit_dubbing",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	var result dubbingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode dub response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().Str("dubbing_id", result.DubbingID).Msg("Dubbing submitted")
	}

	return result.DubbingID, nil
}

// GetDubStatus maps the provider's dubbing status onto the job lifecycle.
func (c *Client) GetDubStatus(ctx context.Context, externalJobID string) (*interfaces.ProviderJobState, error) {
	var result dubbingResponse
	if err := c.get(ctx, "/v1/dubbing/"+externalJobID, &result); err != nil {
		return nil, err
	}

	state := &interfaces.ProviderJobState{Detail: result.Status}
	switch result.Status {
	case "dubbed":
		state.Status = models.JobStatusCompleted
	case "failed":
		state.Status = models.JobStatusFailed
		if result.Error != "" {
			state.Detail = result.Error
		}
	default:
		state.Status = models.JobStatusProcessing
	}
	return state, nil
}

// DownloadDub streams the rendered dub for one target language.
func (c *Client) DownloadDub(ctx context.Context, externalJobID, languageCode string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/v1/dubbing/%s/audio/%s", c.baseURL, externalJobID, languageCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.UpstreamError{Provider: "elevenlabs", Operation: "download_dub", Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &models.UpstreamError{
			Provider:   "elevenlabs",
			Operation:  "download_dub",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	return resp.Body, nil
}

// RemoveDub deletes a dubbing project on the provider side.
func (c *Client) RemoveDub(ctx context.Context, externalJobID string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1/dubbing/"+externalJobID, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.UpstreamError{Provider: "elevenlabs", Operation: "remove_dubbing", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(resp.Body)
		return &models.UpstreamError{
			Provider:   "elevenlabs",
			Operation:  "remove_dubbing",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}
	return nil
}

// ListVoices fetches the available synthesis voices.
func (c *Client) ListVoices(ctx context.Context) ([]models.Voice, error) {
	var result voicesResponse
	if err := c.get(ctx, "/v1/voices", &result); err != nil {
		return nil, err
	}

	voices := make([]models.Voice, 0, len(result.Voices))
	for _, v := range result.Voices {
		voices = append(voices, models.Voice{
			VoiceID:     v.VoiceID,
			Name:        v.Name,
			Category:    v.Category,
			Description: v.Description,
			Labels:      v.Labels,
			PreviewURL:  v.PreviewURL,
		})
	}
	return voices, nil
}

// TextToSpeech renders text with the given voice and streams the audio.
func (c *Client) TextToSpeech(ctx context.Context, req *interfaces.TTSRequest) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	model := req.Model
	if model == "" {
		model = DefaultTTSModel
	}
	payload, err := json.Marshal(map[string]any{
		"text":     req.Text,
		"model_id": model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/text-to-speech/"+req.VoiceID, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &models.UpstreamError{Provider: "elevenlabs", Operation: "text_to_speech", Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &models.UpstreamError{
			Provider:   "elevenlabs",
			Operation:  "text_to_speech",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	return resp.Body, nil
}

// CloneVoice uploads the reference samples and creates an instant voice
// clone. Labels travel as a JSON-encoded form field per the provider API.
func (c *Client) CloneVoice(ctx context.Context, req *interfaces.VoiceCloneRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("name", req.Name); err != nil {
		return "", fmt.Errorf("failed to build clone request: %w", err)
	}
	if req.Description != "" {
		w.WriteField("description", req.Description)
	}
	if len(req.Labels) > 0 {
		labels, err := json.Marshal(req.Labels)
		if err != nil {
			return "", fmt.Errorf("failed to encode voice labels: %w", err)
		}
		w.WriteField("labels", string(labels))
	}
	for _, sample := range req.Samples {
		part, err := w.CreateFormFile("files", sample.Name)
		if err != nil {
			return "", fmt.Errorf("failed to build clone request: %w", err)
		}
		if _, err := io.Copy(part, sample.Reader); err != nil {
			return "", fmt.Errorf("failed to copy voice sample: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish clone request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/voices/add", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &models.UpstreamError{Provider: "elevenlabs", Operation: "clone_voice", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", &models.UpstreamError{
			Provider:   "elevenlabs",
			Operation:  "clone_voice",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	var result struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode clone response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().Str("voice_id", result.VoiceID).Msg("Instant voice clone created")
	}

	return result.VoiceID, nil
}

// VoiceGenerationParameters fetches the voice design parameter space.
func (c *Client) VoiceGenerationParameters(ctx context.Context) (*models.VoiceGenerationParameters, error) {
	var result models.VoiceGenerationParameters
	if err := c.get(ctx, "/v1/voice-generation/generate-voice/parameters", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateVoice renders a random voice preview. The provider streams the
// preview audio and reports the generated voice id in a response header.
func (c *Client) GenerateVoice(ctx context.Context, req *interfaces.GenerateVoiceRequest) (string, io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"gender":          req.Gender,
		"age":             req.Age,
		"accent":          req.Accent,
		"accent_strength": req.AccentStrength,
		"text":            req.Text,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal generate-voice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/voice-generation/generate-voice", bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", nil, &models.UpstreamError{Provider: "elevenlabs", Operation: "generate_voice", Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return "", nil, &models.UpstreamError{
			Provider:   "elevenlabs",
			Operation:  "generate_voice",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	generatedID := resp.Header.Get("generated_voice_id")
	if generatedID == "" {
		resp.Body.Close()
		return "", nil, &models.UpstreamError{
			Provider:  "elevenlabs",
			Operation: "generate_voice",
			Message:   "response carries no generated_voice_id header",
		}
	}

	return generatedID, resp.Body, nil
}

// SaveGeneratedVoice promotes a previewed random voice into the account's
// voice library.
func (c *Client) SaveGeneratedVoice(ctx context.Context, req *interfaces.SaveGeneratedVoiceRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"voice_name":         req.VoiceName,
		"voice_description":  req.VoiceDescription,
		"generated_voice_id": req.GeneratedVoiceID,
		"labels":             req.Labels,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal create-voice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/voice-generation/create-voice", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &models.UpstreamError{Provider: "elevenlabs", Operation: "save_generated_voice", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", &models.UpstreamError{
			Provider:   "elevenlabs",
			Operation:  "save_generated_voice",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	var result struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode create-voice response: %w", err)
	}
	return result.VoiceID, nil
}

// get performs a JSON GET request against the API.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug().Str("path", path).Msg("ElevenLabs API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.UpstreamError{Provider: "elevenlabs", Operation: "get " + path, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return &models.UpstreamError{
			Provider:   "elevenlabs",
			Operation:  "get " + path,
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var _ interfaces.DubbingClient = (*Client)(nil)
