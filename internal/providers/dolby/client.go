// Package dolby provides a client for the Dolby.io Media APIs: enhance,
// diagnose, provider-side media storage and webhook registration.
package dolby

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Dolby Media API.
	DefaultBaseURL = "https://api.dolby.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 2 * time.Minute

	// tokenLifetime is how long an access token is reused before a fresh
	// one is requested. Dolby issues 24h tokens; renew slightly early.
	tokenLifetime = 23 * time.Hour
)

// Client is a Dolby Media API client. Access tokens are cached and
// refreshed transparently.
type Client struct {
	baseURL    string
	appKey     string
	appSecret  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter

	tokenMu      sync.Mutex
	accessToken  string
	tokenExpires time.Time
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

// NewClient creates a new Dolby Media API client.
func NewClient(appKey, appSecret string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		appKey:    appKey,
		appSecret: appSecret,
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

// token returns a valid access token, requesting a fresh one when the
// cached token is missing or stale.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpires) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("expires_in", "86400")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.appKey, c.appSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &models.UpstreamError{Provider: "dolby", Operation: "auth_token", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", &models.UpstreamError{
			Provider:   "dolby",
			Operation:  "auth_token",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpires = time.Now().Add(tokenLifetime)

	if c.logger != nil {
		c.logger.Debug().Msg("Dolby access token refreshed")
	}

	return c.accessToken, nil
}

// jobStatusResponse is the provider's enhance/diagnose status shape.
type jobStatusResponse struct {
	Status   string            `json:"status"` // "Pending", "Running", "Success", "Failed"
	Progress int               `json:"progress"`
	Error    *struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"error,omitempty"`
	Result *models.Diagnosis `json:"result,omitempty"`
}

func (r *jobStatusResponse) state() *interfaces.ProviderJobState {
	state := &interfaces.ProviderJobState{Detail: r.Status}
	switch strings.ToLower(r.Status) {
	case "success":
		state.Status = models.JobStatusCompleted
	case "failed", "error", "cancelled", "internalerror":
		state.Status = models.JobStatusFailed
		if r.Error != nil {
			state.Detail = r.Error.Title + ": " + r.Error.Detail
		}
	case "pending":
		state.Status = models.JobStatusPending
	default:
		state.Status = models.JobStatusProcessing
	}
	return state
}

// SubmitEnhance starts an enhance job and returns the provider job id.
func (c *Client) SubmitEnhance(ctx context.Context, sub *interfaces.EnhanceSubmission) (string, error) {
	payload := map[string]any{
		"input":  sub.InputURL,
		"output": sub.OutputURL,
	}
	if sub.Settings != nil {
		payload["audio"] = sub.Settings
	}

	var result struct {
		JobID string `json:"job_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/media/enhance", payload, &result); err != nil {
		return "", err
	}
	return result.JobID, nil
}

// GetEnhanceStatus reports the state of an enhance job.
func (c *Client) GetEnhanceStatus(ctx context.Context, externalJobID string) (*interfaces.ProviderJobState, error) {
	var result jobStatusResponse
	path := "/media/enhance?job_id=" + url.QueryEscape(externalJobID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.state(), nil
}

// SubmitDiagnose starts a diagnose job and returns the provider job id.
func (c *Client) SubmitDiagnose(ctx context.Context, inputURL string) (string, error) {
	var result struct {
		JobID string `json:"job_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/media/diagnose", map[string]any{"input": inputURL}, &result); err != nil {
		return "", err
	}
	return result.JobID, nil
}

// GetDiagnoseStatus reports the state of a diagnose job together with
// the diagnosis payload once the job completes.
func (c *Client) GetDiagnoseStatus(ctx context.Context, externalJobID string) (*interfaces.ProviderJobState, *models.Diagnosis, error) {
	var result jobStatusResponse
	path := "/media/diagnose?job_id=" + url.QueryEscape(externalJobID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, nil, err
	}
	return result.state(), result.Result, nil
}

// UploadInput creates a dlb:// input location, uploads the stream to the
// returned presigned URL and hands back the dlb:// reference.
func (c *Client) UploadInput(ctx context.Context, r io.Reader, name string) (string, error) {
	dlbURL := "dlb://in/" + name

	var created struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/media/input", map[string]any{"url": dlbURL}, &created); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, created.URL, r)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &models.UpstreamError{Provider: "dolby", Operation: "upload_input", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", &models.UpstreamError{
			Provider:   "dolby",
			Operation:  "upload_input",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	return dlbURL, nil
}

// DownloadOutput streams a finished artifact from provider-side storage.
func (c *Client) DownloadOutput(ctx context.Context, outputURL string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/media/output?url=" + url.QueryEscape(outputURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.UpstreamError{Provider: "dolby", Operation: "download_output", Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &models.UpstreamError{
			Provider:   "dolby",
			Operation:  "download_output",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	return resp.Body, nil
}

// RegisterWebhook points the provider's job-completion callback at url.
// Registering the same URL again is a safe overwrite on the provider
// side, so this is run at startup and on a refresh schedule.
func (c *Client) RegisterWebhook(ctx context.Context, callbackURL string) error {
	payload := map[string]any{
		"callback": map[string]any{"url": callbackURL},
	}
	return c.do(ctx, http.MethodPost, "/media/webhooks", payload, nil)
}

// do performs an authenticated JSON request against the API.
func (c *Client) do(ctx context.Context, method, path string, payload any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug().Str("method", method).Str("path", path).Msg("Dolby API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.UpstreamError{Provider: "dolby", Operation: method + " " + path, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return &models.UpstreamError{
			Provider:   "dolby",
			Operation:  method + " " + path,
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

var _ interfaces.MediaProcessingClient = (*Client)(nil)
