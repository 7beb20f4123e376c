// Package twelvelabs provides a client for the TwelveLabs video
// understanding API: indexing tasks and task status.
package twelvelabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the TwelveLabs API.
	DefaultBaseURL = "https://api.twelvelabs.io/v1.2"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 2 * time.Minute
)

// Client is a TwelveLabs API client scoped to one index.
type Client struct {
	baseURL    string
	apiKey     string
	indexID    string
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

// NewClient creates a new TwelveLabs API client.
func NewClient(apiKey, indexID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		indexID: indexID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type taskResponse struct {
	ID      string `json:"_id"`
	Status  string `json:"status"` // "pending", "indexing", "ready", "failed"
	VideoID string `json:"video_id,omitempty"`
}

// CreateIndexTask starts indexing the video at videoURL and returns the
// provider task id.
func (c *Client) CreateIndexTask(ctx context.Context, videoURL string) (string, error) {
	payload := map[string]any{
		"index_id":  c.indexID,
		"video_url": videoURL,
	}

	var result taskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", payload, &result); err != nil {
		return "", err
	}

	if c.logger != nil {
		c.logger.Debug().Str("task_id", result.ID).Msg("Indexing task created")
	}
	return result.ID, nil
}

// GetTaskStatus maps the provider's task status onto the job lifecycle.
func (c *Client) GetTaskStatus(ctx context.Context, taskID string) (*interfaces.ProviderJobState, error) {
	var result taskResponse
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskID, nil, &result); err != nil {
		return nil, err
	}

	state := &interfaces.ProviderJobState{Detail: result.Status}
	switch result.Status {
	case "ready":
		state.Status = models.JobStatusCompleted
	case "failed":
		state.Status = models.JobStatusFailed
	case "pending":
		state.Status = models.JobStatusPending
	default:
		state.Status = models.JobStatusProcessing
	}
	return state, nil
}

// GetIndexedVideoID resolves the provider's video id for a finished task.
func (c *Client) GetIndexedVideoID(ctx context.Context, taskID string) (string, error) {
	var result taskResponse
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskID, nil, &result); err != nil {
		return "", err
	}
	if result.VideoID == "" {
		return "", &models.UpstreamError{
			Provider:  "twelvelabs",
			Operation: "get_task",
			Message:   fmt.Sprintf("task %s has no video id yet", taskID),
		}
	}
	return result.VideoID, nil
}

// do performs a JSON request against the API.
func (c *Client) do(ctx context.Context, method, path string, payload any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
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
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug().Str("method", method).Str("path", path).Msg("TwelveLabs API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.UpstreamError{Provider: "twelvelabs", Operation: method + " " + path, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return &models.UpstreamError{
			Provider:   "twelvelabs",
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

var _ interfaces.VideoIndexClient = (*Client)(nil)
