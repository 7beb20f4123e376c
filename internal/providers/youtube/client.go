// Package youtube imports video metadata from the YouTube Data API using
// OAuth2 user consent.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

const (
	// apiBaseURL is the YouTube Data API v3 base URL.
	apiBaseURL = "https://www.googleapis.com/youtube/v3"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second
)

var watchIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|shorts/|embed/)([A-Za-z0-9_-]{11})`)

// VideoInfo is the metadata kept from a YouTube import.
type VideoInfo struct {
	ID        string
	Title     string
	Thumbnail string
	Duration  float64 // seconds
}

// Client wraps the OAuth2 consent flow and metadata lookups.
type Client struct {
	oauth  *oauth2.Config
	logger arbor.ILogger
}

// NewClient creates a new YouTube client.
func NewClient(clientID, clientSecret, redirectURL string, logger arbor.ILogger) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
			Endpoint:     google.Endpoint,
		},
		logger: logger,
	}
}

// AuthURL returns the consent page URL for the given anti-forgery state.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, &models.UpstreamError{Provider: "youtube", Operation: "oauth_exchange", Message: err.Error()}
	}
	return token, nil
}

// ExtractVideoID pulls the 11-character video id out of any of the
// common YouTube URL shapes. A bare id passes through unchanged.
func ExtractVideoID(raw string) (string, error) {
	if m := watchIDPattern.FindStringSubmatch(raw); len(m) == 2 {
		return m[1], nil
	}
	if len(raw) == 11 && !containsURLChars(raw) {
		return raw, nil
	}
	return "", &models.ValidationError{Field: "url", Message: "not a recognizable YouTube URL or video id"}
}

func containsURLChars(s string) bool {
	for _, r := range s {
		if r == '/' || r == ':' || r == '?' || r == '.' {
			return true
		}
	}
	return false
}

// GetVideoInfo fetches a video's metadata with the user's token.
func (c *Client) GetVideoInfo(ctx context.Context, token *oauth2.Token, videoID string) (*VideoInfo, error) {
	httpClient := c.oauth.Client(ctx, token)
	httpClient.Timeout = DefaultTimeout

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", videoID)

	resp, err := httpClient.Get(apiBaseURL + "/videos?" + params.Encode())
	if err != nil {
		return nil, &models.UpstreamError{Provider: "youtube", Operation: "get_video", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, &models.UpstreamError{
			Provider:   "youtube",
			Operation:  "get_video",
			StatusCode: resp.StatusCode,
			Message:    string(msg),
		}
	}

	var result struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title      string `json:"title"`
				Thumbnails struct {
					High struct {
						URL string `json:"url"`
					} `json:"high"`
				} `json:"thumbnails"`
			} `json:"snippet"`
			ContentDetails struct {
				Duration string `json:"duration"` // ISO 8601, e.g. PT4M13S
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode video response: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, models.ErrNotFound
	}

	item := result.Items[0]
	return &VideoInfo{
		ID:        item.ID,
		Title:     item.Snippet.Title,
		Thumbnail: item.Snippet.Thumbnails.High.URL,
		Duration:  parseISO8601Duration(item.ContentDetails.Duration),
	}, nil
}

var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISO8601Duration converts PT#H#M#S into seconds, 0 when unparsable.
func parseISO8601Duration(d string) float64 {
	m := durationPattern.FindStringSubmatch(d)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	return float64(h*3600 + min*60 + s)
}
