package media

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/providers/youtube"
)

// YouTubeAuthURL returns the Google consent URL for the given state.
func (s *Service) YouTubeAuthURL(state string) (string, error) {
	if s.youtube == nil {
		return "", fmt.Errorf("YouTube integration is not configured")
	}
	return s.youtube.AuthURL(state), nil
}

// YouTubeExchange trades a consent code for a token. The token is returned
// to the caller; tokens are not persisted server-side.
func (s *Service) YouTubeExchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if s.youtube == nil {
		return nil, fmt.Errorf("YouTube integration is not configured")
	}
	return s.youtube.Exchange(ctx, code)
}

// ImportYouTubeVideo creates a video record from a YouTube URL. Only
// metadata is imported; the watch URL is kept as the media reference and
// no download happens. Imported videos are indexed like uploads when an
// index client is configured, using the watch URL.
func (s *Service) ImportYouTubeVideo(ctx context.Context, userID, rawURL string, token *oauth2.Token) (*models.Video, error) {
	if s.youtube == nil {
		return nil, fmt.Errorf("YouTube integration is not configured")
	}

	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	info, err := s.youtube.GetVideoInfo(ctx, token, videoID)
	if err != nil {
		return nil, err
	}

	watchURL := "https://www.youtube.com/watch?v=" + info.ID

	now := time.Now().UTC()
	video := &models.Video{
		ID:        common.NewVideoID(),
		UserID:    userID,
		Name:      info.Title,
		Source:    models.VideoSourceYouTube,
		RemoteURL: watchURL,
		YouTubeID: info.ID,
		Thumbnail: info.Thumbnail,
		Duration:  info.Duration,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.index != nil {
		taskID, err := s.index.CreateIndexTask(ctx, watchURL)
		if err != nil {
			s.logger.Warn().Err(err).Str("video_id", video.ID).Msg("Video indexing submission failed")
		} else {
			video.IndexingTaskID = taskID
		}
	}

	if err := s.store.VideoStorage().Save(ctx, video); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("video_id", video.ID).
		Str("youtube_id", info.ID).
		Str("user_id", userID).
		Msg("YouTube video imported")

	return video, nil
}
