// Package media manages the audio and video library: uploads, YouTube
// imports, video indexing and voice tooling.
package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/providers/youtube"
)

// Service coordinates media persistence, object storage and the media
// provider clients.
type Service struct {
	store   interfaces.StorageManager
	objects interfaces.ObjectStorage
	dubbing interfaces.DubbingClient
	index   interfaces.VideoIndexClient
	youtube *youtube.Client
	mailer  interfaces.Mailer
	mailTo  string
	logger  arbor.ILogger
}

// NewService wires the media service. The index client, youtube client and
// mailer are optional; the matching features return errors when absent.
func NewService(
	store interfaces.StorageManager,
	objects interfaces.ObjectStorage,
	dubbing interfaces.DubbingClient,
	index interfaces.VideoIndexClient,
	yt *youtube.Client,
	mail interfaces.Mailer,
	mailTo string,
	logger arbor.ILogger,
) *Service {
	return &Service{
		store:   store,
		objects: objects,
		dubbing: dubbing,
		index:   index,
		youtube: yt,
		mailer:  mail,
		mailTo:  mailTo,
		logger:  logger,
	}
}

// UploadAudioRequest carries an audio upload.
type UploadAudioRequest struct {
	Name     string
	MimeType string
	Size     int64
	Duration float64
	Body     io.Reader
}

// UploadAudio stores the binary and persists the audio record.
func (s *Service) UploadAudio(ctx context.Context, userID string, req *UploadAudioRequest) (*models.Audio, error) {
	if req.Name == "" {
		return nil, &models.ValidationError{Field: "name", Message: "file name is required"}
	}

	key, err := s.objects.Put(ctx, req.Body, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	now := time.Now().UTC()
	audio := &models.Audio{
		ID:        common.NewAudioID(),
		UserID:    userID,
		Name:      req.Name,
		ObjectKey: key,
		MimeType:  req.MimeType,
		Size:      req.Size,
		Duration:  req.Duration,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.AudioStorage().Save(ctx, audio); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("audio_id", audio.ID).
		Str("user_id", userID).
		Int64("size", req.Size).
		Msg("Audio uploaded")

	return audio, nil
}

// UploadVideoRequest carries a video upload.
type UploadVideoRequest struct {
	Name     string
	MimeType string
	Size     int64
	Duration float64
	Body     io.Reader
}

// UploadVideo stores the binary, persists the video record and kicks off a
// TwelveLabs indexing task when an index client is configured. Indexing
// failures are logged, not surfaced; the upload itself succeeded.
func (s *Service) UploadVideo(ctx context.Context, userID string, req *UploadVideoRequest) (*models.Video, error) {
	if req.Name == "" {
		return nil, &models.ValidationError{Field: "name", Message: "file name is required"}
	}

	key, err := s.objects.Put(ctx, req.Body, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to store video: %w", err)
	}

	now := time.Now().UTC()
	video := &models.Video{
		ID:        common.NewVideoID(),
		UserID:    userID,
		Name:      req.Name,
		Source:    models.VideoSourceUpload,
		ObjectKey: key,
		MimeType:  req.MimeType,
		Size:      req.Size,
		Duration:  req.Duration,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.index != nil {
		taskID, err := s.index.CreateIndexTask(ctx, s.objects.GetURL(key))
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
		Str("user_id", userID).
		Str("indexing_task_id", video.IndexingTaskID).
		Int64("size", req.Size).
		Msg("Video uploaded")

	return video, nil
}

// GetAudio returns one audio record.
func (s *Service) GetAudio(ctx context.Context, id string) (*models.Audio, error) {
	return s.store.AudioStorage().Get(ctx, id)
}

// GetVideo returns one video record.
func (s *Service) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	return s.store.VideoStorage().Get(ctx, id)
}

// ListAudios returns the user's audio library, newest first.
func (s *Service) ListAudios(ctx context.Context, userID string) ([]*models.Audio, error) {
	return s.store.AudioStorage().ListByUser(ctx, userID)
}

// ListVideos returns the user's video library, newest first.
func (s *Service) ListVideos(ctx context.Context, userID string) ([]*models.Video, error) {
	return s.store.VideoStorage().ListByUser(ctx, userID)
}

// DeleteAudio removes the record and its stored binary.
func (s *Service) DeleteAudio(ctx context.Context, id string) error {
	audio, err := s.store.AudioStorage().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.AudioStorage().Delete(ctx, id); err != nil {
		return err
	}
	if audio.ObjectKey != "" {
		if err := s.objects.Delete(ctx, audio.ObjectKey); err != nil {
			s.logger.Warn().Err(err).Str("audio_id", id).Msg("Failed to delete stored audio binary")
		}
	}
	return nil
}

// DeleteVideo removes the record and its stored binary when one exists.
func (s *Service) DeleteVideo(ctx context.Context, id string) error {
	video, err := s.store.VideoStorage().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.VideoStorage().Delete(ctx, id); err != nil {
		return err
	}
	if video.ObjectKey != "" {
		if err := s.objects.Delete(ctx, video.ObjectKey); err != nil {
			s.logger.Warn().Err(err).Str("video_id", id).Msg("Failed to delete stored video binary")
		}
	}
	return nil
}
