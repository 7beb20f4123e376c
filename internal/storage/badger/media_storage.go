package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// AudioStorage implements the AudioStorage interface for Badger
type AudioStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAudioStorage creates a new AudioStorage instance
func NewAudioStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AudioStorage {
	return &AudioStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AudioStorage) Save(ctx context.Context, audio *models.Audio) error {
	if audio.ID == "" {
		return fmt.Errorf("audio ID is required")
	}

	now := time.Now()
	if audio.CreatedAt.IsZero() {
		audio.CreatedAt = now
	}
	audio.UpdatedAt = now

	if err := s.db.Store().Upsert(audio.ID, audio); err != nil {
		return fmt.Errorf("failed to save audio: %w", err)
	}
	return nil
}

func (s *AudioStorage) Get(ctx context.Context, id string) (*models.Audio, error) {
	var audio models.Audio
	if err := s.db.Store().Get(id, &audio); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get audio: %w", err)
	}
	return &audio, nil
}

func (s *AudioStorage) ListByUser(ctx context.Context, userID string) ([]*models.Audio, error) {
	var audios []models.Audio
	err := s.db.Store().Find(&audios, badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list audios: %w", err)
	}
	result := make([]*models.Audio, len(audios))
	for i := range audios {
		result[i] = &audios[i]
	}
	return result, nil
}

func (s *AudioStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Audio{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete audio: %w", err)
	}
	return nil
}

// VideoStorage implements the VideoStorage interface for Badger
type VideoStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVideoStorage creates a new VideoStorage instance
func NewVideoStorage(db *BadgerDB, logger arbor.ILogger) interfaces.VideoStorage {
	return &VideoStorage{
		db:     db,
		logger: logger,
	}
}

func (s *VideoStorage) Save(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		return fmt.Errorf("video ID is required")
	}
	if video.Source == "" {
		video.Source = models.VideoSourceUpload
	}

	now := time.Now()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now

	if err := s.db.Store().Upsert(video.ID, video); err != nil {
		return fmt.Errorf("failed to save video: %w", err)
	}
	return nil
}

func (s *VideoStorage) Get(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	if err := s.db.Store().Get(id, &video); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (s *VideoStorage) GetByIndexingTaskID(ctx context.Context, taskID string) (*models.Video, error) {
	var videos []models.Video
	err := s.db.Store().Find(&videos, badgerhold.Where("IndexingTaskID").Eq(taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to find video by indexing task: %w", err)
	}
	if len(videos) == 0 {
		return nil, models.ErrNotFound
	}
	return &videos[0], nil
}

func (s *VideoStorage) ListByUser(ctx context.Context, userID string) ([]*models.Video, error) {
	var videos []models.Video
	err := s.db.Store().Find(&videos, badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	result := make([]*models.Video, len(videos))
	for i := range videos {
		result[i] = &videos[i]
	}
	return result, nil
}

func (s *VideoStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Video{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}
