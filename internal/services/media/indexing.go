package media

import (
	"context"
	"time"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// HandleIndexingCallback processes a TwelveLabs task-status webhook. The
// task id is matched against the video library; unmatched callbacks are
// logged and dropped so provider retries stop.
func (s *Service) HandleIndexingCallback(ctx context.Context, taskID, status string) error {
	video, err := s.store.VideoStorage().GetByIndexingTaskID(ctx, taskID)
	if err != nil {
		if err == models.ErrNotFound {
			s.logger.Warn().
				Str("task_id", taskID).
				Str("status", status).
				Msg("Indexing callback for unknown task, dropping")
			return nil
		}
		return err
	}

	switch status {
	case "ready":
		// The callback body is unauthenticated, so confirm the task state
		// with the provider before recording the indexed id.
		state, err := s.index.GetTaskStatus(ctx, taskID)
		if err != nil {
			return err
		}
		if state.Status != models.JobStatusCompleted {
			s.logger.Warn().
				Str("video_id", video.ID).
				Str("task_id", taskID).
				Str("provider_status", state.Detail).
				Msg("Ready callback did not match provider task state, dropping")
			return nil
		}

		indexedID, err := s.index.GetIndexedVideoID(ctx, taskID)
		if err != nil {
			return err
		}
		video.IndexedVideoID = indexedID
		video.UpdatedAt = time.Now().UTC()
		if err := s.store.VideoStorage().Save(ctx, video); err != nil {
			return err
		}
		s.logger.Info().
			Str("video_id", video.ID).
			Str("indexed_video_id", indexedID).
			Msg("Video indexing completed")
	case "failed":
		s.logger.Warn().
			Str("video_id", video.ID).
			Str("task_id", taskID).
			Msg("Video indexing failed")
	default:
		s.logger.Debug().
			Str("video_id", video.ID).
			Str("status", status).
			Msg("Video indexing progress")
	}

	return nil
}
