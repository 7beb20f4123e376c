package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// Service orchestrates the lifecycle of long-running provider jobs:
// submission, queue-driven status polling, webhook convergence,
// finalization and notification fan-out. Both the poll path and the
// webhook path converge on the same guarded storage transitions, so
// whichever arrives first wins and the other is a no-op.
type Service struct {
	store    interfaces.StorageManager
	queue    interfaces.TaskQueue
	objects  interfaces.ObjectStorage
	notifier interfaces.Notifier
	dubbing  interfaces.DubbingClient
	media    interfaces.MediaProcessingClient
	config   common.QueueConfig
	logger   arbor.ILogger
}

// NewService creates a new job orchestration service
func NewService(
	store interfaces.StorageManager,
	queue interfaces.TaskQueue,
	objects interfaces.ObjectStorage,
	notifier interfaces.Notifier,
	dubbing interfaces.DubbingClient,
	media interfaces.MediaProcessingClient,
	config common.QueueConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		store:    store,
		queue:    queue,
		objects:  objects,
		notifier: notifier,
		dubbing:  dubbing,
		media:    media,
		config:   config,
		logger:   logger,
	}
}

// RegisterHandlers wires the poll task handlers into the worker pool and
// the dead-letter callback used by the exhaustion policy.
func (s *Service) RegisterHandlers(pool interfaces.WorkerPool) {
	pool.RegisterHandler(models.JobKindDubbing, s.HandleDubbingPoll)
	pool.RegisterHandler(models.JobKindEnhance, s.HandleEnhancePoll)
	pool.RegisterHandler(models.JobKindDiagnose, s.HandleDiagnosePoll)
}

// enqueueFirstPoll schedules the initial status check for a new job.
func (s *Service) enqueueFirstPoll(ctx context.Context, jobID string, kind models.JobKind, correlationID string) error {
	task := models.PollTask{
		JobID:         jobID,
		Kind:          kind,
		Attempt:       1,
		CorrelationID: correlationID,
	}
	if err := s.queue.EnqueueWithDelay(ctx, task, s.config.PollDelayDuration()); err != nil {
		return fmt.Errorf("failed to enqueue poll task: %w", err)
	}
	return nil
}

// reschedule queues the next attempt for a job that is still processing.
// Same fixed delay every time, deliberately not a backoff curve.
func (s *Service) reschedule(ctx context.Context, task models.PollTask) error {
	next := task.Next()
	if err := s.queue.EnqueueWithDelay(ctx, next, s.config.PollDelayDuration()); err != nil {
		return fmt.Errorf("failed to reschedule poll task: %w", err)
	}
	s.logger.Debug().
		Str("job_id", task.JobID).
		Str("kind", string(task.Kind)).
		Int("attempt", next.Attempt).
		Msg("Job still processing, poll rescheduled")
	return nil
}

// notify emits a lifecycle event for the job's correlation id.
func (s *Service) notify(correlationID string, kind models.JobKind, jobID string, status models.JobStatus, resultURL, errMsg string) {
	s.notifier.Notify(correlationID, models.Notification{
		Kind:      kind,
		JobID:     jobID,
		Status:    status,
		ResultURL: resultURL,
		Error:     errMsg,
		Timestamp: time.Now(),
	})
}

// resolveMediaURL returns a provider-fetchable URL for a job subject.
// The media type is a closed enum so this dispatch is exhaustive.
func (s *Service) resolveMediaURL(ctx context.Context, mediaType models.MediaType, mediaID string) (string, error) {
	switch mediaType {
	case models.MediaTypeAudio:
		audio, err := s.store.AudioStorage().Get(ctx, mediaID)
		if err != nil {
			return "", err
		}
		return s.objects.GetURL(audio.ObjectKey), nil
	case models.MediaTypeVideo:
		video, err := s.store.VideoStorage().Get(ctx, mediaID)
		if err != nil {
			return "", err
		}
		if video.Source == models.VideoSourceYouTube && video.ObjectKey == "" {
			return video.RemoteURL, nil
		}
		return s.objects.GetURL(video.ObjectKey), nil
	default:
		return "", mediaType.Validate()
	}
}

// mediaDuration reports the subject's duration in seconds, 0 when unknown.
func (s *Service) mediaDuration(ctx context.Context, mediaType models.MediaType, mediaID string) (float64, error) {
	switch mediaType {
	case models.MediaTypeAudio:
		audio, err := s.store.AudioStorage().Get(ctx, mediaID)
		if err != nil {
			return 0, err
		}
		return audio.Duration, nil
	case models.MediaTypeVideo:
		video, err := s.store.VideoStorage().Get(ctx, mediaID)
		if err != nil {
			return 0, err
		}
		return video.Duration, nil
	default:
		return 0, mediaType.Validate()
	}
}
