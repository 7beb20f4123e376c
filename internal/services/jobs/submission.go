package jobs

import (
	"context"
	"fmt"
	"path"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// SubmitDubbingRequest carries the caller's parameters for a new dub.
type SubmitDubbingRequest struct {
	MediaID         string   `json:"media_id" validate:"required"`
	MediaType       string   `json:"media_type" validate:"required,oneof=audio video"`
	SourceLanguage  string   `json:"source_language,omitempty"`
	TargetLanguages []string `json:"target_languages" validate:"required,min=1"`
	NumSpeakers     int      `json:"num_speakers,omitempty" validate:"omitempty,min=1,max=10"`
	StartTime       float64  `json:"start_time,omitempty"`
	EndTime         float64  `json:"end_time,omitempty"`
}

// SubmitDubbing validates the subject media, submits the dub to the
// provider and persists a pending job record carrying the provider's id.
// One poll task with attempt=1 is enqueued with the fixed initial delay.
func (s *Service) SubmitDubbing(ctx context.Context, userID string, req *SubmitDubbingRequest) (*models.DubbingJob, error) {
	mediaType := models.MediaType(req.MediaType)
	if err := mediaType.Validate(); err != nil {
		return nil, &models.ValidationError{Field: "media_type", Message: err.Error()}
	}

	sourceURL, err := s.resolveMediaURL(ctx, mediaType, req.MediaID)
	if err != nil {
		return nil, err // ErrNotFound when the subject does not resolve
	}

	var timeRange *models.TimeRange
	if req.StartTime != 0 || req.EndTime != 0 {
		timeRange = &models.TimeRange{Start: req.StartTime, End: req.EndTime}
		duration, err := s.mediaDuration(ctx, mediaType, req.MediaID)
		if err != nil {
			return nil, err
		}
		if err := timeRange.Validate(duration); err != nil {
			return nil, err
		}
	}

	dubReq := &interfaces.DubRequest{
		SourceURL:       sourceURL,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguages: req.TargetLanguages,
		NumSpeakers:     req.NumSpeakers,
	}
	if timeRange != nil {
		dubReq.StartTime = timeRange.Start
		dubReq.EndTime = timeRange.End
	}

	externalID, err := s.dubbing.SubmitDub(ctx, dubReq)
	if err != nil {
		return nil, err // UpstreamError, surfaced to the caller
	}

	job := &models.DubbingJob{
		JobRecord: models.JobRecord{
			ID:            common.NewDubbingID(),
			ExternalJobID: externalID,
			Status:        models.JobStatusPending,
			UserID:        userID,
			MediaID:       req.MediaID,
			MediaType:     mediaType,
		},
		SourceLanguage:  req.SourceLanguage,
		TargetLanguages: req.TargetLanguages,
		NumSpeakers:     req.NumSpeakers,
		TimeRange:       timeRange,
	}

	if err := s.store.DubbingStorage().Save(ctx, job); err != nil {
		return nil, err
	}

	if err := s.enqueueFirstPoll(ctx, job.ID, models.JobKindDubbing, userID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("external_job_id", externalID).
		Str("media_id", req.MediaID).
		Strs("target_languages", req.TargetLanguages).
		Msg("Dubbing job submitted")

	return job, nil
}

// RemoveDubbing tears down the provider-side dubbing project and deletes
// the local job record. The provider call goes first so a failure there
// leaves the record in place for a retry.
func (s *Service) RemoveDubbing(ctx context.Context, id string) error {
	job, err := s.store.DubbingStorage().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.dubbing.RemoveDub(ctx, job.ExternalJobID); err != nil {
		return err
	}
	if err := s.store.DubbingStorage().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().
		Str("job_id", id).
		Str("external_job_id", job.ExternalJobID).
		Msg("Dubbing job removed")
	return nil
}

// resolveProviderInput returns a Dolby-readable input location for a job
// subject. Locally stored media is streamed into the provider's dlb://
// input bucket because the object store's URLs are not reachable from
// the provider; remote video passes through by URL.
func (s *Service) resolveProviderInput(ctx context.Context, mediaType models.MediaType, mediaID string) (string, error) {
	var objectKey, remoteURL string
	switch mediaType {
	case models.MediaTypeAudio:
		audio, err := s.store.AudioStorage().Get(ctx, mediaID)
		if err != nil {
			return "", err
		}
		objectKey = audio.ObjectKey
	case models.MediaTypeVideo:
		video, err := s.store.VideoStorage().Get(ctx, mediaID)
		if err != nil {
			return "", err
		}
		objectKey = video.ObjectKey
		remoteURL = video.RemoteURL
	default:
		return "", mediaType.Validate()
	}

	if objectKey == "" {
		return remoteURL, nil
	}

	src, err := s.objects.Open(ctx, objectKey)
	if err != nil {
		return "", err
	}
	defer src.Close()

	return s.media.UploadInput(ctx, src, path.Base(objectKey))
}

// SubmitEnhanceRequest carries the caller's parameters for an enhance job.
type SubmitEnhanceRequest struct {
	MediaID   string                  `json:"media_id" validate:"required"`
	MediaType string                  `json:"media_type" validate:"required,oneof=audio video"`
	Settings  *models.EnhanceSettings `json:"settings,omitempty"`
}

// SubmitEnhance submits a Dolby enhance job for the subject media.
func (s *Service) SubmitEnhance(ctx context.Context, userID string, req *SubmitEnhanceRequest) (*models.EnhanceJob, error) {
	mediaType := models.MediaType(req.MediaType)
	if err := mediaType.Validate(); err != nil {
		return nil, &models.ValidationError{Field: "media_type", Message: err.Error()}
	}

	inputURL, err := s.resolveProviderInput(ctx, mediaType, req.MediaID)
	if err != nil {
		return nil, err
	}

	jobID := common.NewEnhanceID()
	outputURL := fmt.Sprintf("dlb://out/%s_enhanced.mp4", jobID)

	externalID, err := s.media.SubmitEnhance(ctx, &interfaces.EnhanceSubmission{
		InputURL:  inputURL,
		OutputURL: outputURL,
		Settings:  req.Settings,
	})
	if err != nil {
		return nil, err
	}

	job := &models.EnhanceJob{
		JobRecord: models.JobRecord{
			ID:            jobID,
			ExternalJobID: externalID,
			Status:        models.JobStatusPending,
			UserID:        userID,
			MediaID:       req.MediaID,
			MediaType:     mediaType,
		},
		Settings:  req.Settings,
		OutputURL: outputURL,
	}

	if err := s.store.EnhanceStorage().Save(ctx, job); err != nil {
		return nil, err
	}

	if err := s.enqueueFirstPoll(ctx, job.ID, models.JobKindEnhance, userID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("external_job_id", externalID).
		Str("media_id", req.MediaID).
		Msg("Enhance job submitted")

	return job, nil
}

// SubmitDiagnoseRequest carries the caller's parameters for a diagnose job.
type SubmitDiagnoseRequest struct {
	MediaID   string `json:"media_id" validate:"required"`
	MediaType string `json:"media_type" validate:"required,oneof=audio video"`
}

// SubmitDiagnose submits a Dolby diagnose job for the subject media. The
// diagnosis comes back inline on completion, no output location needed.
func (s *Service) SubmitDiagnose(ctx context.Context, userID string, req *SubmitDiagnoseRequest) (*models.DiagnoseJob, error) {
	mediaType := models.MediaType(req.MediaType)
	if err := mediaType.Validate(); err != nil {
		return nil, &models.ValidationError{Field: "media_type", Message: err.Error()}
	}

	inputURL, err := s.resolveProviderInput(ctx, mediaType, req.MediaID)
	if err != nil {
		return nil, err
	}

	externalID, err := s.media.SubmitDiagnose(ctx, inputURL)
	if err != nil {
		return nil, err
	}

	job := &models.DiagnoseJob{
		JobRecord: models.JobRecord{
			ID:            common.NewDiagnoseID(),
			ExternalJobID: externalID,
			Status:        models.JobStatusPending,
			UserID:        userID,
			MediaID:       req.MediaID,
			MediaType:     mediaType,
		},
	}

	if err := s.store.DiagnoseStorage().Save(ctx, job); err != nil {
		return nil, err
	}

	if err := s.enqueueFirstPoll(ctx, job.ID, models.JobKindDiagnose, userID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("external_job_id", externalID).
		Str("media_id", req.MediaID).
		Msg("Diagnose job submitted")

	return job, nil
}
