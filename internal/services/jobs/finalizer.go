package jobs

import (
	"context"
	"fmt"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// The finalizers move a terminal-success job from "provider says done"
// to "artifact durable, record completed, owner notified". Download and
// re-upload failures leave the record untouched so a retry can resume:
// completion is at-least-once, not exactly-once. Object keys derive from
// the job id, so a duplicate re-upload lands on the same key and the
// guarded Complete makes the second transition a no-op.

// FinalizeDubbing streams every target language's artifact into object
// storage under <jobID>_<language>.mp4 and completes the record.
func (s *Service) FinalizeDubbing(ctx context.Context, job *models.DubbingJob, correlationID string) error {
	languageResults := make(map[string]string, len(job.TargetLanguages))
	for _, lang := range job.TargetLanguages {
		body, err := s.dubbing.DownloadDub(ctx, job.ExternalJobID, lang)
		if err != nil {
			return &models.UpstreamError{
				Provider:  "elevenlabs",
				Operation: "download_dub",
				Message:   err.Error(),
			}
		}

		key, putErr := s.objects.Put(ctx, body, fmt.Sprintf("%s_%s.mp4", job.ID, lang))
		body.Close()
		if putErr != nil {
			return &models.UpstreamError{
				Provider:  "objects",
				Operation: "store_dub",
				Message:   putErr.Error(),
			}
		}
		languageResults[lang] = key
	}

	resultKey := ""
	if len(job.TargetLanguages) > 0 {
		resultKey = languageResults[job.TargetLanguages[0]]
	}

	applied, err := s.store.DubbingStorage().Complete(ctx, job.ID, resultKey, languageResults)
	if err != nil {
		return err
	}
	if !applied {
		// Lost the race against the webhook; its winner already notified
		s.logger.Debug().Str("job_id", job.ID).Msg("Dubbing completion already applied elsewhere")
		return nil
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("result_key", resultKey).
		Int("languages", len(languageResults)).
		Msg("Dubbing job completed")

	s.notify(correlationID, models.JobKindDubbing, job.ID, models.JobStatusCompleted, s.objects.GetURL(resultKey), "")
	return nil
}

// FinalizeEnhance pulls the enhanced media from provider-side storage,
// re-uploads it under <jobID>_enhanced.mp4 and completes the record.
func (s *Service) FinalizeEnhance(ctx context.Context, job *models.EnhanceJob, correlationID string) error {
	body, err := s.media.DownloadOutput(ctx, job.OutputURL)
	if err != nil {
		return &models.UpstreamError{
			Provider:  "dolby",
			Operation: "download_output",
			Message:   err.Error(),
		}
	}

	key, putErr := s.objects.Put(ctx, body, fmt.Sprintf("%s_enhanced.mp4", job.ID))
	body.Close()
	if putErr != nil {
		return &models.UpstreamError{
			Provider:  "objects",
			Operation: "store_enhanced",
			Message:   putErr.Error(),
		}
	}

	applied, err := s.store.EnhanceStorage().Complete(ctx, job.ID, key)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Debug().Str("job_id", job.ID).Msg("Enhance completion already applied elsewhere")
		return nil
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("result_key", key).
		Msg("Enhance job completed")

	s.notify(correlationID, models.JobKindEnhance, job.ID, models.JobStatusCompleted, s.objects.GetURL(key), "")
	return nil
}

// FinalizeDiagnose persists the inline diagnosis payload with the
// completed transition. Nothing to download: the provider reports the
// diagnosis in the status response itself.
func (s *Service) FinalizeDiagnose(ctx context.Context, job *models.DiagnoseJob, diagnosis *models.Diagnosis, correlationID string) error {
	if diagnosis == nil {
		// Completed without a payload; re-query before giving up
		state, d, err := s.media.GetDiagnoseStatus(ctx, job.ExternalJobID)
		if err != nil {
			return err
		}
		if state.Status != models.JobStatusCompleted || d == nil {
			return &models.UpstreamError{
				Provider:  "dolby",
				Operation: "get_diagnosis",
				Message:   "completed diagnose job has no diagnosis payload",
			}
		}
		diagnosis = d
	}

	applied, err := s.store.DiagnoseStorage().Complete(ctx, job.ID, diagnosis)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Debug().Str("job_id", job.ID).Msg("Diagnose completion already applied elsewhere")
		return nil
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Msg("Diagnose job completed")

	s.notify(correlationID, models.JobKindDiagnose, job.ID, models.JobStatusCompleted, "", "")
	return nil
}
