package jobs

import (
	"context"
	"errors"
	"strings"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// Webhook convergence: a provider callback drives the exact same
// finalize/fail transitions as the poller. Whichever path arrives first
// performs the terminal write; the loser's attempt is absorbed by the
// guarded transitions. Callbacks for unknown external ids are logged and
// dropped, never retried.

// MapDolbyStatus translates Dolby's job status vocabulary onto the
// record lifecycle.
func MapDolbyStatus(status string) models.JobStatus {
	switch strings.ToLower(status) {
	case "success":
		return models.JobStatusCompleted
	case "failed", "error", "cancelled", "internalerror":
		return models.JobStatusFailed
	case "running", "downloading", "uploading":
		return models.JobStatusProcessing
	default:
		return models.JobStatusPending
	}
}

// HandleDolbyCallback matches the callback's external job id against the
// enhance and diagnose collections and applies the reported outcome.
// Returns models.ErrNotFound when no record matches.
func (s *Service) HandleDolbyCallback(ctx context.Context, externalJobID, providerStatus, detail string) error {
	status := MapDolbyStatus(providerStatus)

	if job, err := s.store.EnhanceStorage().GetByExternalID(ctx, externalJobID); err == nil {
		return s.applyEnhanceOutcome(ctx, job, status, detail)
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	if job, err := s.store.DiagnoseStorage().GetByExternalID(ctx, externalJobID); err == nil {
		return s.applyDiagnoseOutcome(ctx, job, status, detail)
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	s.logger.Warn().
		Str("external_job_id", externalJobID).
		Str("provider_status", providerStatus).
		Msg("Webhook for unknown external job id, dropped")
	return models.ErrNotFound
}

func (s *Service) applyEnhanceOutcome(ctx context.Context, job *models.EnhanceJob, status models.JobStatus, detail string) error {
	switch status {
	case models.JobStatusCompleted:
		if job.Status.IsTerminal() {
			// Poll already converged; callback replay is a no-op
			return nil
		}
		return s.FinalizeEnhance(ctx, job, job.UserID)
	case models.JobStatusFailed:
		return s.failEnhance(ctx, job, job.UserID, detail)
	case models.JobStatusProcessing:
		return s.store.EnhanceStorage().MarkProcessing(ctx, job.ID)
	default:
		return nil
	}
}

func (s *Service) applyDiagnoseOutcome(ctx context.Context, job *models.DiagnoseJob, status models.JobStatus, detail string) error {
	switch status {
	case models.JobStatusCompleted:
		if job.Status.IsTerminal() {
			return nil
		}
		// Diagnosis payload travels in the status response, not the
		// callback body; FinalizeDiagnose re-queries when needed.
		return s.FinalizeDiagnose(ctx, job, nil, job.UserID)
	case models.JobStatusFailed:
		return s.failDiagnose(ctx, job, job.UserID, detail)
	case models.JobStatusProcessing:
		return s.store.DiagnoseStorage().MarkProcessing(ctx, job.ID)
	default:
		return nil
	}
}
