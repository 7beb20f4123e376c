package jobs

import (
	"context"
	"time"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// SweepStale force-fails jobs that have sat non-terminal past maxAge.
// Catches jobs whose poll chain and webhook were both lost, e.g. across
// an unclean restart that dropped queue state. Returns the number of
// jobs failed.
func (s *Service) SweepStale(ctx context.Context, maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	const reason = "job abandoned, no status update within retention window"
	swept := 0

	dubbing, err := s.store.DubbingStorage().ListStale(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("Stale sweep failed to list dubbing jobs")
	}
	for _, job := range dubbing {
		applied, err := s.store.DubbingStorage().Fail(ctx, job.ID, reason)
		if err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Stale sweep failed to fail dubbing job")
			continue
		}
		if applied {
			swept++
			s.notify(job.UserID, models.JobKindDubbing, job.ID, models.JobStatusFailed, "", reason)
		}
	}

	enhance, err := s.store.EnhanceStorage().ListStale(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("Stale sweep failed to list enhance jobs")
	}
	for _, job := range enhance {
		applied, err := s.store.EnhanceStorage().Fail(ctx, job.ID, reason)
		if err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Stale sweep failed to fail enhance job")
			continue
		}
		if applied {
			swept++
			s.notify(job.UserID, models.JobKindEnhance, job.ID, models.JobStatusFailed, "", reason)
		}
	}

	diagnose, err := s.store.DiagnoseStorage().ListStale(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("Stale sweep failed to list diagnose jobs")
	}
	for _, job := range diagnose {
		applied, err := s.store.DiagnoseStorage().Fail(ctx, job.ID, reason)
		if err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Stale sweep failed to fail diagnose job")
			continue
		}
		if applied {
			swept++
			s.notify(job.UserID, models.JobKindDiagnose, job.ID, models.JobStatusFailed, "", reason)
		}
	}

	if swept > 0 {
		s.logger.Warn().Int("count", swept).Msg("Stale jobs force-failed")
	}
	return swept
}
