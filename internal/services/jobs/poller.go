package jobs

import (
	"context"
	"errors"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// The poll handlers implement the queue consumer side of the job
// lifecycle. Two retry mechanisms exist and stay separate:
//
//   - provider says "still processing": the handler explicitly enqueues
//     a fresh task with attempt+1 and the same fixed delay, bounded by
//     the configured max poll attempts;
//   - the provider call itself fails: the error propagates to the worker,
//     which leaves the delivery unacked so the queue's visibility timeout
//     redelivers the same task, bounded by the queue's max receive count.

// HandleDubbingPoll processes one dubbing poll task.
func (s *Service) HandleDubbingPoll(ctx context.Context, task models.PollTask) error {
	job, err := s.store.DubbingStorage().Get(ctx, task.JobID)
	if errors.Is(err, models.ErrNotFound) {
		// Record is gone; retrying cannot help
		s.logger.Warn().Str("job_id", task.JobID).Msg("Dubbing job no longer exists, dropping poll task")
		return nil
	}
	if err != nil {
		return err
	}

	if job.Status.IsTerminal() {
		// Webhook or a concurrent poll already finished the job
		s.logger.Debug().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("Dubbing job already terminal, skipping poll")
		return nil
	}

	state, err := s.dubbing.GetDubStatus(ctx, job.ExternalJobID)
	if err != nil {
		if reason, permanent := permanentUpstream(err); permanent {
			return s.failDubbing(ctx, job, task.CorrelationID, reason)
		}
		return err // transient: queue redelivery
	}

	switch state.Status {
	case models.JobStatusCompleted:
		return s.FinalizeDubbing(ctx, job, task.CorrelationID)
	case models.JobStatusFailed:
		return s.failDubbing(ctx, job, task.CorrelationID, state.Detail)
	default:
		return s.handleStillProcessing(ctx, task)
	}
}

// HandleEnhancePoll processes one enhance poll task.
func (s *Service) HandleEnhancePoll(ctx context.Context, task models.PollTask) error {
	job, err := s.store.EnhanceStorage().Get(ctx, task.JobID)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Warn().Str("job_id", task.JobID).Msg("Enhance job no longer exists, dropping poll task")
		return nil
	}
	if err != nil {
		return err
	}

	if job.Status.IsTerminal() {
		s.logger.Debug().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("Enhance job already terminal, skipping poll")
		return nil
	}

	state, err := s.media.GetEnhanceStatus(ctx, job.ExternalJobID)
	if err != nil {
		if reason, permanent := permanentUpstream(err); permanent {
			return s.failEnhance(ctx, job, task.CorrelationID, reason)
		}
		return err
	}

	switch state.Status {
	case models.JobStatusCompleted:
		return s.FinalizeEnhance(ctx, job, task.CorrelationID)
	case models.JobStatusFailed:
		return s.failEnhance(ctx, job, task.CorrelationID, state.Detail)
	default:
		return s.handleStillProcessing(ctx, task)
	}
}

// HandleDiagnosePoll processes one diagnose poll task.
func (s *Service) HandleDiagnosePoll(ctx context.Context, task models.PollTask) error {
	job, err := s.store.DiagnoseStorage().Get(ctx, task.JobID)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Warn().Str("job_id", task.JobID).Msg("Diagnose job no longer exists, dropping poll task")
		return nil
	}
	if err != nil {
		return err
	}

	if job.Status.IsTerminal() {
		s.logger.Debug().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("Diagnose job already terminal, skipping poll")
		return nil
	}

	state, diagnosis, err := s.media.GetDiagnoseStatus(ctx, job.ExternalJobID)
	if err != nil {
		if reason, permanent := permanentUpstream(err); permanent {
			return s.failDiagnose(ctx, job, task.CorrelationID, reason)
		}
		return err
	}

	switch state.Status {
	case models.JobStatusCompleted:
		return s.FinalizeDiagnose(ctx, job, diagnosis, task.CorrelationID)
	case models.JobStatusFailed:
		return s.failDiagnose(ctx, job, task.CorrelationID, state.Detail)
	default:
		return s.handleStillProcessing(ctx, task)
	}
}

// permanentUpstream classifies a provider status-query failure. A
// non-retryable upstream error (bad credentials, deleted provider job)
// will fail on every redelivery too, so the poll chain fails the job
// immediately instead of burning through the queue's receives.
func permanentUpstream(err error) (string, bool) {
	var upstream *models.UpstreamError
	if errors.As(err, &upstream) && !upstream.Retryable() {
		return upstream.Error(), true
	}
	return "", false
}

// handleStillProcessing reschedules the poll chain or, past the attempt
// ceiling, applies the exhaustion policy. The job record itself is not
// mutated on the reschedule path.
func (s *Service) handleStillProcessing(ctx context.Context, task models.PollTask) error {
	if task.Attempt >= s.config.MaxPollAttempts {
		s.exhaust(ctx, task, "poll attempts exhausted while provider still processing")
		return nil
	}
	return s.reschedule(ctx, task)
}

// exhaust applies the configured exhaustion policy to an abandoned poll
// chain: force-fail the job and notify the owner, or log only.
func (s *Service) exhaust(ctx context.Context, task models.PollTask, reason string) {
	if !s.config.FailOnExhaustion {
		s.logger.Warn().
			Str("job_id", task.JobID).
			Str("kind", string(task.Kind)).
			Int("attempt", task.Attempt).
			Msg("Poll attempts exhausted, job left non-terminal (fail_on_exhaustion=false)")
		return
	}

	var applied bool
	var err error
	switch task.Kind {
	case models.JobKindDubbing:
		applied, err = s.store.DubbingStorage().Fail(ctx, task.JobID, reason)
	case models.JobKindEnhance:
		applied, err = s.store.EnhanceStorage().Fail(ctx, task.JobID, reason)
	case models.JobKindDiagnose:
		applied, err = s.store.DiagnoseStorage().Fail(ctx, task.JobID, reason)
	default:
		s.logger.Error().Str("kind", string(task.Kind)).Msg("Unknown job kind on exhausted task")
		return
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error().Err(err).Str("job_id", task.JobID).Msg("Failed to force-fail exhausted job")
		return
	}

	s.logger.Warn().
		Str("job_id", task.JobID).
		Str("kind", string(task.Kind)).
		Int("attempt", task.Attempt).
		Bool("applied", applied).
		Msg("Poll attempts exhausted, job force-failed")

	if applied {
		s.notify(task.CorrelationID, task.Kind, task.JobID, models.JobStatusFailed, "", reason)
	}
}

// HandleDeadLetter is wired as the queue's dead-letter callback: a task
// whose redeliveries ran out gets the same exhaustion treatment as an
// abandoned poll chain.
func (s *Service) HandleDeadLetter(task models.PollTask, receiveCount int) {
	s.exhaust(context.Background(), task, "poll task abandoned after repeated delivery failures")
}

// failDubbing applies the guarded failed transition and notifies only
// when this call actually performed it.
func (s *Service) failDubbing(ctx context.Context, job *models.DubbingJob, correlationID, reason string) error {
	applied, err := s.store.DubbingStorage().Fail(ctx, job.ID, reason)
	if err != nil {
		return err
	}
	if applied {
		s.logger.Info().Str("job_id", job.ID).Str("reason", reason).Msg("Dubbing job failed")
		s.notify(correlationID, models.JobKindDubbing, job.ID, models.JobStatusFailed, "", reason)
	}
	return nil
}

func (s *Service) failEnhance(ctx context.Context, job *models.EnhanceJob, correlationID, reason string) error {
	applied, err := s.store.EnhanceStorage().Fail(ctx, job.ID, reason)
	if err != nil {
		return err
	}
	if applied {
		s.logger.Info().Str("job_id", job.ID).Str("reason", reason).Msg("Enhance job failed")
		s.notify(correlationID, models.JobKindEnhance, job.ID, models.JobStatusFailed, "", reason)
	}
	return nil
}

func (s *Service) failDiagnose(ctx context.Context, job *models.DiagnoseJob, correlationID, reason string) error {
	applied, err := s.store.DiagnoseStorage().Fail(ctx, job.ID, reason)
	if err != nil {
		return err
	}
	if applied {
		s.logger.Info().Str("job_id", job.ID).Str("reason", reason).Msg("Diagnose job failed")
		s.notify(correlationID, models.JobKindDiagnose, job.ID, models.JobStatusFailed, "", reason)
	}
	return nil
}
