// Package scheduler runs the recurring maintenance tasks: provider
// webhook re-registration and the stale job sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/jobs"
)

// Service owns the cron runner.
type Service struct {
	config     common.SchedulerConfig
	media      interfaces.MediaProcessingClient
	jobs       *jobs.Service
	webhookURL string
	cron       *cron.Cron
	logger     arbor.ILogger
	running    bool
}

// NewService creates the scheduler. webhookURL is the externally
// reachable callback endpoint re-registered with the media provider.
func NewService(config common.SchedulerConfig, media interfaces.MediaProcessingClient, jobsService *jobs.Service, webhookURL string, logger arbor.ILogger) *Service {
	return &Service{
		config:     config,
		media:      media,
		jobs:       jobsService,
		webhookURL: webhookURL,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start registers the schedules and begins the cron runner.
func (s *Service) Start() error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled by configuration")
		return nil
	}

	if s.config.WebhookRefresh != "" && s.media != nil && s.webhookURL != "" {
		if _, err := s.cron.AddFunc(s.config.WebhookRefresh, s.refreshWebhook); err != nil {
			return fmt.Errorf("failed to schedule webhook refresh: %w", err)
		}
		s.logger.Info().
			Str("schedule", s.config.WebhookRefresh).
			Str("url", s.webhookURL).
			Msg("Webhook refresh scheduled")
	}

	if s.config.StaleJobSweep != "" && s.jobs != nil {
		if _, err := s.cron.AddFunc(s.config.StaleJobSweep, s.sweepStaleJobs); err != nil {
			return fmt.Errorf("failed to schedule stale job sweep: %w", err)
		}
		s.logger.Info().
			Str("schedule", s.config.StaleJobSweep).
			Str("max_age", s.config.StaleJobMaxAge).
			Msg("Stale job sweep scheduled")
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Msg("Scheduler started")
	return nil
}

// Stop halts the cron runner and waits for in-flight tasks.
func (s *Service) Stop() {
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
}

// refreshWebhook re-registers the job status callback. The provider
// treats registration as an overwrite, so repeating it is harmless and
// recovers from registrations lost on their side.
func (s *Service) refreshWebhook() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.media.RegisterWebhook(ctx, s.webhookURL); err != nil {
		s.logger.Error().Err(err).Str("url", s.webhookURL).Msg("Webhook re-registration failed")
		return
	}
	s.logger.Debug().Str("url", s.webhookURL).Msg("Webhook re-registered")
}

func (s *Service) sweepStaleJobs() {
	maxAge := 24 * time.Hour
	if s.config.StaleJobMaxAge != "" {
		parsed, err := time.ParseDuration(s.config.StaleJobMaxAge)
		if err != nil {
			s.logger.Warn().Err(err).Str("stale_job_max_age", s.config.StaleJobMaxAge).Msg("Invalid stale job max age, using 24h")
		} else {
			maxAge = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.jobs.SweepStale(ctx, maxAge)
}
