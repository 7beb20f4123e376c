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

// DubbingStorage implements the DubbingStorage interface for Badger.
// Terminal transitions run as conditional writes inside a single
// transaction so a poll and a webhook racing on the same job cannot
// double-apply.
type DubbingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDubbingStorage creates a new DubbingStorage instance
func NewDubbingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DubbingStorage {
	return &DubbingStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DubbingStorage) Save(ctx context.Context, job *models.DubbingJob) error {
	if job.ID == "" {
		return fmt.Errorf("dubbing job ID is required")
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save dubbing job: %w", err)
	}
	return nil
}

func (s *DubbingStorage) Get(ctx context.Context, id string) (*models.DubbingJob, error) {
	var job models.DubbingJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dubbing job: %w", err)
	}
	return &job, nil
}

func (s *DubbingStorage) GetByExternalID(ctx context.Context, externalID string) (*models.DubbingJob, error) {
	var jobs []models.DubbingJob
	err := s.db.Store().Find(&jobs, badgerhold.Where("ExternalJobID").Eq(externalID))
	if err != nil {
		return nil, fmt.Errorf("failed to find dubbing job by external id: %w", err)
	}
	if len(jobs) == 0 {
		return nil, models.ErrNotFound
	}
	return &jobs[0], nil
}

func (s *DubbingStorage) ListByUser(ctx context.Context, userID string) ([]*models.DubbingJob, error) {
	var jobs []models.DubbingJob
	err := s.db.Store().Find(&jobs, badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list dubbing jobs: %w", err)
	}
	result := make([]*models.DubbingJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *DubbingStorage) SetExternalJobID(ctx context.Context, id, externalID string) error {
	found := false
	err := s.db.Store().UpdateMatching(&models.DubbingJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DubbingJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		if err := job.SetExternalJobID(externalID); err != nil {
			return err
		}
		job.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set external job id: %w", err)
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}

func (s *DubbingStorage) MarkProcessing(ctx context.Context, id string) error {
	found := false
	err := s.db.Store().UpdateMatching(&models.DubbingJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DubbingJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		// Already processing or terminal: leave untouched
		if job.Status != models.JobStatusPending {
			return nil
		}
		return job.Transition(models.JobStatusProcessing)
	})
	if err != nil {
		return fmt.Errorf("failed to mark dubbing job processing: %w", err)
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}

func (s *DubbingStorage) Complete(ctx context.Context, id string, resultKey string, languageResults map[string]string) (bool, error) {
	found := false
	applied := false
	err := s.db.Store().UpdateMatching(&models.DubbingJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DubbingJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		if job.Status.IsTerminal() {
			return nil // lost the poll/webhook race, safe no-op
		}
		job.Status = models.JobStatusCompleted
		job.ResultKey = resultKey
		job.LanguageResults = languageResults
		job.UpdatedAt = time.Now()
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to complete dubbing job: %w", err)
	}
	if !found {
		return false, models.ErrNotFound
	}
	return applied, nil
}

func (s *DubbingStorage) Fail(ctx context.Context, id string, reason string) (bool, error) {
	found := false
	applied := false
	err := s.db.Store().UpdateMatching(&models.DubbingJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DubbingJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		if job.Status.IsTerminal() {
			return nil
		}
		job.Status = models.JobStatusFailed
		job.Error = reason
		job.UpdatedAt = time.Now()
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to fail dubbing job: %w", err)
	}
	if !found {
		return false, models.ErrNotFound
	}
	return applied, nil
}

func (s *DubbingStorage) ListStale(ctx context.Context, cutoff time.Time) ([]*models.DubbingJob, error) {
	var jobs []models.DubbingJob
	query := badgerhold.Where("Status").In(models.JobStatusPending, models.JobStatusProcessing).
		And("UpdatedAt").Lt(cutoff)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list stale dubbing jobs: %w", err)
	}
	result := make([]*models.DubbingJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *DubbingStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.DubbingJob{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete dubbing job: %w", err)
	}
	return nil
}
