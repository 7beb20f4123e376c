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

// EnhanceStorage implements the EnhanceStorage interface for Badger.
// Transition guards mirror DubbingStorage.
type EnhanceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewEnhanceStorage creates a new EnhanceStorage instance
func NewEnhanceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.EnhanceStorage {
	return &EnhanceStorage{
		db:     db,
		logger: logger,
	}
}

func (s *EnhanceStorage) Save(ctx context.Context, job *models.EnhanceJob) error {
	if job.ID == "" {
		return fmt.Errorf("enhance job ID is required")
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
		return fmt.Errorf("failed to save enhance job: %w", err)
	}
	return nil
}

func (s *EnhanceStorage) Get(ctx context.Context, id string) (*models.EnhanceJob, error) {
	var job models.EnhanceJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enhance job: %w", err)
	}
	return &job, nil
}

func (s *EnhanceStorage) GetByExternalID(ctx context.Context, externalID string) (*models.EnhanceJob, error) {
	var jobs []models.EnhanceJob
	err := s.db.Store().Find(&jobs, badgerhold.Where("ExternalJobID").Eq(externalID))
	if err != nil {
		return nil, fmt.Errorf("failed to find enhance job by external id: %w", err)
	}
	if len(jobs) == 0 {
		return nil, models.ErrNotFound
	}
	return &jobs[0], nil
}

func (s *EnhanceStorage) ListByUser(ctx context.Context, userID string) ([]*models.EnhanceJob, error) {
	var jobs []models.EnhanceJob
	err := s.db.Store().Find(&jobs, badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list enhance jobs: %w", err)
	}
	result := make([]*models.EnhanceJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *EnhanceStorage) SetExternalJobID(ctx context.Context, id, externalID string) error {
	found := false
	err := s.db.Store().UpdateMatching(&models.EnhanceJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.EnhanceJob)
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

func (s *EnhanceStorage) MarkProcessing(ctx context.Context, id string) error {
	found := false
	err := s.db.Store().UpdateMatching(&models.EnhanceJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.EnhanceJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		if job.Status != models.JobStatusPending {
			return nil
		}
		return job.Transition(models.JobStatusProcessing)
	})
	if err != nil {
		return fmt.Errorf("failed to mark enhance job processing: %w", err)
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}

func (s *EnhanceStorage) Complete(ctx context.Context, id string, resultKey string) (bool, error) {
	found := false
	applied := false
	err := s.db.Store().UpdateMatching(&models.EnhanceJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.EnhanceJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		if job.Status.IsTerminal() {
			return nil
		}
		job.Status = models.JobStatusCompleted
		job.ResultKey = resultKey
		job.UpdatedAt = time.Now()
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to complete enhance job: %w", err)
	}
	if !found {
		return false, models.ErrNotFound
	}
	return applied, nil
}

func (s *EnhanceStorage) Fail(ctx context.Context, id string, reason string) (bool, error) {
	found := false
	applied := false
	err := s.db.Store().UpdateMatching(&models.EnhanceJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.EnhanceJob)
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
		return false, fmt.Errorf("failed to fail enhance job: %w", err)
	}
	if !found {
		return false, models.ErrNotFound
	}
	return applied, nil
}

func (s *EnhanceStorage) ListStale(ctx context.Context, cutoff time.Time) ([]*models.EnhanceJob, error) {
	var jobs []models.EnhanceJob
	query := badgerhold.Where("Status").In(models.JobStatusPending, models.JobStatusProcessing).
		And("UpdatedAt").Lt(cutoff)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list stale enhance jobs: %w", err)
	}
	result := make([]*models.EnhanceJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *EnhanceStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.EnhanceJob{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete enhance job: %w", err)
	}
	return nil
}
