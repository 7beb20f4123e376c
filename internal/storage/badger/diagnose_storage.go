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

// DiagnoseStorage implements the DiagnoseStorage interface for Badger.
// Diagnosis results arrive inline from the provider, so Complete persists
// the payload together with the terminal transition. The rendered PDF
// report and the LLM summary are attached after completion.
type DiagnoseStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDiagnoseStorage creates a new DiagnoseStorage instance
func NewDiagnoseStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DiagnoseStorage {
	return &DiagnoseStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DiagnoseStorage) Save(ctx context.Context, job *models.DiagnoseJob) error {
	if job.ID == "" {
		return fmt.Errorf("diagnose job ID is required")
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
		return fmt.Errorf("failed to save diagnose job: %w", err)
	}
	return nil
}

func (s *DiagnoseStorage) Get(ctx context.Context, id string) (*models.DiagnoseJob, error) {
	var job models.DiagnoseJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diagnose job: %w", err)
	}
	return &job, nil
}

func (s *DiagnoseStorage) GetByExternalID(ctx context.Context, externalID string) (*models.DiagnoseJob, error) {
	var jobs []models.DiagnoseJob
	err := s.db.Store().Find(&jobs, badgerhold.Where("ExternalJobID").Eq(externalID))
	if err != nil {
		return nil, fmt.Errorf("failed to find diagnose job by external id: %w", err)
	}
	if len(jobs) == 0 {
		return nil, models.ErrNotFound
	}
	return &jobs[0], nil
}

func (s *DiagnoseStorage) ListByUser(ctx context.Context, userID string) ([]*models.DiagnoseJob, error) {
	var jobs []models.DiagnoseJob
	err := s.db.Store().Find(&jobs, badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnose jobs: %w", err)
	}
	result := make([]*models.DiagnoseJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *DiagnoseStorage) SetExternalJobID(ctx context.Context, id, externalID string) error {
	found := false
	err := s.db.Store().UpdateMatching(&models.DiagnoseJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DiagnoseJob)
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

func (s *DiagnoseStorage) MarkProcessing(ctx context.Context, id string) error {
	found := false
	err := s.db.Store().UpdateMatching(&models.DiagnoseJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DiagnoseJob)
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
		return fmt.Errorf("failed to mark diagnose job processing: %w", err)
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}

func (s *DiagnoseStorage) Complete(ctx context.Context, id string, diagnosis *models.Diagnosis) (bool, error) {
	found := false
	applied := false
	err := s.db.Store().UpdateMatching(&models.DiagnoseJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DiagnoseJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		if job.Status.IsTerminal() {
			return nil
		}
		job.Status = models.JobStatusCompleted
		job.Diagnosis = diagnosis
		job.UpdatedAt = time.Now()
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to complete diagnose job: %w", err)
	}
	if !found {
		return false, models.ErrNotFound
	}
	return applied, nil
}

func (s *DiagnoseStorage) Fail(ctx context.Context, id string, reason string) (bool, error) {
	found := false
	applied := false
	err := s.db.Store().UpdateMatching(&models.DiagnoseJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DiagnoseJob)
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
		return false, fmt.Errorf("failed to fail diagnose job: %w", err)
	}
	if !found {
		return false, models.ErrNotFound
	}
	return applied, nil
}

func (s *DiagnoseStorage) SetSummary(ctx context.Context, id, summary string) error {
	found := false
	err := s.db.Store().UpdateMatching(&models.DiagnoseJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DiagnoseJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		job.Summary = summary
		job.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set diagnosis summary: %w", err)
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}

func (s *DiagnoseStorage) SetReportKey(ctx context.Context, id, key string) error {
	found := false
	err := s.db.Store().UpdateMatching(&models.DiagnoseJob{}, badgerhold.Where(badgerhold.Key).Eq(id), func(record interface{}) error {
		job, ok := record.(*models.DiagnoseJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		found = true
		// Reports only exist for completed diagnoses
		if job.Status != models.JobStatusCompleted {
			return fmt.Errorf("diagnose job %s is not completed", id)
		}
		job.ResultKey = key
		job.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set diagnosis report key: %w", err)
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}

func (s *DiagnoseStorage) ListStale(ctx context.Context, cutoff time.Time) ([]*models.DiagnoseJob, error) {
	var jobs []models.DiagnoseJob
	query := badgerhold.Where("Status").In(models.JobStatusPending, models.JobStatusProcessing).
		And("UpdatedAt").Lt(cutoff)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list stale diagnose jobs: %w", err)
	}
	result := make([]*models.DiagnoseJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *DiagnoseStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.DiagnoseJob{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete diagnose job: %w", err)
	}
	return nil
}
