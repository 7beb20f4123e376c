package interfaces

import (
	"context"
	"time"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// AudioStorage - interface for audio document persistence
type AudioStorage interface {
	Save(ctx context.Context, audio *models.Audio) error
	Get(ctx context.Context, id string) (*models.Audio, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Audio, error)
	Delete(ctx context.Context, id string) error
}

// VideoStorage - interface for video document persistence
type VideoStorage interface {
	Save(ctx context.Context, video *models.Video) error
	Get(ctx context.Context, id string) (*models.Video, error)
	GetByIndexingTaskID(ctx context.Context, taskID string) (*models.Video, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Video, error)
	Delete(ctx context.Context, id string) error
}

// DubbingStorage - interface for dubbing job records
type DubbingStorage interface {
	Save(ctx context.Context, job *models.DubbingJob) error
	Get(ctx context.Context, id string) (*models.DubbingJob, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.DubbingJob, error)
	ListByUser(ctx context.Context, userID string) ([]*models.DubbingJob, error)
	// SetExternalJobID records the provider id; write-once.
	SetExternalJobID(ctx context.Context, id, externalID string) error
	MarkProcessing(ctx context.Context, id string) error
	// Complete flips the record to completed and records the result keys in
	// the same write. No-op when the record is already terminal; the bool
	// reports whether this call performed the transition.
	Complete(ctx context.Context, id string, resultKey string, languageResults map[string]string) (bool, error)
	// Fail flips the record to failed. No-op when already terminal.
	Fail(ctx context.Context, id string, reason string) (bool, error)
	// ListStale returns non-terminal jobs not updated since cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]*models.DubbingJob, error)
	Delete(ctx context.Context, id string) error
}

// EnhanceStorage - interface for enhancement job records
type EnhanceStorage interface {
	Save(ctx context.Context, job *models.EnhanceJob) error
	Get(ctx context.Context, id string) (*models.EnhanceJob, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.EnhanceJob, error)
	ListByUser(ctx context.Context, userID string) ([]*models.EnhanceJob, error)
	SetExternalJobID(ctx context.Context, id, externalID string) error
	MarkProcessing(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, resultKey string) (bool, error)
	Fail(ctx context.Context, id string, reason string) (bool, error)
	ListStale(ctx context.Context, cutoff time.Time) ([]*models.EnhanceJob, error)
	Delete(ctx context.Context, id string) error
}

// DiagnoseStorage - interface for diagnosis job records
type DiagnoseStorage interface {
	Save(ctx context.Context, job *models.DiagnoseJob) error
	Get(ctx context.Context, id string) (*models.DiagnoseJob, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.DiagnoseJob, error)
	ListByUser(ctx context.Context, userID string) ([]*models.DiagnoseJob, error)
	SetExternalJobID(ctx context.Context, id, externalID string) error
	MarkProcessing(ctx context.Context, id string) error
	// Complete stores the diagnosis payload with the terminal transition.
	Complete(ctx context.Context, id string, diagnosis *models.Diagnosis) (bool, error)
	Fail(ctx context.Context, id string, reason string) (bool, error)
	// SetSummary attaches the generated plain-language summary.
	SetSummary(ctx context.Context, id, summary string) error
	// SetReportKey attaches the rendered PDF report's object key.
	SetReportKey(ctx context.Context, id, key string) error
	ListStale(ctx context.Context, cutoff time.Time) ([]*models.DiagnoseJob, error)
	Delete(ctx context.Context, id string) error
}

// InquiryStorage - interface for voice-clone inquiry persistence
type InquiryStorage interface {
	Save(ctx context.Context, inquiry *models.Inquiry) error
	ListByUser(ctx context.Context, userID string) ([]*models.Inquiry, error)
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	AudioStorage() AudioStorage
	VideoStorage() VideoStorage
	DubbingStorage() DubbingStorage
	EnhanceStorage() EnhanceStorage
	DiagnoseStorage() DiagnoseStorage
	InquiryStorage() InquiryStorage
	Close() error
}
