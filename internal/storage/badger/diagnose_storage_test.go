package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

func newDiagnoseJob(id, userID string) *models.DiagnoseJob {
	return &models.DiagnoseJob{
		JobRecord: models.JobRecord{
			ID:        id,
			Status:    models.JobStatusPending,
			UserID:    userID,
			MediaID:   "aud_src",
			MediaType: models.MediaTypeAudio,
		},
	}
}

func TestDiagnoseStorage_CompleteStoresDiagnosisInline(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDiagnoseStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDiagnoseJob("dia_1", "user-1")))
	require.NoError(t, storage.MarkProcessing(ctx, "dia_1"))

	diagnosis := &models.Diagnosis{
		QualityScore: &models.QualityScore{Average: 7.2},
		MusicDetected: 12.5,
	}
	applied, err := storage.Complete(ctx, "dia_1", diagnosis)
	require.NoError(t, err)
	assert.True(t, applied)

	stored, err := storage.Get(ctx, "dia_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
	require.NotNil(t, stored.Diagnosis)
	assert.InDelta(t, 7.2, stored.Diagnosis.QualityScore.Average, 0.001)
	// Diagnosis is inline, there is no artifact key until a report renders
	assert.Empty(t, stored.ResultKey)

	applied, err = storage.Complete(ctx, "dia_1", &models.Diagnosis{})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestDiagnoseStorage_SetReportKeyRequiresCompletion(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDiagnoseStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDiagnoseJob("dia_1", "user-1")))

	// Pending job cannot hold a report
	assert.Error(t, storage.SetReportKey(ctx, "dia_1", "dia_1_report.pdf"))

	applied, err := storage.Complete(ctx, "dia_1", &models.Diagnosis{})
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, storage.SetReportKey(ctx, "dia_1", "dia_1_report.pdf"))
	require.NoError(t, storage.SetSummary(ctx, "dia_1", "overall quality is good"))

	stored, err := storage.Get(ctx, "dia_1")
	require.NoError(t, err)
	assert.Equal(t, "dia_1_report.pdf", stored.ResultKey)
	assert.Equal(t, "overall quality is good", stored.Summary)
}

func TestDiagnoseStorage_FailRecordsReason(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDiagnoseStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDiagnoseJob("dia_1", "user-1")))

	applied, err := storage.Fail(ctx, "dia_1", "media could not be decoded")
	require.NoError(t, err)
	assert.True(t, applied)

	stored, err := storage.Get(ctx, "dia_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, stored.Status)
	assert.Equal(t, "media could not be decoded", stored.Error)
}
