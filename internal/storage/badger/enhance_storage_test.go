package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

func newEnhanceJob(id, userID string) *models.EnhanceJob {
	return &models.EnhanceJob{
		JobRecord: models.JobRecord{
			ID:        id,
			Status:    models.JobStatusPending,
			UserID:    userID,
			MediaID:   "aud_src",
			MediaType: models.MediaTypeAudio,
		},
		OutputURL: "dlb://out/" + id + "_enhanced.mp4",
	}
}

func TestEnhanceStorage_SaveAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewEnhanceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	job := newEnhanceJob("enh_1", "user-1")
	require.NoError(t, storage.Save(ctx, job))
	assert.False(t, job.CreatedAt.IsZero())

	stored, err := storage.Get(ctx, "enh_1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, models.JobStatusPending, stored.Status)
	assert.Equal(t, "dlb://out/enh_1_enhanced.mp4", stored.OutputURL)

	_, err = storage.Get(ctx, "enh_missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEnhanceStorage_SetExternalJobID_WriteOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewEnhanceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_1", "user-1")))

	require.NoError(t, storage.SetExternalJobID(ctx, "enh_1", "ext-1"))
	err := storage.SetExternalJobID(ctx, "enh_1", "ext-2")
	assert.Error(t, err)

	byExternal, err := storage.GetByExternalID(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "enh_1", byExternal.ID)

	_, err = storage.GetByExternalID(ctx, "ext-2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEnhanceStorage_CompleteIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewEnhanceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_1", "user-1")))
	require.NoError(t, storage.MarkProcessing(ctx, "enh_1"))

	applied, err := storage.Complete(ctx, "enh_1", "enh_1_enhanced.mp4")
	require.NoError(t, err)
	assert.True(t, applied)

	// Second completion (poll/webhook race) must be a no-op
	applied, err = storage.Complete(ctx, "enh_1", "other_key.mp4")
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := storage.Get(ctx, "enh_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
	assert.Equal(t, "enh_1_enhanced.mp4", stored.ResultKey)
}

func TestEnhanceStorage_FailAfterCompleteIsNoOp(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewEnhanceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_1", "user-1")))

	applied, err := storage.Complete(ctx, "enh_1", "key.mp4")
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = storage.Fail(ctx, "enh_1", "provider error")
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := storage.Get(ctx, "enh_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
	assert.Empty(t, stored.Error)
}

func TestEnhanceStorage_FailGuardsMissingAndRepeat(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewEnhanceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	_, err := storage.Fail(ctx, "enh_missing", "boom")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_1", "user-1")))

	applied, err := storage.Fail(ctx, "enh_1", "media unreadable")
	require.NoError(t, err)
	assert.True(t, applied)

	// A late completion after failure is absorbed
	applied, err = storage.Complete(ctx, "enh_1", "key.mp4")
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := storage.Get(ctx, "enh_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, stored.Status)
	assert.Equal(t, "media unreadable", stored.Error)
	assert.Empty(t, stored.ResultKey)
}

func TestEnhanceStorage_ListByUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewEnhanceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_1", "user-1")))
	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_2", "user-1")))
	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_3", "user-2")))

	jobs, err := storage.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = storage.ListByUser(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestEnhanceStorage_ListStale(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewEnhanceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_old", "user-1")))
	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_done", "user-1")))
	applied, err := storage.Complete(ctx, "enh_done", "key.mp4")
	require.NoError(t, err)
	require.True(t, applied)

	// Everything updated so far is newer than a cutoff in the past
	stale, err := storage.ListStale(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stale)

	// A cutoff in the future catches the non-terminal job only
	stale, err = storage.ListStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "enh_old", stale[0].ID)
}

func TestEnhanceStorage_Delete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewEnhanceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newEnhanceJob("enh_1", "user-1")))
	require.NoError(t, storage.Delete(ctx, "enh_1"))

	_, err := storage.Get(ctx, "enh_1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Deleting a missing job does not error
	require.NoError(t, storage.Delete(ctx, "enh_1"))
}
