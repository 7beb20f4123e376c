package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

func setupTestDB(t *testing.T) (*BadgerDB, func()) {
	t.Helper()

	cfg := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "test.db")}
	db, err := NewBadgerDB(arbor.NewLogger(), cfg)
	require.NoError(t, err)

	return db, func() { db.Close() }
}

func newDubbingJob(id, userID string) *models.DubbingJob {
	return &models.DubbingJob{
		JobRecord: models.JobRecord{
			ID:        id,
			Status:    models.JobStatusPending,
			UserID:    userID,
			MediaID:   "aud_src",
			MediaType: models.MediaTypeAudio,
		},
		TargetLanguages: []string{"es"},
	}
}

func TestDubbingStorage_SaveAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDubbingStorage(db, arbor.NewLogger())
	ctx := context.Background()

	job := newDubbingJob("dub_1", "user-1")
	require.NoError(t, storage.Save(ctx, job))
	assert.False(t, job.CreatedAt.IsZero())

	stored, err := storage.Get(ctx, "dub_1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, models.JobStatusPending, stored.Status)
	assert.Equal(t, []string{"es"}, stored.TargetLanguages)

	_, err = storage.Get(ctx, "dub_missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDubbingStorage_SetExternalJobID_WriteOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDubbingStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_1", "user-1")))

	require.NoError(t, storage.SetExternalJobID(ctx, "dub_1", "ext-1"))
	err := storage.SetExternalJobID(ctx, "dub_1", "ext-2")
	assert.Error(t, err)

	stored, err := storage.Get(ctx, "dub_1")
	require.NoError(t, err)
	assert.Equal(t, "ext-1", stored.ExternalJobID)

	byExternal, err := storage.GetByExternalID(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "dub_1", byExternal.ID)
}

func TestDubbingStorage_CompleteIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDubbingStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_1", "user-1")))
	require.NoError(t, storage.MarkProcessing(ctx, "dub_1"))

	applied, err := storage.Complete(ctx, "dub_1", "dub_1_es.mp3", map[string]string{"es": "dub_1_es.mp3"})
	require.NoError(t, err)
	assert.True(t, applied)

	// Second completion (poll/webhook race) must be a no-op
	applied, err = storage.Complete(ctx, "dub_1", "other_key.mp3", nil)
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := storage.Get(ctx, "dub_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
	assert.Equal(t, "dub_1_es.mp3", stored.ResultKey)
	assert.Equal(t, map[string]string{"es": "dub_1_es.mp3"}, stored.LanguageResults)
}

func TestDubbingStorage_FailAfterCompleteIsNoOp(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDubbingStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_1", "user-1")))

	applied, err := storage.Complete(ctx, "dub_1", "key.mp3", nil)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = storage.Fail(ctx, "dub_1", "provider error")
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := storage.Get(ctx, "dub_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
	assert.Empty(t, stored.Error)
}

func TestDubbingStorage_ListByUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDubbingStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_1", "user-1")))
	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_2", "user-1")))
	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_3", "user-2")))

	jobs, err := storage.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = storage.ListByUser(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestDubbingStorage_ListStale(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDubbingStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_old", "user-1")))
	applied, err := storage.Complete(ctx, "dub_done", "", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.False(t, applied)

	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_done", "user-1")))
	applied, err = storage.Complete(ctx, "dub_done", "key.mp3", nil)
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
	assert.Equal(t, "dub_old", stale[0].ID)
}

func TestDubbingStorage_Delete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewDubbingStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, newDubbingJob("dub_1", "user-1")))
	require.NoError(t, storage.Delete(ctx, "dub_1"))

	_, err := storage.Get(ctx, "dub_1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Deleting a missing job does not error
	require.NoError(t, storage.Delete(ctx, "dub_1"))
}
