package media

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
	storagebadger "github.com/jaiswar203/CreatorEvolve-Server/internal/storage/badger"
)

type fakeIndexClient struct {
	taskState   *interfaces.ProviderJobState
	statusCalls int
	indexedID   string
}

func (c *fakeIndexClient) CreateIndexTask(ctx context.Context, videoURL string) (string, error) {
	return "task_1", nil
}

func (c *fakeIndexClient) GetTaskStatus(ctx context.Context, taskID string) (*interfaces.ProviderJobState, error) {
	c.statusCalls++
	return c.taskState, nil
}

func (c *fakeIndexClient) GetIndexedVideoID(ctx context.Context, taskID string) (string, error) {
	return c.indexedID, nil
}

func setupIndexingService(t *testing.T) (*Service, interfaces.StorageManager, *fakeIndexClient) {
	t.Helper()

	logger := arbor.NewLogger()
	store, err := storagebadger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	idx := &fakeIndexClient{}
	svc := NewService(store, &fakeObjects{}, &fakeVoiceClient{}, idx, nil, nil, "", logger)
	return svc, store, idx
}

func seedIndexingVideo(t *testing.T, store interfaces.StorageManager, taskID string) *models.Video {
	t.Helper()
	video := &models.Video{
		ID:             "vid_1",
		UserID:         "user_1",
		Name:           "clip.mp4",
		Source:         models.VideoSourceUpload,
		ObjectKey:      "videos/clip.mp4",
		IndexingTaskID: taskID,
	}
	require.NoError(t, store.VideoStorage().Save(context.Background(), video))
	return video
}

func TestHandleIndexingCallback_Ready(t *testing.T) {
	svc, store, idx := setupIndexingService(t)
	ctx := context.Background()
	video := seedIndexingVideo(t, store, "task_1")
	idx.taskState = &interfaces.ProviderJobState{Status: models.JobStatusCompleted, Detail: "ready"}
	idx.indexedID = "tl_vid_1"

	require.NoError(t, svc.HandleIndexingCallback(ctx, "task_1", "ready"))

	stored, err := store.VideoStorage().Get(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, "tl_vid_1", stored.IndexedVideoID)
	assert.Equal(t, 1, idx.statusCalls)
}

func TestHandleIndexingCallback_ReadyMismatchDropped(t *testing.T) {
	svc, store, idx := setupIndexingService(t)
	ctx := context.Background()
	video := seedIndexingVideo(t, store, "task_1")
	idx.taskState = &interfaces.ProviderJobState{Status: models.JobStatusProcessing, Detail: "indexing"}
	idx.indexedID = "tl_vid_1"

	// A forged or stale ready callback is checked against the provider and
	// dropped when the task is not actually finished.
	require.NoError(t, svc.HandleIndexingCallback(ctx, "task_1", "ready"))

	stored, err := store.VideoStorage().Get(ctx, video.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.IndexedVideoID)
}

func TestHandleIndexingCallback_UnknownTaskDropped(t *testing.T) {
	svc, _, idx := setupIndexingService(t)

	require.NoError(t, svc.HandleIndexingCallback(context.Background(), "task_unknown", "ready"))
	assert.Zero(t, idx.statusCalls)
}
