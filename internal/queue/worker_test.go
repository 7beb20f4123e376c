package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

func TestWorkerPool_ProcessesAndAcks(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, time.Minute, 3)
	defer cleanup()
	ctx := context.Background()

	var mu sync.Mutex
	var handled []string

	pool := NewWorkerPool(mgr, 2, 20*time.Millisecond, arbor.NewLogger())
	pool.RegisterHandler(models.JobKindDubbing, func(ctx context.Context, task models.PollTask) error {
		mu.Lock()
		handled = append(handled, task.JobID)
		mu.Unlock()
		return nil
	})

	require.NoError(t, mgr.Enqueue(ctx, models.PollTask{JobID: "dub_1", Kind: models.JobKindDubbing}))
	require.NoError(t, mgr.Enqueue(ctx, models.PollTask{JobID: "dub_2", Kind: models.JobKindDubbing}))

	require.NoError(t, pool.Start())
	defer pool.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 2
	}, 3*time.Second, 20*time.Millisecond)

	length, err := mgr.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, length)
}

func TestWorkerPool_HandlerErrorLeavesForRedelivery(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, 100*time.Millisecond, 5)
	defer cleanup()
	ctx := context.Background()

	var mu sync.Mutex
	attempts := 0

	pool := NewWorkerPool(mgr, 1, 20*time.Millisecond, arbor.NewLogger())
	pool.RegisterHandler(models.JobKindEnhance, func(ctx context.Context, task models.PollTask) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient provider error")
		}
		return nil
	})

	require.NoError(t, mgr.Enqueue(ctx, models.PollTask{JobID: "enh_1", Kind: models.JobKindEnhance}))

	require.NoError(t, pool.Start())
	defer pool.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts >= 3
	}, 5*time.Second, 20*time.Millisecond)

	// The successful third attempt acked the message
	require.Eventually(t, func() bool {
		length, err := mgr.Length(ctx)
		return err == nil && length == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWorkerPool_DropsUnroutableTask(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, time.Minute, 3)
	defer cleanup()
	ctx := context.Background()

	// No handler registered for diagnose tasks
	pool := NewWorkerPool(mgr, 1, 20*time.Millisecond, arbor.NewLogger())
	pool.RegisterHandler(models.JobKindDubbing, func(ctx context.Context, task models.PollTask) error {
		return nil
	})

	require.NoError(t, mgr.Enqueue(ctx, models.PollTask{JobID: "dia_1", Kind: models.JobKindDiagnose}))

	require.NoError(t, pool.Start())
	defer pool.Stop()

	require.Eventually(t, func() bool {
		length, err := mgr.Length(ctx)
		return err == nil && length == 0
	}, 3*time.Second, 20*time.Millisecond)
}
