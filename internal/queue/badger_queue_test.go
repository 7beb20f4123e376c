package queue

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

func setupTestQueue(t *testing.T, visibilityTimeout time.Duration, maxReceive int) (*Manager, func()) {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)

	mgr, err := NewManager(db, "tasks", visibilityTimeout, maxReceive, arbor.NewLogger())
	require.NoError(t, err)

	return mgr, func() { db.Close() }
}

func TestQueue_EnqueueReceiveAck(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, time.Minute, 3)
	defer cleanup()
	ctx := context.Background()

	task := models.PollTask{JobID: "dub_1", Kind: models.JobKindDubbing, Attempt: 1, CorrelationID: "user-1"}
	require.NoError(t, mgr.Enqueue(ctx, task))

	length, err := mgr.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, length)

	delivery, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dub_1", delivery.Task.JobID)
	assert.Equal(t, models.JobKindDubbing, delivery.Task.Kind)
	assert.Equal(t, 1, delivery.ReceiveCount)

	// In flight: not visible to another receive
	_, err = mgr.Receive(ctx)
	assert.ErrorIs(t, err, models.ErrNoMessage)

	require.NoError(t, delivery.Ack())

	length, err = mgr.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, length)
}

func TestQueue_DelayedVisibility(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, time.Minute, 3)
	defer cleanup()
	ctx := context.Background()

	task := models.PollTask{JobID: "enh_1", Kind: models.JobKindEnhance, Attempt: 2}
	require.NoError(t, mgr.EnqueueWithDelay(ctx, task, 150*time.Millisecond))

	_, err := mgr.Receive(ctx)
	assert.ErrorIs(t, err, models.ErrNoMessage)

	time.Sleep(200 * time.Millisecond)

	delivery, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "enh_1", delivery.Task.JobID)
	assert.Equal(t, 2, delivery.Task.Attempt)
	require.NoError(t, delivery.Ack())
}

func TestQueue_UnackedRedelivery(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, 200*time.Millisecond, 3)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, mgr.Enqueue(ctx, models.PollTask{JobID: "dia_1", Kind: models.JobKindDiagnose}))

	first, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ReceiveCount)
	// No ack: the delivery times out

	time.Sleep(300 * time.Millisecond)

	second, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dia_1", second.Task.JobID)
	assert.Equal(t, 2, second.ReceiveCount)
	require.NoError(t, second.Ack())
}

func TestQueue_DeadLetterAfterMaxReceives(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, 50*time.Millisecond, 2)
	defer cleanup()
	ctx := context.Background()

	var deadTask models.PollTask
	var deadCount int
	mgr.OnDeadLetter(func(task models.PollTask, receiveCount int) {
		deadTask = task
		deadCount = receiveCount
	})

	require.NoError(t, mgr.Enqueue(ctx, models.PollTask{JobID: "dub_poison", Kind: models.JobKindDubbing, CorrelationID: "user-1"}))

	// Burn through the allowed receives without acking
	for i := 0; i < 2; i++ {
		delivery, err := mgr.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, i+1, delivery.ReceiveCount)
		time.Sleep(100 * time.Millisecond)
	}

	// The next receive drops the message and fires the callback
	_, err := mgr.Receive(ctx)
	assert.ErrorIs(t, err, models.ErrNoMessage)
	assert.Equal(t, "dub_poison", deadTask.JobID)
	assert.Equal(t, "user-1", deadTask.CorrelationID)
	assert.Equal(t, 2, deadCount)

	length, err := mgr.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, length)
}

func TestQueue_ReceiveOrderFollowsVisibility(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, time.Minute, 3)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, mgr.EnqueueWithDelay(ctx, models.PollTask{JobID: "later"}, 100*time.Millisecond))
	require.NoError(t, mgr.Enqueue(ctx, models.PollTask{JobID: "sooner"}))

	delivery, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sooner", delivery.Task.JobID)
	require.NoError(t, delivery.Ack())

	time.Sleep(150 * time.Millisecond)

	delivery, err = mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "later", delivery.Task.JobID)
	require.NoError(t, delivery.Ack())
}

func TestQueue_DeadLetterRemovalCommitsWhenQueueDrains(t *testing.T) {
	mgr, cleanup := setupTestQueue(t, 50*time.Millisecond, 1)
	defer cleanup()
	ctx := context.Background()

	var deadLetters int
	mgr.OnDeadLetter(func(task models.PollTask, receiveCount int) {
		deadLetters++
	})

	require.NoError(t, mgr.Enqueue(ctx, models.PollTask{JobID: "dub_poison", Kind: models.JobKindDubbing}))

	_, err := mgr.Receive(ctx)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	// The drop leaves nothing to deliver; the deletion must still be
	// durable and the callback must fire for this receive only.
	_, err = mgr.Receive(ctx)
	assert.ErrorIs(t, err, models.ErrNoMessage)
	assert.Equal(t, 1, deadLetters)

	length, err := mgr.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, length)

	_, err = mgr.Receive(ctx)
	assert.ErrorIs(t, err, models.ErrNoMessage)
	assert.Equal(t, 1, deadLetters)
}
