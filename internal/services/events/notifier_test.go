package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

func waitForEvent(t *testing.T, ch <-chan models.Notification) models.Notification {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed before event arrived")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return models.Notification{}
	}
}

func TestNotifier_FanOut(t *testing.T) {
	n := NewNotifier(arbor.NewLogger())
	defer n.Close()
	ctx := context.Background()

	first, cancelFirst := n.Subscribe(ctx, "user-1")
	defer cancelFirst()
	second, cancelSecond := n.Subscribe(ctx, "user-1")
	defer cancelSecond()
	other, cancelOther := n.Subscribe(ctx, "user-2")
	defer cancelOther()

	n.Notify("user-1", models.Notification{
		Kind:   models.JobKindDubbing,
		JobID:  "dub_1",
		Status: models.JobStatusCompleted,
	})

	// Both user-1 subscribers receive the same event
	for _, ch := range []<-chan models.Notification{first, second} {
		event := waitForEvent(t, ch)
		assert.Equal(t, "dub_1", event.JobID)
		assert.Equal(t, models.JobStatusCompleted, event.Status)
		assert.False(t, event.Timestamp.IsZero())
	}

	// The user-2 subscriber sees nothing
	select {
	case event := <-other:
		t.Fatalf("unexpected event for user-2: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifier_NoReplayForLateSubscribers(t *testing.T) {
	n := NewNotifier(arbor.NewLogger())
	defer n.Close()

	// Fired with nobody listening: dropped
	n.Notify("user-1", models.Notification{JobID: "dub_1", Status: models.JobStatusCompleted})

	ch, cancel := n.Subscribe(context.Background(), "user-1")
	defer cancel()

	select {
	case event := <-ch:
		t.Fatalf("late subscriber must not see past events, got %+v", event)
	case <-time.After(100 * time.Millisecond):
	}

	// Future events still arrive
	n.Notify("user-1", models.Notification{JobID: "dub_2", Status: models.JobStatusFailed})
	event := waitForEvent(t, ch)
	assert.Equal(t, "dub_2", event.JobID)
}

func TestNotifier_CancelStopsDelivery(t *testing.T) {
	n := NewNotifier(arbor.NewLogger())
	defer n.Close()

	ch, cancel := n.Subscribe(context.Background(), "user-1")
	cancel()

	// Channel closes after cancel
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancel")
	}

	// Notifying afterwards must not panic
	n.Notify("user-1", models.Notification{JobID: "dub_1"})
}

func TestNotifier_ContextCancellation(t *testing.T) {
	n := NewNotifier(arbor.NewLogger())
	defer n.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, unsubscribe := n.Subscribe(ctx, "user-1")
	defer unsubscribe()

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after context cancellation")
	}
}

func TestNotifier_BroadcastMirror(t *testing.T) {
	n := NewNotifier(arbor.NewLogger())
	defer n.Close()

	var mu sync.Mutex
	var mirrored []models.Notification
	n.SetBroadcast(func(event models.Notification) {
		mu.Lock()
		mirrored = append(mirrored, event)
		mu.Unlock()
	})

	// The mirror fires even with no per-id subscribers
	n.Notify("user-1", models.Notification{JobID: "dub_1", Status: models.JobStatusProcessing})
	n.Notify("user-2", models.Notification{JobID: "enh_1", Status: models.JobStatusCompleted})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, mirrored, 2)
	assert.Equal(t, "user-1", mirrored[0].CorrelationID)
	assert.Equal(t, "enh_1", mirrored[1].JobID)
}

func TestNotifier_CloseShutsDownSubscribers(t *testing.T) {
	n := NewNotifier(arbor.NewLogger())

	ch, cancel := n.Subscribe(context.Background(), "user-1")
	defer cancel()

	require.NoError(t, n.Close())

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close on notifier shutdown")
	}
}
