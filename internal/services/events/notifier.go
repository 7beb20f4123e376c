package events

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

const subscriberBuffer = 16

// Notifier implements the Notifier interface with per-correlation-id
// channel fan-out. Constructed once and injected into the emitting path
// (poller, webhooks) and the subscribing path (SSE handlers). Events are
// fire-and-forget: no subscribers means the event is dropped, and there
// is no backlog for late subscribers.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	broadcast   func(models.Notification)
	closed      bool
	logger      arbor.ILogger
}

type subscriber struct {
	ch     chan models.Notification
	cancel context.CancelFunc
	once   sync.Once
}

// NewNotifier creates a new notifier
func NewNotifier(logger arbor.ILogger) *Notifier {
	return &Notifier{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger,
	}
}

// Notify delivers event to every active subscriber of correlationID.
// A subscriber that cannot keep up has the event dropped rather than
// blocking the emitting worker.
func (n *Notifier) Notify(correlationID string, event models.Notification) {
	event.CorrelationID = correlationID
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	n.mu.RLock()
	if n.broadcast != nil {
		n.broadcast(event)
	}
	subs := n.subscribers[correlationID]
	if len(subs) == 0 {
		n.mu.RUnlock()
		n.logger.Debug().
			Str("correlation_id", correlationID).
			Str("job_id", event.JobID).
			Msg("No subscribers for notification, dropped")
		return
	}

	delivered := 0
	for sub := range subs {
		select {
		case sub.ch <- event:
			delivered++
		default:
			n.logger.Warn().
				Str("correlation_id", correlationID).
				Str("job_id", event.JobID).
				Msg("Subscriber channel full, notification dropped")
		}
	}
	n.mu.RUnlock()

	n.logger.Debug().
		Str("correlation_id", correlationID).
		Str("job_id", event.JobID).
		Str("status", string(event.Status)).
		Int("delivered", delivered).
		Msg("Notification delivered")
}

// SetBroadcast installs a firehose callback invoked for every event,
// regardless of correlation id. Used to mirror events onto the websocket
// dashboard stream. Must not block; set during wiring, before Notify runs.
func (n *Notifier) SetBroadcast(fn func(models.Notification)) {
	n.mu.Lock()
	n.broadcast = fn
	n.mu.Unlock()
}

// Subscribe returns a channel of future events for correlationID. The
// channel closes when ctx is cancelled, the cancel function is called,
// or the notifier shuts down.
func (n *Notifier) Subscribe(ctx context.Context, correlationID string) (<-chan models.Notification, func()) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscriber{
		ch:     make(chan models.Notification, subscriberBuffer),
		cancel: cancel,
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	if n.subscribers[correlationID] == nil {
		n.subscribers[correlationID] = make(map[*subscriber]struct{})
	}
	n.subscribers[correlationID][sub] = struct{}{}
	count := len(n.subscribers[correlationID])
	n.mu.Unlock()

	n.logger.Debug().
		Str("correlation_id", correlationID).
		Int("subscriber_count", count).
		Msg("Notification subscriber added")

	unsubscribe := func() {
		cancel()
		n.remove(correlationID, sub)
	}

	go func() {
		<-subCtx.Done()
		n.remove(correlationID, sub)
	}()

	return sub.ch, unsubscribe
}

func (n *Notifier) remove(correlationID string, sub *subscriber) {
	n.mu.Lock()
	subs := n.subscribers[correlationID]
	if subs != nil {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(n.subscribers, correlationID)
			}
			sub.once.Do(func() { close(sub.ch) })
		}
	}
	n.mu.Unlock()
}

// Close shuts down the notifier and closes all subscriber channels
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true

	for id, subs := range n.subscribers {
		for sub := range subs {
			sub.cancel()
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(n.subscribers, id)
	}

	n.logger.Debug().Msg("Notifier closed")
	return nil
}

var _ interfaces.Notifier = (*Notifier)(nil)
