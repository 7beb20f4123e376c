package interfaces

import (
	"context"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// Notifier fans job lifecycle events out to currently-subscribed
// listeners of a correlation id. Fire-and-forget: no listeners means the
// event is dropped, and subscribers never see events emitted before they
// subscribed.
type Notifier interface {
	// Notify delivers event to every active subscriber of correlationID.
	Notify(correlationID string, event models.Notification)

	// Subscribe returns a channel of future events for correlationID. The
	// channel is closed when ctx is cancelled or the returned cancel
	// function is called.
	Subscribe(ctx context.Context, correlationID string) (<-chan models.Notification, func())

	// Close shuts down the notifier and closes all subscriber channels.
	Close() error
}
