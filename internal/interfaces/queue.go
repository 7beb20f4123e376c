package interfaces

import (
	"context"
	"time"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// Delivery is one received queue message. Ack removes the message; a
// delivery that is never acked becomes visible again after the queue's
// visibility timeout and is redelivered.
type Delivery struct {
	MessageID    string
	Task         models.PollTask
	ReceiveCount int
	Ack          func() error
}

// TaskQueue is the durable delayed queue poll tasks travel through.
type TaskQueue interface {
	Enqueue(ctx context.Context, task models.PollTask) error
	EnqueueWithDelay(ctx context.Context, task models.PollTask, delay time.Duration) error
	Receive(ctx context.Context) (*Delivery, error)
	Length(ctx context.Context) (int, error)
	Close() error
}

// TaskHandler processes one poll task. A returned error leaves the
// message unacked so the queue redelivers it.
type TaskHandler func(ctx context.Context, task models.PollTask) error

// WorkerPool manages concurrent task processing
type WorkerPool interface {
	RegisterHandler(kind models.JobKind, handler TaskHandler)
	Start() error
	Stop() error
}
