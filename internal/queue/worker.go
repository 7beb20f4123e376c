package queue

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// WorkerPool manages a pool of workers that process poll tasks.
// A handler error leaves the delivery unacked so the queue's visibility
// timeout redelivers it; handler success acks and removes the message.
type WorkerPool struct {
	queue        interfaces.TaskQueue
	handlers     map[models.JobKind]interfaces.TaskHandler
	concurrency  int
	pollInterval time.Duration
	logger       arbor.ILogger
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(queue interfaces.TaskQueue, concurrency int, pollInterval time.Duration, logger arbor.ILogger) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queue:        queue,
		handlers:     make(map[models.JobKind]interfaces.TaskHandler),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// RegisterHandler registers a handler for a job kind. Not safe to call
// after Start.
func (wp *WorkerPool) RegisterHandler(kind models.JobKind, handler interfaces.TaskHandler) {
	wp.handlers[kind] = handler
	wp.logger.Debug().
		Str("kind", string(kind)).
		Msg("Task handler registered")
}

// Start starts the worker pool
func (wp *WorkerPool) Start() error {
	wp.logger.Info().
		Int("concurrency", wp.concurrency).
		Msg("Starting worker pool")

	for i := 0; i < wp.concurrency; i++ {
		go wp.worker(i)
	}

	return nil
}

// Stop gracefully stops the worker pool
func (wp *WorkerPool) Stop() error {
	wp.logger.Info().Msg("Stopping worker pool")
	wp.cancel()
	return nil
}

func (wp *WorkerPool) worker(workerID int) {
	// Stagger worker starts to reduce transaction conflicts on the shared
	// Badger store
	staggerDelay := (wp.pollInterval / time.Duration(wp.concurrency)) * time.Duration(workerID)
	if staggerDelay > 0 {
		time.Sleep(staggerDelay)
	}

	wp.logger.Debug().
		Int("worker_id", workerID).
		Dur("stagger_delay", staggerDelay).
		Msg("Worker started")

	ticker := time.NewTicker(wp.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug().
				Int("worker_id", workerID).
				Msg("Worker stopped")
			return

		case <-ticker.C:
			if err := wp.processOne(workerID); err != nil {
				if !errors.Is(err, models.ErrNoMessage) {
					wp.logger.Warn().
						Err(err).
						Int("worker_id", workerID).
						Msg("Error processing task")
				}
			}
		}
	}
}

// processOne receives and processes a single task
func (wp *WorkerPool) processOne(workerID int) error {
	delivery, err := wp.queue.Receive(wp.ctx)
	if err != nil {
		return err
	}

	task := delivery.Task

	handler, exists := wp.handlers[task.Kind]
	if !exists {
		wp.logger.Error().
			Str("kind", string(task.Kind)).
			Str("job_id", task.JobID).
			Msg("No handler registered for task kind")
		// Nothing will ever handle it, drop it
		if ackErr := delivery.Ack(); ackErr != nil {
			wp.logger.Warn().Err(ackErr).Msg("Failed to drop unroutable task")
		}
		return nil
	}

	wp.logger.Debug().
		Str("job_id", task.JobID).
		Str("kind", string(task.Kind)).
		Int("attempt", task.Attempt).
		Int("receive_count", delivery.ReceiveCount).
		Int("worker_id", workerID).
		Msg("Processing task")

	startTime := time.Now()
	handlerErr := handler(wp.ctx, task)
	duration := time.Since(startTime)

	if handlerErr != nil {
		// Leave the message unacked: the visibility timeout expires and
		// the queue redelivers, bounded by its max receive count. This is
		// the transient-failure retry path, distinct from the explicit
		// "still processing" reschedule done inside the handler.
		wp.logger.Error().
			Err(handlerErr).
			Str("job_id", task.JobID).
			Str("kind", string(task.Kind)).
			Dur("duration", duration).
			Int("worker_id", workerID).
			Msg("Task handler failed, leaving for redelivery")
		return handlerErr
	}

	wp.logger.Debug().
		Str("job_id", task.JobID).
		Str("kind", string(task.Kind)).
		Dur("duration", duration).
		Int("worker_id", workerID).
		Msg("Task completed")

	if err := delivery.Ack(); err != nil {
		wp.logger.Warn().
			Err(err).
			Str("job_id", task.JobID).
			Msg("Failed to ack task after successful processing")
		return err
	}

	return nil
}
