package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// envelope is the internal structure stored in Badger for each queued
// poll task.
type envelope struct {
	ID           string          `json:"id"`
	Body         models.PollTask `json:"body"`
	EnqueuedAt   time.Time       `json:"enqueued_at"`
	VisibleAt    time.Time       `json:"visible_at"`
	ReceiveCount int             `json:"receive_count"`
}

// DeadLetterFunc is invoked when a message exceeds the max receive count
// and is dropped from the queue.
type DeadLetterFunc func(task models.PollTask, receiveCount int)

// Manager implements a persistent delayed queue on BadgerDB. Message
// data lives at queue:{name}:msg:{id}; a visibility index at
// queue:{name}:index:{nanos}:{id} keeps ready messages scannable in
// time order. Receiving a message moves its index entry forward by the
// visibility timeout, so an unacked delivery is redelivered.
type Manager struct {
	db                *badger.DB
	queueName         string
	visibilityTimeout time.Duration
	maxReceive        int
	deadLetter        DeadLetterFunc
	logger            arbor.ILogger
}

// NewManager creates a new Badger-backed queue manager
func NewManager(db *badger.DB, queueName string, visibilityTimeout time.Duration, maxReceive int, logger arbor.ILogger) (*Manager, error) {
	if db == nil {
		return nil, errors.New("badger db is required")
	}
	if queueName == "" {
		return nil, errors.New("queue name is required")
	}
	if visibilityTimeout <= 0 {
		visibilityTimeout = 5 * time.Minute
	}
	if maxReceive <= 0 {
		maxReceive = 3
	}

	return &Manager{
		db:                db,
		queueName:         queueName,
		visibilityTimeout: visibilityTimeout,
		maxReceive:        maxReceive,
		logger:            logger,
	}, nil
}

// OnDeadLetter registers the callback fired when a message is dropped
// after exhausting its receives. Must be set before workers start.
func (m *Manager) OnDeadLetter(fn DeadLetterFunc) {
	m.deadLetter = fn
}

// Enqueue adds an immediately-visible task to the queue
func (m *Manager) Enqueue(ctx context.Context, task models.PollTask) error {
	return m.EnqueueWithDelay(ctx, task, 0)
}

// EnqueueWithDelay adds a task that becomes visible after delay
func (m *Manager) EnqueueWithDelay(ctx context.Context, task models.PollTask, delay time.Duration) error {
	id := uuid.New().String()
	env := envelope{
		ID:         id,
		Body:       task,
		EnqueuedAt: time.Now(),
		VisibleAt:  time.Now().Add(delay),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}

	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(m.msgKey(id), data); err != nil {
			return err
		}
		return txn.Set(m.indexKey(env.VisibleAt, id), []byte{})
	})
}

// Receive pulls the next visible task from the queue. Returns
// models.ErrNoMessage when nothing is ready. The returned delivery's Ack
// removes the message; without an ack it reappears after the visibility
// timeout.
func (m *Manager) Receive(ctx context.Context) (*interfaces.Delivery, error) {
	var env envelope
	var msgID string
	var oldIndexKey []byte
	var dropped []envelope
	var found bool

	err := m.db.Update(func(txn *badger.Txn) error {
		// The closure can run more than once on conflict
		dropped = dropped[:0]
		found = false

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte(fmt.Sprintf("queue:%s:index:", m.queueName))
		it := txn.NewIterator(opts)
		defer it.Close()

		now := time.Now()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			ts, id, err := m.parseIndexKey(key)
			if err != nil {
				continue // skip malformed keys
			}

			if ts.After(now) {
				// Index keys sort by timestamp; nothing later is ready either
				break
			}

			msgItem, err := txn.Get(m.msgKey(id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					// Orphaned index entry, clean up
					if err := txn.Delete(key); err != nil {
						return err
					}
					continue
				}
				return err
			}

			if err := msgItem.Value(func(val []byte) error {
				return json.Unmarshal(val, &env)
			}); err != nil {
				return err
			}

			if env.ReceiveCount >= m.maxReceive {
				// Dead-letter: drop the message so a poison task cannot
				// loop forever. The callback fires after the transaction
				// commits.
				if err := txn.Delete(key); err != nil {
					return err
				}
				if err := txn.Delete(m.msgKey(id)); err != nil {
					return err
				}
				dropped = append(dropped, env)
				continue
			}

			found = true
			msgID = id
			oldIndexKey = key
			break
		}

		if !found {
			// Return nil so any dead-letter deletions above still commit;
			// the no-message result is reported after the transaction.
			return nil
		}

		// Claim: bump receive count, push visibility forward
		env.ReceiveCount++
		env.VisibleAt = time.Now().Add(m.visibilityTimeout)

		newData, err := json.Marshal(env)
		if err != nil {
			return err
		}
		if err := txn.Set(m.msgKey(msgID), newData); err != nil {
			return err
		}
		if err := txn.Delete(oldIndexKey); err != nil {
			return err
		}
		return txn.Set(m.indexKey(env.VisibleAt, msgID), []byte{})
	})

	if err != nil {
		// Transaction rolled back; dropped messages were not removed, so
		// the dead-letter callback must not fire for them.
		return nil, err
	}

	m.reportDropped(dropped)

	if !found {
		return nil, models.ErrNoMessage
	}

	return &interfaces.Delivery{
		MessageID:    msgID,
		Task:         env.Body,
		ReceiveCount: env.ReceiveCount,
		Ack:          func() error { return m.delete(msgID) },
	}, nil
}

func (m *Manager) reportDropped(dropped []envelope) {
	for _, env := range dropped {
		m.logger.Warn().
			Str("job_id", env.Body.JobID).
			Str("kind", string(env.Body.Kind)).
			Int("receive_count", env.ReceiveCount).
			Msg("Queue message exceeded max receives, dead-lettered")
		if m.deadLetter != nil {
			m.deadLetter(env.Body, env.ReceiveCount)
		}
	}
}

func (m *Manager) delete(msgID string) error {
	return m.db.Update(func(txn *badger.Txn) error {
		msgKey := m.msgKey(msgID)
		item, err := txn.Get(msgKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil // already deleted
			}
			return err
		}

		var current envelope
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &current)
		}); err != nil {
			return err
		}

		if err := txn.Delete(m.indexKey(current.VisibleAt, msgID)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Delete(msgKey)
	})
}

// Length counts queued messages, visible or not
func (m *Manager) Length(ctx context.Context) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte(fmt.Sprintf("queue:%s:msg:", m.queueName))
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close closes the queue manager (no-op, the DB is managed externally)
func (m *Manager) Close() error {
	return nil
}

// Helpers

func (m *Manager) msgKey(id string) []byte {
	return []byte(fmt.Sprintf("queue:%s:msg:%s", m.queueName, id))
}

func (m *Manager) indexKey(visibleAt time.Time, id string) []byte {
	ts := visibleAt.UnixNano()
	// Zero pad to 20 digits so lexicographic key order matches time order
	return []byte(fmt.Sprintf("queue:%s:index:%020d:%s", m.queueName, ts, id))
}

func (m *Manager) parseIndexKey(key []byte) (time.Time, string, error) {
	prefixStr := fmt.Sprintf("queue:%s:index:", m.queueName)
	if len(key) <= len(prefixStr) {
		return time.Time{}, "", fmt.Errorf("invalid key length")
	}

	suffix := string(key[len(prefixStr):])
	if len(suffix) < 21 { // 20 digits + 1 colon
		return time.Time{}, "", fmt.Errorf("invalid suffix length")
	}

	tsStr := suffix[:20]
	id := suffix[21:]

	var ts int64
	if _, err := fmt.Sscanf(tsStr, "%d", &ts); err != nil {
		return time.Time{}, "", err
	}

	return time.Unix(0, ts), id, nil
}
