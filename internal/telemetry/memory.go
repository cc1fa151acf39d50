package telemetry

import (
	"context"
	"sync"
	"time"

	"llm_dispatch/internal/models"
)

// MemoryQueue is a channel-backed queue. Records are lost on restart; use
// the Redis backend where that matters.
type MemoryQueue struct {
	items  chan *models.DispatchRecord
	mu     sync.RWMutex
	closed bool
}

// NewMemoryQueue creates an in-memory queue buffered for several batches.
func NewMemoryQueue(config *QueueConfig) *MemoryQueue {
	if config == nil {
		config = DefaultQueueConfig("memory")
	}
	return &MemoryQueue{
		items: make(chan *models.DispatchRecord, config.BatchSize*10),
	}
}

// Enqueue adds a record, blocking only if the buffer is full.
func (q *MemoryQueue) Enqueue(ctx context.Context, record *models.DispatchRecord) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- record:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DequeueWithTimeout waits up to timeout for the first record, then drains
// whatever else is immediately available up to maxItems.
func (q *MemoryQueue) DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]*models.DispatchRecord, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, ErrQueueClosed
	}

	var records []*models.DispatchRecord

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case record := <-q.items:
		records = append(records, record)
	case <-timer.C:
		return records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for len(records) < maxItems {
		select {
		case record := <-q.items:
			records = append(records, record)
		default:
			return records, nil
		}
	}
	return records, nil
}

// Length returns the number of buffered records.
func (q *MemoryQueue) Length(ctx context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0, ErrQueueClosed
	}
	return len(q.items), nil
}

// Close marks the queue closed. Buffered records are dropped.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
	}
	return nil
}
