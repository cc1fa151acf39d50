package telemetry

import (
	"context"
	"errors"
	"time"

	"llm_dispatch/internal/models"
)

// ErrQueueClosed is returned by operations on a closed queue.
var ErrQueueClosed = errors.New("queue is closed")

// Queue buffers dispatch records between the request path and the worker.
// Two backends exist: an in-memory channel queue for standalone deployments
// and a Redis list queue that survives restarts and supports distributed
// workers.
type Queue interface {
	// Enqueue adds a record. It must be cheap; the request path calls it.
	Enqueue(ctx context.Context, record *models.DispatchRecord) error

	// DequeueWithTimeout returns up to maxItems records, waiting at most
	// timeout for the first one. An empty slice means the timeout passed
	// with nothing queued.
	DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]*models.DispatchRecord, error)

	// Length returns the number of queued records.
	Length(ctx context.Context) (int, error)

	// Close shuts the queue down. Enqueued records remain readable until
	// drained where the backend allows it.
	Close() error
}

// QueueConfig holds settings shared by the queue backends and the worker.
type QueueConfig struct {
	QueueName    string
	BatchSize    int
	BatchTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DefaultQueueConfig returns the settings used when none are configured.
func DefaultQueueConfig(name string) *QueueConfig {
	return &QueueConfig{
		QueueName:    name,
		BatchSize:    100,
		BatchTimeout: 5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 1 * time.Second,
	}
}
