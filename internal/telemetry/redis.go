package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"llm_dispatch/internal/models"
)

// RedisQueue is a Redis-list-backed queue. Records survive restarts and can
// be drained by workers on other pods.
type RedisQueue struct {
	client *redis.Client
	qKey   string
}

// NewRedisQueue connects to Redis and verifies the connection.
func NewRedisQueue(config *QueueConfig) (*RedisQueue, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{
		client: client,
		qKey:   fmt.Sprintf("telemetry:%s", config.QueueName),
	}, nil
}

// NewRedisQueueWithClient wraps an existing client, used by tests and by
// deployments that share one connection pool.
func NewRedisQueueWithClient(client *redis.Client, queueName string) *RedisQueue {
	return &RedisQueue{
		client: client,
		qKey:   fmt.Sprintf("telemetry:%s", queueName),
	}
}

// Enqueue serializes the record onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, record *models.DispatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := q.client.RPush(ctx, q.qKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push to Redis: %w", err)
	}
	return nil
}

// DequeueWithTimeout blocks up to timeout for the first record, then drains
// whatever else is immediately available up to maxItems.
func (q *RedisQueue) DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]*models.DispatchRecord, error) {
	result, err := q.client.BLPop(ctx, timeout, q.qKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop from Redis: %w", err)
	}

	// result[0] is the key, result[1] the value.
	records := make([]*models.DispatchRecord, 0, maxItems)
	records = appendRecord(records, []byte(result[1]))

	for len(records) < maxItems {
		raw, err := q.client.LPop(ctx, q.qKey).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return records, nil
		}
		records = appendRecord(records, []byte(raw))
	}
	return records, nil
}

// Length returns the list length.
func (q *RedisQueue) Length(ctx context.Context) (int, error) {
	length, err := q.client.LLen(ctx, q.qKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return int(length), nil
}

// Close closes the underlying client.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func appendRecord(records []*models.DispatchRecord, data []byte) []*models.DispatchRecord {
	var record models.DispatchRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// A malformed entry is skipped rather than wedging the queue.
		return records
	}
	return append(records, &record)
}
