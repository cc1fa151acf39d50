package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm_dispatch/internal/models"
)

func record(requestID string) *models.DispatchRecord {
	return &models.DispatchRecord{
		RequestID:    requestID,
		Provider:     "openai",
		EndpointKind: "chat_completions",
		Model:        "gpt-4o-mini",
		Outcome:      models.OutcomeSuccess,
		ElapsedMs:    120,
		CreatedAt:    time.Now(),
	}
}

func TestMemoryQueueEnqueueDequeue(t *testing.T) {
	q := NewMemoryQueue(nil)
	defer q.Close()
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, record("r1")))
	require.NoError(t, q.Enqueue(ctx, record("r2")))

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, length)

	records, err := q.DequeueWithTimeout(ctx, 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].RequestID)
	assert.Equal(t, "r2", records[1].RequestID)
}

func TestMemoryQueueDequeueRespectsMaxItems(t *testing.T) {
	q := NewMemoryQueue(nil)
	defer q.Close()
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, q.Enqueue(ctx, record(id)))
	}

	records, err := q.DequeueWithTimeout(ctx, 2, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, length)
}

func TestMemoryQueueDequeueTimesOutEmpty(t *testing.T) {
	q := NewMemoryQueue(nil)
	defer q.Close()

	start := time.Now()
	records, err := q.DequeueWithTimeout(context.Background(), 10, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestMemoryQueueClosed(t *testing.T) {
	q := NewMemoryQueue(nil)
	require.NoError(t, q.Close())

	err := q.Enqueue(context.Background(), record("r1"))
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, err = q.DequeueWithTimeout(context.Background(), 10, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, err = q.Length(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}
