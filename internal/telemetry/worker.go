package telemetry

import (
	"context"
	"time"

	"llm_dispatch/internal/models"
	"llm_dispatch/internal/utils"
)

// RecordStore is where drained records land. *storage.UsageRepository
// satisfies it.
type RecordStore interface {
	CreateBatch(ctx context.Context, records []*models.DispatchRecord) error
}

// Archiver optionally receives every drained batch in addition to the store.
// *S3Archiver satisfies it.
type Archiver interface {
	ArchiveBatch(ctx context.Context, records []*models.DispatchRecord) (string, error)
}

// Worker drains the queue in batches into the record store, retrying failed
// batches with backoff. One worker goroutine runs per process.
type Worker struct {
	queue    Queue
	store    RecordStore
	archiver Archiver // may be nil
	config   *QueueConfig
	logger   *utils.Logger

	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewWorker creates a telemetry worker. archiver may be nil.
func NewWorker(queue Queue, store RecordStore, archiver Archiver, config *QueueConfig) *Worker {
	if config == nil {
		config = DefaultQueueConfig("dispatch")
	}
	return &Worker{
		queue:       queue,
		store:       store,
		archiver:    archiver,
		config:      config,
		logger:      utils.NewLogger("telemetry-worker"),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop drains the current batch and stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.stoppedChan
}

// Enqueue forwards a record to the queue; the request path calls this.
func (w *Worker) Enqueue(ctx context.Context, record *models.DispatchRecord) error {
	return w.queue.Enqueue(ctx, record)
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.stoppedChan)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("telemetry worker stopping")
			return
		case <-ctx.Done():
			w.logger.Info("telemetry worker context cancelled")
			return
		default:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	records, err := w.queue.DequeueWithTimeout(ctx, w.config.BatchSize, w.config.BatchTimeout)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("failed to dequeue records", "error", err)
			time.Sleep(1 * time.Second)
		}
		return
	}
	if len(records) == 0 {
		return
	}

	w.logger.Debug("persisting dispatch records", "count", len(records))

	backoff := w.config.RetryBackoff
	for attempt := 0; ; attempt++ {
		err := w.store.CreateBatch(ctx, records)
		if err == nil {
			break
		}
		if attempt >= w.config.MaxRetries {
			w.logger.Error("dropping batch after retries", "count", len(records), "error", err)
			return
		}
		w.logger.Warn("batch insert failed, retrying", "attempt", attempt+1, "error", err)
		time.Sleep(backoff)
		backoff *= 2
	}

	if w.archiver != nil {
		if key, err := w.archiver.ArchiveBatch(ctx, records); err != nil {
			w.logger.Error("failed to archive batch", "error", err)
		} else if key != "" {
			w.logger.Debug("archived batch", "key", key)
		}
	}
}
