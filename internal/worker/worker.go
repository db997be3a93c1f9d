package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmarkhas/sensorgrid/internal/broker"
	"github.com/dmarkhas/sensorgrid/internal/domain"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Worker drains the message queue into the reading store in batches and
// hands each stored batch to the broadcaster for live fan-out.
type Worker struct {
	store       domain.ReadingStore
	broadcaster domain.Broadcaster
	workerCount int
	batchSize   int
	logger      *zap.Logger
}

func NewWorker(store domain.ReadingStore, broadcaster domain.Broadcaster, workerCount, batchSize int, logger *zap.Logger) *Worker {
	return &Worker{
		store:       store,
		broadcaster: broadcaster,
		workerCount: workerCount,
		batchSize:   batchSize,
		logger:      logger,
	}
}

func (w *Worker) Start(ctx context.Context, mq broker.MessageQueue) error {
	var wg sync.WaitGroup

	for i := range w.workerCount {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.worker(ctx, workerID, mq)
		}(i)
	}

	wg.Wait()
	return nil
}

func (w *Worker) worker(ctx context.Context, workerID int, mq broker.MessageQueue) {
	w.logger.Info("worker started", zap.Int("worker_id", workerID))
	defer w.logger.Info("worker stopped", zap.Int("worker_id", workerID))

	// batch is shared between the consume goroutine and the flush ticker.
	var mu sync.Mutex
	batch := make([]domain.SensorReading, 0, w.batchSize)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	flush := func() {
		mu.Lock()
		pending := batch
		batch = make([]domain.SensorReading, 0, w.batchSize)
		mu.Unlock()

		if len(pending) > 0 {
			w.processBatch(ctx, pending)
		}
	}

	handler := func(data []byte) error {
		var bulkData domain.BulkSensorData
		if err := json.Unmarshal(data, &bulkData); err != nil {
			failedReadings.Inc()
			return errors.Wrap(err, "failed to unmarshal message")
		}

		mu.Lock()
		batch = append(batch, toReadings(bulkData.Data)...)
		full := len(batch) >= w.batchSize
		mu.Unlock()

		if full {
			flush()
		}
		return nil
	}

	go func() {
		if err := mq.Consume(ctx, handler); err != nil && ctx.Err() == nil {
			w.logger.Error("consume error", zap.Int("worker_id", workerID), zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-ticker.C:
			flush()
		}
	}
}

// toReadings stamps identity and ingest time. A message without a capture
// timestamp gets the ingest time, matching what upstream producers omit.
func toReadings(data []domain.SensorData) []domain.SensorReading {
	now := time.Now().UTC()

	readings := make([]domain.SensorReading, len(data))
	for i, d := range data {
		ts := now
		if d.Timestamp != nil {
			ts = d.Timestamp.UTC()
		}
		readings[i] = domain.SensorReading{
			ID:         uuid.NewString(),
			SensorType: d.Type,
			SensorName: d.Name,
			Payload:    d.Payload,
			Timestamp:  ts,
			CreatedAt:  now,
		}
	}
	return readings
}

func (w *Worker) processBatch(ctx context.Context, batch []domain.SensorReading) {
	start := time.Now()

	if err := w.store.InsertBatch(ctx, batch); err != nil {
		failedReadings.Add(float64(len(batch)))
		w.logger.Error("failed to store batch", zap.Int("size", len(batch)), zap.Error(err))
		return
	}

	processedReadings.Add(float64(len(batch)))
	batchDuration.Observe(time.Since(start).Seconds())

	if w.broadcaster != nil {
		if err := w.broadcaster.Broadcast(ctx, batch); err != nil {
			w.logger.Error("failed to broadcast batch", zap.Error(err))
		}
	}

	w.logger.Debug("processed batch",
		zap.Int("size", len(batch)),
		zap.Duration("duration", time.Since(start)),
	)
}
