package domain

import (
	"context"
	"time"
)

// ReadingStore is the storage collaborator. Filtering and ordering happen in
// the store; the aggregation core consumes whatever slice comes back and
// relies on ListSince returning readings in ascending timestamp order.
type ReadingStore interface {
	InsertBatch(ctx context.Context, readings []SensorReading) error
	ListAll(ctx context.Context) ([]SensorReading, error)
	ListSince(ctx context.Context, since time.Time) ([]SensorReading, error)
	ListByType(ctx context.Context, sensorType string) ([]SensorReading, error)
	ListByName(ctx context.Context, sensorName string) ([]SensorReading, error)
	Ping(ctx context.Context) error
	Close() error
}

// Broadcaster receives stored batches for real-time fan-out (dashboards,
// push channels). Implementations must not block the ingest path for long.
type Broadcaster interface {
	Broadcast(ctx context.Context, readings []SensorReading) error
}
