package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmarkhas/sensorgrid/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestToReadingsStampsIdentityAndIngestTime(t *testing.T) {
	before := time.Now().UTC()
	readings := toReadings([]domain.SensorData{
		{Type: "energy", Name: "Office", Payload: json.RawMessage(`{"energy": 12.5}`)},
		{Type: "motion", Name: "Hallway", Payload: json.RawMessage(`{"motionDetected": true}`)},
	})
	after := time.Now().UTC()

	require.Len(t, readings, 2)
	require.NotEqual(t, readings[0].ID, readings[1].ID)
	for _, r := range readings {
		require.NotEmpty(t, r.ID)
		require.False(t, r.Timestamp.Before(before))
		require.False(t, r.Timestamp.After(after))
		require.Equal(t, r.Timestamp, r.CreatedAt)
	}
	require.Equal(t, "energy", readings[0].SensorType)
	require.Equal(t, "Office", readings[0].SensorName)
}

func TestToReadingsKeepsProvidedTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	readings := toReadings([]domain.SensorData{
		{Type: "energy", Name: "Office", Payload: json.RawMessage(`{"energy": 1}`), Timestamp: &ts},
	})

	require.Equal(t, ts, readings[0].Timestamp)
	require.NotEqual(t, ts, readings[0].CreatedAt)
}

type captureStore struct {
	batches [][]domain.SensorReading
}

func (c *captureStore) InsertBatch(ctx context.Context, readings []domain.SensorReading) error {
	c.batches = append(c.batches, readings)
	return nil
}

func (c *captureStore) ListAll(ctx context.Context) ([]domain.SensorReading, error) {
	return nil, nil
}

func (c *captureStore) ListSince(ctx context.Context, since time.Time) ([]domain.SensorReading, error) {
	return nil, nil
}

func (c *captureStore) ListByType(ctx context.Context, sensorType string) ([]domain.SensorReading, error) {
	return nil, nil
}

func (c *captureStore) ListByName(ctx context.Context, sensorName string) ([]domain.SensorReading, error) {
	return nil, nil
}

func (c *captureStore) Ping(ctx context.Context) error { return nil }
func (c *captureStore) Close() error                   { return nil }

type captureBroadcaster struct {
	batches [][]domain.SensorReading
}

func (c *captureBroadcaster) Broadcast(ctx context.Context, readings []domain.SensorReading) error {
	c.batches = append(c.batches, readings)
	return nil
}

func TestProcessBatchStoresAndBroadcasts(t *testing.T) {
	store := &captureStore{}
	bc := &captureBroadcaster{}
	w := NewWorker(store, bc, 1, 10, zap.NewNop())

	batch := toReadings([]domain.SensorData{
		{Type: "energy", Name: "Office", Payload: json.RawMessage(`{"energy": 5}`)},
	})
	w.processBatch(context.Background(), batch)

	require.Len(t, store.batches, 1)
	require.Len(t, bc.batches, 1)
	require.Len(t, store.batches[0], 1)
}
