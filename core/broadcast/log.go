// Package broadcast carries stored readings out to live consumers. The hub
// that pushed updates to connected dashboards lives outside this service;
// LogBroadcaster stands in for it and documents the contract.
package broadcast

import (
	"context"

	"github.com/dmarkhas/sensorgrid/internal/domain"
	"go.uber.org/zap"
)

type LogBroadcaster struct {
	name   string
	logger *zap.Logger
}

func NewLogBroadcaster(name string, logger *zap.Logger) *LogBroadcaster {
	return &LogBroadcaster{name: name, logger: logger}
}

func (b *LogBroadcaster) Broadcast(ctx context.Context, readings []domain.SensorReading) error {
	b.logger.Info("broadcasting batch",
		zap.String("broadcaster", b.name),
		zap.Int("count", len(readings)),
	)
	for _, r := range readings {
		b.logger.Debug("reading stored",
			zap.String("broadcaster", b.name),
			zap.String("sensor_type", r.SensorType),
			zap.String("sensor_name", r.SensorName),
			zap.Time("timestamp", r.Timestamp),
		)
	}
	return nil
}
