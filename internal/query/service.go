// Package query exposes the two read operations the API layer serves:
// the corpus-wide metrics snapshot and the windowed aggregated series.
package query

import (
	"context"
	"time"

	"github.com/dmarkhas/sensorgrid/internal/aggregate"
	"github.com/dmarkhas/sensorgrid/internal/domain"
	"go.uber.org/zap"
)

type Service struct {
	store  domain.ReadingStore
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store domain.ReadingStore, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Metrics computes the summary snapshot over the entire reading corpus.
// Store failures propagate untouched; the API layer translates them.
func (s *Service) Metrics(ctx context.Context) (aggregate.Snapshot, error) {
	readings, err := s.store.ListAll(ctx)
	if err != nil {
		return aggregate.Snapshot{}, err
	}

	snap := aggregate.ComputeMetrics(readings, s.now())
	s.logger.Debug("computed metrics snapshot",
		zap.Int("total_readings", snap.TotalReadings),
		zap.Int("motion_detected", snap.MotionDetectedCount),
	)
	return snap, nil
}

// AggregatedSeries resolves the range token to a window start, fetches the
// matching readings in ascending timestamp order, and buckets them by hour.
func (s *Service) AggregatedSeries(ctx context.Context, rangeToken string) ([]aggregate.Point, error) {
	windowStart := aggregate.ResolveWindow(rangeToken, s.now())

	readings, err := s.store.ListSince(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	points := aggregate.ComputeSeries(readings)
	s.logger.Debug("computed aggregated series",
		zap.String("range", rangeToken),
		zap.Time("window_start", windowStart),
		zap.Int("points", len(points)),
	)
	return points, nil
}
