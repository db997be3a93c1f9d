package aggregate

import (
	"sort"
	"time"

	"github.com/dmarkhas/sensorgrid/internal/domain"
)

// maxSeriesPoints caps the emitted series. When more hour buckets exist only
// the earliest ones are returned; callers wanting more issue a narrower
// window.
const maxSeriesPoints = 20

// Point is one occupied hour bucket. Same zero-guard and truncation rules as
// Snapshot, scoped to the bucket's readings.
type Point struct {
	BucketStart time.Time `json:"bucketStart"`
	Energy      float64   `json:"energy"`
	CO2         int64     `json:"co2"`
	Humidity    int64     `json:"humidity"`
}

// ComputeSeries groups readings by the UTC hour of their timestamp and emits
// per-bucket averages in ascending bucket order, at most maxSeriesPoints of
// them.
//
// The input is expected to be pre-filtered to the query window and sorted
// ascending by timestamp by the storage collaborator. Grouping itself is
// order-independent, but the "earliest 20" cut assumes the upstream ordering
// held; this function does not re-sort or re-filter readings.
func ComputeSeries(readings []domain.SensorReading) []Point {
	buckets := make(map[time.Time][]domain.SensorReading)
	for _, r := range readings {
		key := r.Timestamp.UTC().Truncate(time.Hour)
		buckets[key] = append(buckets[key], r)
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	if len(keys) > maxSeriesPoints {
		keys = keys[:maxSeriesPoints]
	}

	points := make([]Point, 0, len(keys))
	for _, k := range keys {
		var energy, co2, humidity meanAcc
		for _, r := range buckets[k] {
			switch p := ClassifyPayload(r.SensorType, r.Payload).(type) {
			case EnergyPayload:
				if p.Energy != nil {
					energy.add(*p.Energy)
				}
			case AirQualityPayload:
				if p.CO2 != nil {
					co2.add(float64(*p.CO2))
				}
				if p.Humidity != nil {
					humidity.add(float64(*p.Humidity))
				}
			}
		}
		points = append(points, Point{
			BucketStart: k,
			Energy:      energy.mean(),
			CO2:         co2.truncatedMean(),
			Humidity:    humidity.truncatedMean(),
		})
	}

	return points
}
