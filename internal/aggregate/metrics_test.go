package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmarkhas/sensorgrid/internal/domain"
	"github.com/stretchr/testify/require"
)

func reading(sensorType, name, payload string, ts time.Time) domain.SensorReading {
	return domain.SensorReading{
		SensorType: sensorType,
		SensorName: name,
		Payload:    json.RawMessage(payload),
		Timestamp:  ts,
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	now := time.Now()
	snap := ComputeMetrics(nil, now)
	require.Equal(t, 0, snap.TotalReadings)
	require.Equal(t, 0.0, snap.AverageEnergy)
	require.Equal(t, int64(0), snap.AverageCO2)
	require.Equal(t, int64(0), snap.AverageHumidity)
	require.Equal(t, 0, snap.MotionDetectedCount)
	require.Equal(t, now, snap.LastUpdated)
}

func TestComputeMetricsAverageEnergy(t *testing.T) {
	ts := time.Now()
	snap := ComputeMetrics([]domain.SensorReading{
		reading("energy", "Office", `{"energy": 770.79}`, ts),
		reading("energy", "Office", `{"energy": 170.38}`, ts),
	}, ts)

	require.Equal(t, 2, snap.TotalReadings)
	require.InDelta(t, 470.585, snap.AverageEnergy, 1e-9)
}

func TestComputeMetricsAirQualityIndependentFields(t *testing.T) {
	ts := time.Now()
	snap := ComputeMetrics([]domain.SensorReading{
		reading("air_quality", "Lab", `{"co2": 864, "humidity": 72}`, ts),
		reading("air_quality", "Lab", `{"co2": 512}`, ts),
	}, ts)

	require.Equal(t, 2, snap.TotalReadings)
	require.Equal(t, int64(688), snap.AverageCO2)
	// Only one valid humidity value, not dragged down by the reading missing it.
	require.Equal(t, int64(72), snap.AverageHumidity)
}

func TestComputeMetricsTruncatesIntegerAverages(t *testing.T) {
	ts := time.Now()
	snap := ComputeMetrics([]domain.SensorReading{
		reading("air_quality", "Lab", `{"co2": 3}`, ts),
		reading("air_quality", "Lab", `{"co2": 4}`, ts),
	}, ts)

	// Mean 3.5 truncates to 3, never rounds to 4.
	require.Equal(t, int64(3), snap.AverageCO2)
}

func TestComputeMetricsMotionCount(t *testing.T) {
	ts := time.Now()
	snap := ComputeMetrics([]domain.SensorReading{
		reading("motion", "Hallway", `{"motionDetected": true}`, ts),
		reading("motion", "Hallway", `{"motionDetected": false}`, ts),
		reading("motion", "Hallway", `{"motionDetected": "yes"}`, ts),
	}, ts)

	require.Equal(t, 3, snap.TotalReadings)
	require.Equal(t, 1, snap.MotionDetectedCount)
}

func TestComputeMetricsCorruptReadingDoesNotBlockBatch(t *testing.T) {
	ts := time.Now()
	snap := ComputeMetrics([]domain.SensorReading{
		reading("energy", "Office", `{"energy": 100`, ts), // truncated payload
		reading("energy", "Office", `{"energy": 200}`, ts),
		reading("energy", "Office", `{"energy": 400}`, ts),
	}, ts)

	require.Equal(t, 3, snap.TotalReadings)
	require.Equal(t, 300.0, snap.AverageEnergy)
}

func TestComputeMetricsAllInvalidYieldsZero(t *testing.T) {
	ts := time.Now()
	snap := ComputeMetrics([]domain.SensorReading{
		reading("energy", "Office", `{"energy": "broken"}`, ts),
		reading("air_quality", "Lab", `{"co2": "broken"}`, ts),
	}, ts)

	require.Equal(t, 2, snap.TotalReadings)
	require.Equal(t, 0.0, snap.AverageEnergy)
	require.Equal(t, int64(0), snap.AverageCO2)
	require.Equal(t, int64(0), snap.AverageHumidity)
}

func TestComputeMetricsUnknownCategoryCountsTowardTotal(t *testing.T) {
	ts := time.Now()
	snap := ComputeMetrics([]domain.SensorReading{
		reading("vibration", "Pump", `{"hz": 50}`, ts),
		reading("energy", "Office", `{"energy": 100}`, ts),
	}, ts)

	require.Equal(t, 2, snap.TotalReadings)
	require.Equal(t, 100.0, snap.AverageEnergy)
}

func TestSnapshotJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Snapshot{})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, name := range []string{
		"totalReadings", "averageEnergy", "averageCO2",
		"averageHumidity", "motionDetectedCount", "lastUpdated",
	} {
		require.Contains(t, fields, name)
	}
}
