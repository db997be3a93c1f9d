package aggregate

import (
	"time"

	"github.com/dmarkhas/sensorgrid/internal/domain"
)

// Snapshot is the rolling summary over a set of readings. Field names are a
// wire contract with downstream dashboards and must not change. CO2 and
// humidity averages are truncated toward zero, not rounded; existing
// consumers depend on that exact behavior.
type Snapshot struct {
	TotalReadings       int       `json:"totalReadings"`
	AverageEnergy       float64   `json:"averageEnergy"`
	AverageCO2          int64     `json:"averageCO2"`
	AverageHumidity     int64     `json:"averageHumidity"`
	MotionDetectedCount int       `json:"motionDetectedCount"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// meanAcc accumulates valid extractions for one metric. Mean() guards the
// empty case so an all-invalid category yields 0, never NaN.
type meanAcc struct {
	sum   float64
	count int
}

func (a *meanAcc) add(v float64) {
	a.sum += v
	a.count++
}

func (a *meanAcc) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// truncatedMean coerces the float mean to an integer by truncation. int64
// conversion truncates toward zero, which is the behavior callers reproduce.
func (a *meanAcc) truncatedMean() int64 {
	return int64(a.mean())
}

// ComputeMetrics produces a summary snapshot over the full input. Every
// reading counts toward TotalReadings; only readings whose payload classifies
// with a valid field contribute to the per-category averages. CO2 and
// humidity are independent: a reading missing one can still feed the other.
func ComputeMetrics(readings []domain.SensorReading, now time.Time) Snapshot {
	var energy, co2, humidity meanAcc
	motionDetected := 0

	for _, r := range readings {
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
		case MotionPayload:
			if p.Detected != nil && *p.Detected {
				motionDetected++
			}
		}
	}

	return Snapshot{
		TotalReadings:       len(readings),
		AverageEnergy:       energy.mean(),
		AverageCO2:          co2.truncatedMean(),
		AverageHumidity:     humidity.truncatedMean(),
		MotionDetectedCount: motionDetected,
		LastUpdated:         now,
	}
}
