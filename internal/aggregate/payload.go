// Package aggregate turns stored sensor readings into summary metrics and
// hour-bucketed series. Everything in here is a pure function over its
// inputs: no I/O, no state, safe to call from any number of goroutines.
package aggregate

import (
	"encoding/json"
	"math"

	"github.com/dmarkhas/sensorgrid/internal/domain"
)

// Payload is the classified form of a reading's raw JSON payload. Exactly one
// concrete type matches each known sensor category; everything else, including
// payloads that fail to parse, classifies as UnknownPayload so it is excluded
// from every metric by construction.
type Payload interface {
	isPayload()
}

type EnergyPayload struct {
	Energy *float64
}

type AirQualityPayload struct {
	CO2      *int64
	Humidity *int64
	PM25     *int64
}

type MotionPayload struct {
	Detected *bool
}

type UnknownPayload struct{}

func (EnergyPayload) isPayload()     {}
func (AirQualityPayload) isPayload() {}
func (MotionPayload) isPayload()     {}
func (UnknownPayload) isPayload()    {}

// ClassifyPayload parses and classifies one reading's payload. It never
// fails: a corrupt payload, an unknown category, a missing field, or a value
// of the wrong type all degrade to "no value" for the affected fields. One
// bad reading must never poison the rest of the batch.
func ClassifyPayload(sensorType string, raw json.RawMessage) Payload {
	fields, ok := decodeFields(raw)
	if !ok {
		return UnknownPayload{}
	}

	switch sensorType {
	case domain.TypeEnergy:
		return EnergyPayload{Energy: floatField(fields, "energy")}
	case domain.TypeAirQuality:
		return AirQualityPayload{
			CO2:      intField(fields, "co2"),
			Humidity: intField(fields, "humidity"),
			PM25:     intField(fields, "pm25"),
		}
	case domain.TypeMotion:
		return MotionPayload{Detected: boolField(fields, "motionDetected")}
	default:
		return UnknownPayload{}
	}
}

func decodeFields(raw json.RawMessage) (map[string]interface{}, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func floatField(fields map[string]interface{}, key string) *float64 {
	v, ok := fields[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// intField accepts JSON numbers with an exact integer value. 3.0 coerces to
// 3; 3.5 does not coerce at all.
func intField(fields map[string]interface{}, key string) *int64 {
	v, ok := fields[key].(float64)
	if !ok || math.Trunc(v) != v || math.IsInf(v, 0) {
		return nil
	}
	n := int64(v)
	return &n
}

func boolField(fields map[string]interface{}, key string) *bool {
	v, ok := fields[key].(bool)
	if !ok {
		return nil
	}
	return &v
}
