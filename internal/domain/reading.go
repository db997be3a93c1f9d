package domain

import (
	"encoding/json"
	"time"
)

// Sensor categories with extraction rules. The category set is open:
// anything else still gets stored and counted, it just never matches a rule.
const (
	TypeEnergy     = "energy"
	TypeAirQuality = "air_quality"
	TypeMotion     = "motion"
)

// SensorReading is one stored observation. The payload stays opaque JSON
// until aggregation classifies it; readings are never mutated after insert.
type SensorReading struct {
	ID         string          `json:"id" bson:"reading_id"`
	SensorType string          `json:"sensorCategory" bson:"sensor_type"`
	SensorName string          `json:"sensorName" bson:"sensor_name"`
	Payload    json.RawMessage `json:"payload" bson:"payload"`
	Timestamp  time.Time       `json:"timestamp" bson:"timestamp"`
	CreatedAt  time.Time       `json:"createdAt" bson:"created_at"`
}

// SensorData is the wire shape produced by upstream ingestors. Timestamp is
// optional; readings without one are stamped at ingest time.
type SensorData struct {
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

type BulkSensorData struct {
	Data []SensorData `json:"data"`
}
