package types

import (
	"encoding/json"
	"time"
)

// Readings are stamped with microsecond precision so every backend
// (file names, SQLite integers, PostgreSQL TIMESTAMPTZ) round-trips them exactly.
const TimestampPrecision = time.Microsecond

type SensorReading struct {
	// Relational backend only
	ID int64 `json:"id,omitempty"`

	DeviceID string `json:"device_id"`

	// Core measurements
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	FlowRate    *float64 `json:"flow_rate"`

	// Optional
	FlowDirection *string  `json:"flow_direction"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`

	Timestamp time.Time `json:"timestamp"`
}

// ToJsonBytes returns the JSON document of r, or nil if it cannot be encoded.
func (r SensorReading) ToJsonBytes() []byte {
	b, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return b
}

func SensorReadingFromJsonBytes(data []byte) (*SensorReading, error) {
	var reading SensorReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, err
	}
	return &reading, nil
}

// NormalizeTimestamp returns t in UTC truncated to TimestampPrecision.
func NormalizeTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(TimestampPrecision)
}

func Float(v float64) *float64 {
	return &v
}

func String(v string) *string {
	return &v
}
