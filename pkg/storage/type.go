package storage

import (
	"context"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/types"
)

type Backend string

const (
	BackendRelational Backend = "relational"
	BackendFile       Backend = "file"
)

// Store is the persistence contract shared by every backend.
// Implementations are safe for concurrent use.
type Store interface {
	// Save persists one reading and returns it as stored, including any
	// backend assigned id and the final timestamp. Failures wrap types.ErrStorage.
	Save(ctx context.Context, reading types.SensorReading) (types.SensorReading, error)

	// Latest returns the reading with the greatest timestamp for deviceID,
	// the most recently written one on ties. Nil without error when the device has no readings.
	Latest(ctx context.Context, deviceID string) (*types.SensorReading, error)

	Backend() Backend

	Close() error
}

type Config struct {
	// Empty selects the file backend directly.
	DatabaseURL string
	DataDir     string
	DBTimeout   time.Duration
}
