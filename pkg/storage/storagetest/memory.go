// Package storagetest provides an in-memory storage.Store for handler tests.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/storage"
	"github.com/AdilzhanB/Spilldataserver/pkg/types"
)

type MemoryStore struct {
	mu       sync.RWMutex
	readings []types.SensorReading
	nextID   int64

	// Returned by Save / Latest when set.
	SaveErr   error
	LatestErr error
}

var _ storage.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, reading types.SensorReading) (types.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return types.SensorReading{}, s.SaveErr
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}
	reading.Timestamp = types.NormalizeTimestamp(reading.Timestamp)
	s.nextID++
	reading.ID = s.nextID
	s.readings = append(s.readings, reading)
	return reading, nil
}

func (s *MemoryStore) Latest(ctx context.Context, deviceID string) (*types.SensorReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.LatestErr != nil {
		return nil, s.LatestErr
	}
	var latest *types.SensorReading
	for i := range s.readings {
		r := s.readings[i]
		// >= so that later inserts win ties
		if r.DeviceID == deviceID && (latest == nil || !r.Timestamp.Before(latest.Timestamp)) {
			latest = &r
		}
	}
	return latest, nil
}

// Len returns the number of stored readings.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

func (s *MemoryStore) Backend() storage.Backend {
	return "memory"
}

func (s *MemoryStore) Close() error {
	return nil
}
