// Package readingfile stores every reading as its own JSON document on local disk.
// It needs no external services and is meant for development and low volume use.
package readingfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/pathing"
	"github.com/AdilzhanB/Spilldataserver/pkg/types"
	"go.uber.org/zap"
)

// Attempts at finding a free file name before giving up on a write.
const maxNameAttempts = 1000

type Store struct {
	dir string
	log *zap.Logger

	// Last timestamp handed out, keeps stamps strictly increasing within the process.
	clockMu   sync.Mutex
	lastStamp time.Time
}

// Open prepares dir for use, creating it when absent.
func Open(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := pathing.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("%w: prepare data dir %s: %v", types.ErrBackendUnavailable, dir, err)
	}
	log.Info("file storage ready", zap.String("dir", dir))
	return &Store{dir: dir, log: log}, nil
}

// Dir is the directory readings are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes reading to a new file. The file only becomes visible under its final
// name once fully written, and an existing file is never replaced.
func (s *Store) Save(ctx context.Context, reading types.SensorReading) (types.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return types.SensorReading{}, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}
	reading.ID = 0
	reading.Timestamp = s.nextStamp(types.NormalizeTimestamp(reading.Timestamp))

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return types.SensorReading{}, fmt.Errorf("%w: create temp file: %v", types.ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	for attempt := 0; ; attempt++ {
		if attempt >= maxNameAttempts {
			tmp.Close()
			return types.SensorReading{}, fmt.Errorf("%w: no free file name for %s", types.ErrStorage, reading.DeviceID)
		}

		if err := writeDocument(tmp, &reading); err != nil {
			tmp.Close()
			return types.SensorReading{}, fmt.Errorf("%w: write %s: %v", types.ErrStorage, tmpName, err)
		}

		final := pathing.ReadingFilePath(s.dir, reading.DeviceID, reading.Timestamp)
		err := os.Link(tmpName, final)
		if err == nil {
			if err := tmp.Close(); err != nil {
				return types.SensorReading{}, fmt.Errorf("%w: close %s: %v", types.ErrStorage, tmpName, err)
			}
			s.log.Debug("reading stored",
				zap.String("device_id", reading.DeviceID),
				zap.String("file", filepath.Base(final)))
			return reading, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			tmp.Close()
			return types.SensorReading{}, fmt.Errorf("%w: publish %s: %v", types.ErrStorage, final, err)
		}

		// Another process took this name; move one tick forward and rewrite the document.
		reading.Timestamp = s.nextStamp(reading.Timestamp.Add(types.TimestampPrecision))
	}
}

// Latest returns the newest reading of deviceID, or nil when it has none.
func (s *Store) Latest(ctx context.Context, deviceID string) (*types.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", types.ErrStorage, s.dir, err)
	}

	// ReadDir sorts by name and names sort chronologically, so the last match wins.
	latest := ""
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if _, ok := pathing.ParseReadingFileName(deviceID, entry.Name()); ok {
			latest = entry.Name()
		}
	}
	if latest == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, latest))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", types.ErrStorage, latest, err)
	}
	reading, err := types.SensorReadingFromJsonBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt reading file %s: %v", types.ErrStorage, latest, err)
	}
	return reading, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) nextStamp(ts time.Time) time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	if !ts.After(s.lastStamp) {
		ts = s.lastStamp.Add(types.TimestampPrecision)
	}
	s.lastStamp = ts
	return ts
}

func writeDocument(f *os.File, reading *types.SensorReading) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	doc := reading.ToJsonBytes()
	if doc == nil {
		return errors.New("reading cannot be encoded as JSON")
	}
	if _, err := f.Write(doc); err != nil {
		return err
	}
	return f.Sync()
}
