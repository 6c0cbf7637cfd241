package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReading() types.SensorReading {
	return types.SensorReading{
		DeviceID:    "s1",
		Temperature: types.Float(23.5),
		Humidity:    types.Float(65.2),
		FlowRate:    types.Float(12.8),
		Timestamp:   types.NormalizeTimestamp(time.Now()),
	}
}

func TestSelectFileWithoutDatabaseURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	store, err := Select(context.Background(), Config{DataDir: dir}, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, BackendFile, store.Backend())
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestSelectRelational(t *testing.T) {
	tmp := t.TempDir()
	cfg := Config{
		DatabaseURL: "sqlite://" + filepath.Join(tmp, "readings.db"),
		DataDir:     filepath.Join(tmp, "data"),
	}

	store, err := Select(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, BackendRelational, store.Backend())

	saved, err := store.Save(context.Background(), sampleReading())
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	out, err := store.Latest(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, out.ID)

	// File backend never touched
	_, err = os.Stat(cfg.DataDir)
	assert.True(t, os.IsNotExist(err))
}

func TestSelectFallsBackToFile(t *testing.T) {
	urls := []string{
		"definitely not a url",
		"mysql://localhost/sensors",
		"postgres://nobody@127.0.0.1:1/sensors?connect_timeout=1",
		"sqlite://" + filepath.Join(t.TempDir(), "no", "such", "dir", "x.db") + "?mode=ro",
	}

	for _, url := range urls {
		t.Run(url, func(t *testing.T) {
			cfg := Config{DatabaseURL: url, DataDir: t.TempDir(), DBTimeout: 2 * time.Second}
			store, err := Select(context.Background(), cfg, nil)
			require.NoError(t, err)
			defer store.Close()
			assert.Equal(t, BackendFile, store.Backend())

			_, err = store.Save(context.Background(), sampleReading())
			assert.NoError(t, err)
		})
	}
}

func TestSelectFatalWhenFileBackendFails(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

	for _, url := range []string{"", "mysql://localhost/sensors"} {
		store, err := Select(context.Background(), Config{DatabaseURL: url, DataDir: notADir}, nil)
		assert.Nil(t, store)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNoBackend))
	}
}
