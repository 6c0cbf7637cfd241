package pathing

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingFileNameRoundTrip(t *testing.T) {
	ts := time.Date(2026, 10, 14, 9, 5, 7, 42000, time.UTC)
	name := ReadingFileName("s1", ts)
	assert.Equal(t, "s1_2026-10-14T09-05-07.000042Z.json", name)

	parsed, ok := ParseReadingFileName("s1", name)
	require.True(t, ok)
	assert.True(t, ts.Equal(parsed))
}

func TestReadingFileNameEscapesDeviceID(t *testing.T) {
	name := ReadingFileName("../etc/passwd", time.Now())
	assert.NotContains(t, name, "/")

	_, ok := ParseReadingFileName("../etc/passwd", name)
	assert.True(t, ok)
}

func TestParseReadingFileNameRejectsOtherDevices(t *testing.T) {
	ts := time.Now()
	_, ok := ParseReadingFileName("s1", ReadingFileName("s1_x", ts))
	assert.False(t, ok)

	_, ok = ParseReadingFileName("s1", "s1_garbage.json")
	assert.False(t, ok)

	_, ok = ParseReadingFileName("s1", ".tmp-123456")
	assert.False(t, ok)
}

func TestReadingFileNamesSortChronologically(t *testing.T) {
	base := time.Date(2026, 1, 1, 23, 59, 59, 0, time.UTC)
	stamps := []time.Time{
		base.Add(time.Second),
		base,
		base.Add(5 * time.Microsecond),
		base.Add(500 * time.Millisecond),
	}
	var names []string
	for _, ts := range stamps {
		names = append(names, ReadingFileName("dev", ts))
	}
	sort.Strings(names)

	assert.Equal(t, ReadingFileName("dev", base), names[0])
	assert.Equal(t, ReadingFileName("dev", base.Add(time.Second)), names[3])
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	// Existing directory is fine
	require.NoError(t, EnsureDir(dir))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.Error(t, EnsureDir(file))
}
