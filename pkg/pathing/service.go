package pathing

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	readingFileExt = ".json"

	// Fixed width and free of ':' so names sort chronologically on every filesystem.
	readingStampLayout = "2006-01-02T15-04-05.000000Z"
)

func GetDefaultDataDir() string {
	return "data"
}

// EnsureDir creates dir (and parents) when it does not exist yet.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ReadingFileName returns the file name for a reading of deviceID taken at ts.
func ReadingFileName(deviceID string, ts time.Time) string {
	return ReadingFilePrefix(deviceID) + ts.UTC().Format(readingStampLayout) + readingFileExt
}

// ReadingFilePrefix is the part of a reading file name that identifies the device.
func ReadingFilePrefix(deviceID string) string {
	return url.PathEscape(deviceID) + "_"
}

// ParseReadingFileName extracts the timestamp from name when it is a reading file
// of deviceID. Files of other devices sharing the prefix (e.g. "s1" and "s1_x") do not match.
func ParseReadingFileName(deviceID, name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, ReadingFilePrefix(deviceID))
	if !ok {
		return time.Time{}, false
	}
	stamp, ok := strings.CutSuffix(rest, readingFileExt)
	if !ok || len(stamp) != len(readingStampLayout) {
		return time.Time{}, false
	}
	ts, err := time.Parse(readingStampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func ReadingFilePath(dir, deviceID string, ts time.Time) string {
	return filepath.Join(dir, ReadingFileName(deviceID, ts))
}
