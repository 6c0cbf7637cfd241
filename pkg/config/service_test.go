package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serverEnv = []string{
	"DATABASE_URL", "LISTEN_ADDRESS", "PORT", "DATA_DIR",
	"LOG_LEVEL", "DB_TIMEOUT_SECONDS", "CORS_ALLOWED_ORIGINS",
}

func clearServerEnv(t *testing.T) {
	t.Helper()
	for _, key := range serverEnv {
		t.Setenv(key, "")
	}
}

func TestLoadServerConfigDefaults(t *testing.T) {
	clearServerEnv(t)

	cfg, err := LoadServerConfig("")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.ListenPort)
	assert.Equal(t, "0.0.0.0:5000", cfg.ListenAddr())
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadServerConfigCreatesDefaultFile(t *testing.T) {
	clearServerEnv(t)
	path := filepath.Join(t.TempDir(), "etc", "spilldata_api.toml")

	_, err := LoadServerConfig(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "listen_port = 5000")

	// The written file loads back to the defaults
	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)
}

func TestLoadServerConfigUnusablePath(t *testing.T) {
	clearServerEnv(t)
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0644))

	_, err := LoadServerConfig(filepath.Join(parent, "spilldata_api.toml"))
	assert.Error(t, err)
}

func TestLoadServerConfigFileAndEnv(t *testing.T) {
	clearServerEnv(t)
	path := filepath.Join(t.TempDir(), "spilldata_api.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_port = 8080
database_url = "sqlite:///tmp/file.db"
data_dir = "/tmp/readings"
log_level = "debug"
`), 0644))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ListenPort)
	assert.Equal(t, "sqlite:///tmp/file.db", cfg.DatabaseURL)
	assert.Equal(t, "/tmp/readings", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Environment wins over the file
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/sensors")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_TIMEOUT_SECONDS", "2")

	cfg, err = LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ListenPort)
	assert.Equal(t, "postgres://u:p@db:5432/sensors", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.DBTimeout())
}

func TestLoadServerConfigInvalid(t *testing.T) {
	tests := map[string][2]string{
		"port not a number": {"PORT", "http"},
		"port out of range": {"PORT", "70000"},
		"bad timeout":       {"DB_TIMEOUT_SECONDS", "0"},
		"bad level":         {"LOG_LEVEL", "chatty"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearServerEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := LoadServerConfig("")
			assert.Error(t, err)
		})
	}
}

func TestLoadServerConfigBrokenFile(t *testing.T) {
	clearServerEnv(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("listen_port = = 1"), 0644))

	_, err := LoadServerConfig(path)
	assert.Error(t, err)
}

func TestLoadSimulatorConfig(t *testing.T) {
	t.Setenv("SPILLDATA_API_URL", "")
	cfg, err := LoadSimulatorConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)

	t.Setenv("SPILLDATA_API_URL", "http://gateway:5000")
	cfg, err = LoadSimulatorConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://gateway:5000", cfg.APIURL)
	assert.Equal(t, "sensor_001", cfg.DeviceID)
}
