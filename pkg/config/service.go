package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/logging"
	"github.com/AdilzhanB/Spilldataserver/pkg/pathing"
	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddress:    "0.0.0.0",
		ListenPort:       5000,
		DataDir:          pathing.GetDefaultDataDir(),
		LogLevel:         "info",
		DBTimeoutSeconds: 5,
		AllowedOrigins:   []string{"*"},
	}
}

func DefaultSimulatorConfig() *SimulatorConfig {
	return &SimulatorConfig{
		APIURL:          "http://localhost:5000",
		DeviceID:        "sensor_001",
		Count:           10,
		IntervalSeconds: 1,
	}
}

// LoadServerConfig layers defaults, the TOML file at path (written with defaults
// when missing, skipped when path is empty), a .env file and the environment.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()
	if err := loadOrCreate(path, cfg); err != nil {
		return nil, err
	}
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := applyServerEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadSimulatorConfig(path string) (*SimulatorConfig, error) {
	cfg := DefaultSimulatorConfig()
	if err := loadOrCreate(path, cfg); err != nil {
		return nil, err
	}
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if v := os.Getenv("SPILLDATA_API_URL"); v != "" {
		cfg.APIURL = v
	}
	return cfg, nil
}

func (c *ServerConfig) Validate() error {
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port %d out of range", c.ListenPort)
	}
	if c.DBTimeoutSeconds <= 0 {
		return fmt.Errorf("db_timeout_seconds must be positive, got %d", c.DBTimeoutSeconds)
	}
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddress, c.ListenPort)
}

func (c *ServerConfig) DBTimeout() time.Duration {
	return time.Duration(c.DBTimeoutSeconds) * time.Second
}

func loadOrCreate(path string, cfg any) error {
	if path == "" {
		return nil
	}

	// Create default if not exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		cfgFile, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := toml.NewEncoder(cfgFile).Encode(cfg); err != nil {
			cfgFile.Close()
			return fmt.Errorf("write default %s: %w", path, err)
		}
		if err := cfgFile.Close(); err != nil {
			return fmt.Errorf("write default %s: %w", path, err)
		}
		return nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Values from .env never override variables already set in the environment.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func applyServerEnv(cfg *ServerConfig) error {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LISTEN_ADDRESS"); v != "" {
		cfg.ListenAddress = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.ListenPort = port
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DB_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.DBTimeoutSeconds = secs
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
	return nil
}
