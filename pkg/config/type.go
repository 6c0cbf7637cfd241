package config

type ServerConfig struct {
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
	// Empty means readings go to files under DataDir.
	// postgres://..., sqlite://<path> or file:<dsn>
	DatabaseURL      string   `toml:"database_url"`
	DataDir          string   `toml:"data_dir"`
	LogLevel         string   `toml:"log_level"`
	DBTimeoutSeconds int      `toml:"db_timeout_seconds"`
	AllowedOrigins   []string `toml:"allowed_origins"`
}

type SimulatorConfig struct {
	APIURL          string `toml:"api_url"`
	DeviceID        string `toml:"device_id"`
	Count           int    `toml:"count"`
	IntervalSeconds int    `toml:"interval_seconds"`
}
