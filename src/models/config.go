package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Remote     MRemoteConfig     `yaml:"remote"`
	Connection MConnectionConfig `yaml:"connection"`
	Heartbeat  MHeartbeatConfig  `yaml:"heartbeat"`
	Autosave   MAutosaveConfig   `yaml:"autosave"`
	Storage    MStorageConfig    `yaml:"storage"`
	Session    MSessionConfig    `yaml:"session"`
}

type MRemoteConfig struct {
	BaseURL        string           `yaml:"base_url"`
	APIKey         string           `yaml:"api_key"` // Optional
	RequestTimeout int              `yaml:"timeout"`
	MaxRetries     int              `yaml:"retries"`
	Channels       []MChannelConfig `yaml:"channels"`
}

type MChannelConfig struct {
	Name         string `yaml:"name"`
	Path         string `yaml:"path"`          // websocket path, e.g. /positions/ws
	Kind         string `yaml:"kind"`          // payload kind: orders, positions, features, posterior, dashboard
	SnapshotPath string `yaml:"snapshot_path"` // Optional REST seed, e.g. /positions
}

type MConnectionConfig struct {
	BaseDelayMs             int `yaml:"base_delay_ms"`
	MaxAttempts             int `yaml:"max_attempts"`
	HandshakeTimeoutSeconds int `yaml:"handshake_timeout_seconds"`
}

type MHeartbeatConfig struct {
	IntervalSeconds  int `yaml:"interval_seconds"`
	ThresholdSeconds int `yaml:"threshold_seconds"`
}

type MAutosaveConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MSessionConfig struct {
	Enabled bool     `yaml:"enabled"`
	Symbols []string `yaml:"symbols"`
}
