package config

import (
	"fmt"
	"os"
	"strings"

	"dashboard-sync/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Defaults applied when the YAML omits a value
// -----------------------------------------------------------------------------

const (
	DefaultBaseDelayMs      = 1000
	DefaultMaxAttempts      = 5
	DefaultHandshakeSeconds = 10
	DefaultHeartbeatSeconds = 3
	DefaultThresholdSeconds = 10
	DefaultDebounceMs       = 500
	DefaultRequestTimeout   = 10
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Connection.BaseDelayMs <= 0 {
		c.Connection.BaseDelayMs = DefaultBaseDelayMs
	}
	if c.Connection.MaxAttempts <= 0 {
		c.Connection.MaxAttempts = DefaultMaxAttempts
	}
	if c.Connection.HandshakeTimeoutSeconds <= 0 {
		c.Connection.HandshakeTimeoutSeconds = DefaultHandshakeSeconds
	}
	if c.Heartbeat.IntervalSeconds <= 0 {
		c.Heartbeat.IntervalSeconds = DefaultHeartbeatSeconds
	}
	if c.Heartbeat.ThresholdSeconds <= 0 {
		c.Heartbeat.ThresholdSeconds = DefaultThresholdSeconds
	}
	if c.Autosave.DebounceMs <= 0 {
		c.Autosave.DebounceMs = DefaultDebounceMs
	}
	if c.Remote.RequestTimeout <= 0 {
		c.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Remote configuration
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote base_url cannot be empty")
	}
	if !strings.HasPrefix(c.Remote.BaseURL, "http://") && !strings.HasPrefix(c.Remote.BaseURL, "https://") {
		return fmt.Errorf("remote base_url must start with http:// or https://")
	}
	if len(c.Remote.Channels) == 0 {
		return fmt.Errorf("at least one channel must be configured")
	}
	seen := make(map[string]bool)
	for i, ch := range c.Remote.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel %d must have a name", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("duplicate channel name '%s'", ch.Name)
		}
		seen[ch.Name] = true
		if !strings.HasPrefix(ch.Path, "/") {
			return fmt.Errorf("channel '%s': path must start with /", ch.Name)
		}
		if ch.Kind == "" {
			return fmt.Errorf("channel '%s': kind cannot be empty", ch.Name)
		}
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type '%s'", c.Storage.DBType)
	}

	// Validate Session configuration
	if c.Session.Enabled && len(c.Session.Symbols) == 0 {
		return fmt.Errorf("session gating enabled but no symbols configured")
	}

	return nil
}

// -----------------------------------------------------------------------------

// GetChannelByName returns a single channel config by name
func (c *Config) GetChannelByName(name string) *models.MChannelConfig {
	for i := range c.Remote.Channels {
		if c.Remote.Channels[i].Name == name {
			return &c.Remote.Channels[i]
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
