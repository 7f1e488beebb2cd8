package httpmux

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds transport settings loadable from a YAML file.
type Config struct {
	IdleTimeoutSeconds int           `yaml:"idle_timeout_seconds"`
	DialTimeoutSeconds int           `yaml:"dial_timeout_seconds"`
	MaxBufferBytes     int           `yaml:"max_buffer_bytes"`
	Logging            LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects log verbosity for the transport.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		IdleTimeoutSeconds: int(DefaultIdleTimeout / time.Second),
		DialTimeoutSeconds: 10,
		MaxBufferBytes:     0, // unbounded, matching historical behavior
		Logging:            LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("httpmux: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("httpmux: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the transport cannot run with.
func (c *Config) Validate() error {
	if c.IdleTimeoutSeconds <= 0 {
		return fmt.Errorf("httpmux: idle_timeout_seconds must be positive, got %d", c.IdleTimeoutSeconds)
	}
	if c.DialTimeoutSeconds < 0 {
		return fmt.Errorf("httpmux: dial_timeout_seconds must not be negative, got %d", c.DialTimeoutSeconds)
	}
	if c.MaxBufferBytes < 0 {
		return fmt.Errorf("httpmux: max_buffer_bytes must not be negative, got %d", c.MaxBufferBytes)
	}
	return nil
}

// IdleTimeout returns the configured idle timeout as a Duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// DialTimeout returns the configured dial timeout as a Duration.
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}
