// Package config handles configuration loading and validation for
// taskdoc-mcp.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	taskdoc "github.com/roasbeef/taskdoc-mcp"
)

// Config holds the application configuration.
type Config struct {
	StoragePath string          `yaml:"storage_path"` // task document location
	LogLevel    string          `yaml:"log_level"`    // zerolog level name
	LogFile     string          `yaml:"log_file"`     // empty logs to stderr
	ServerName  string          `yaml:"server_name"`  // reported to MCP clients
	LockTimeout time.Duration   `yaml:"lock_timeout"` // wait for the write lock
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
	Stdout  bool `yaml:"stdout"` // pretty-print spans and metrics to stderr
}

// DefaultConfig returns a Config with sensible defaults. The storage path
// is left empty when the home directory cannot be determined.
func DefaultConfig() Config {
	storagePath, _ := taskdoc.DefaultStoragePath()
	return Config{
		StoragePath: storagePath,
		LogLevel:    "info",
		ServerName:  "taskdoc",
		LockTimeout: taskdoc.DefaultLockTimeout,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/taskdoc/config.yaml, falling back to
// ~/.config/taskdoc/config.yaml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "taskdoc", "config.yaml")
}

// Load reads configuration from configPath. If configPath is empty or the
// file doesn't exist, defaults are returned.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// not found is fine, using defaults

		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)

		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.StoragePath == "" {
		c.StoragePath = defaults.StoragePath
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.ServerName == "" {
		c.ServerName = defaults.ServerName
	}
	if c.LockTimeout == 0 {
		c.LockTimeout = defaults.LockTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if c.LockTimeout <= 0 {
		errs = errs.Append("lock_timeout", fmt.Errorf("must be positive (got %s)", c.LockTimeout))
	}

	return criterio.ValidateStruct(
		criterio.Run("storage_path", c.StoragePath, isFileOrNotExist),
		criterio.Run("log_level", c.LogLevel, validLogLevel),
		criterio.Run("server_name", c.ServerName, notEmpty),
		errs.ToError(),
	)
}

func notEmpty(s string) error {
	if s == "" {
		return errors.New("is required")
	}
	return nil
}

func isFileOrNotExist(path string) error {
	if path == "" {
		return errors.New("is required")
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func validLogLevel(level string) error {
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("unknown level %q", level)
	}
	return nil
}
