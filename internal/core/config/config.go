// Package config handles configuration loading and validation for taskdesk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskdesk/internal/core/activity"
)

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Client   ClientConfig   `yaml:"client"`
	Activity ActivityConfig `yaml:"activity"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	TokenSecret  string        `yaml:"token_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ClientConfig configures remote mode. An empty BaseURL means the CLI
// works directly against the local database.
type ClientConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Remote reports whether the CLI should talk to an API server.
func (c ClientConfig) Remote() bool {
	return c.BaseURL != ""
}

// ActivityConfig overrides the activity feed heuristics.
type ActivityConfig struct {
	DedupWindow   time.Duration `yaml:"dedup_window"`
	EditThreshold time.Duration `yaml:"edit_threshold"`
}

// Options converts the config section to reconstruction options.
func (a ActivityConfig) Options() activity.Options {
	return activity.Options{
		DedupWindow:   a.DedupWindow,
		EditThreshold: a.EditThreshold,
	}
}

// MinTokenSecretLength is the shortest signing secret `serve` accepts.
const MinTokenSecretLength = 16

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8420",
			TokenTTL:     24 * time.Hour,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Client: ClientConfig{
			Timeout: 10 * time.Second,
		},
		Activity: ActivityConfig{
			DedupWindow:   activity.DefaultDedupWindow,
			EditThreshold: activity.DefaultEditThreshold,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.TokenTTL == 0 {
		c.Server.TokenTTL = defaults.Server.TokenTTL
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = defaults.Client.Timeout
	}
	if c.Activity.DedupWindow == 0 {
		c.Activity.DedupWindow = defaults.Activity.DedupWindow
	}
	if c.Activity.EditThreshold == 0 {
		c.Activity.EditThreshold = defaults.Activity.EditThreshold
	}
}

// DatabaseFile returns the path to the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "taskdesk.db")
}
