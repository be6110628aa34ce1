// Package config provides configuration management for timebuddy.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
	// TimebuddyDir is the timebuddy configuration directory.
	TimebuddyDir = ".timebuddy"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind, empty means all interfaces.
	Host string `yaml:"host"`
	// Port for the REST API.
	Port int `yaml:"port"`
	// AllowedOrigin for CORS, "*" by default.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds database settings.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the sqlite database file (sqlite driver only).
	Path string `yaml:"path"`
	// DSN is the connection string (postgres driver only).
	DSN string `yaml:"dsn,omitempty"`
}

// MLConfig holds settings for the external scheduling oracle.
type MLConfig struct {
	// BaseURL of the oracle service.
	BaseURL string `yaml:"base_url"`
	// Timeout for oracle requests.
	Timeout time.Duration `yaml:"timeout"`
	// RetrainTriggerCount is the history-size multiple that triggers
	// a background retrain.
	RetrainTriggerCount int `yaml:"retrain_trigger_count"`
}

// Config represents the timebuddy configuration.
type Config struct {
	// Version is the config file version.
	Version int `yaml:"version"`

	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	ML      MLConfig      `yaml:"ml"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host:          "",
			Port:          3001,
			AllowedOrigin: "*",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   filepath.Join(TimebuddyDir, "timebuddy.db"),
		},
		ML: MLConfig{
			BaseURL:             "http://127.0.0.1:8000",
			Timeout:             30 * time.Second,
			RetrainTriggerCount: 20,
		},
	}
}

// Load reads configuration from path, falling back to defaults for
// anything the file omits, then applies TIMEBUDDY_* environment
// overrides. A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(TimebuddyDir, ConfigFileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, tberrors.ErrConfigInvalid(path, err.Error())
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, tberrors.ErrConfigInvalid(path, err.Error())
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return tberrors.ErrConfigInvalid("server.port", fmt.Sprintf("port %d out of range", c.Server.Port))
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return tberrors.ErrConfigInvalid("storage.path", "sqlite driver requires a database path")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return tberrors.ErrConfigInvalid("storage.dsn", "postgres driver requires a DSN")
		}
	default:
		return tberrors.ErrConfigInvalid("storage.driver", fmt.Sprintf("unknown driver %q", c.Storage.Driver))
	}
	if c.ML.BaseURL == "" {
		return tberrors.ErrConfigInvalid("ml.base_url", "oracle base URL must not be empty")
	}
	if c.ML.RetrainTriggerCount < 1 {
		return tberrors.ErrConfigInvalid("ml.retrain_trigger_count", "must be at least 1")
	}
	return nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnv applies TIMEBUDDY_* environment variable overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TIMEBUDDY_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TIMEBUDDY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TIMEBUDDY_ALLOWED_ORIGIN"); v != "" {
		cfg.Server.AllowedOrigin = v
	}
	if v := os.Getenv("TIMEBUDDY_DB_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("TIMEBUDDY_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("TIMEBUDDY_DB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("TIMEBUDDY_ML_URL"); v != "" {
		cfg.ML.BaseURL = v
	}
	if v := os.Getenv("TIMEBUDDY_ML_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ML.Timeout = d
		}
	}
	if v := os.Getenv("TIMEBUDDY_RETRAIN_TRIGGER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ML.RetrainTriggerCount = n
		}
	}
}
