package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	DefaultVersion = 1

	// EnvConfig overrides the config file location.
	EnvConfig = "CALC_CONFIG"

	// FileName is the config file name inside the user config directory.
	FileName = "calc.json"

	// Default values for server configuration.
	DefaultServerAddr      = "127.0.0.1:7420"
	DefaultServerReadLimit = 4096

	// Default values for script configuration.
	DefaultScriptTimeout = 5 * time.Second

	DefaultLogLevel = "info"
)

// Config defines calc configuration stored in calc.json.
type Config struct {
	Version int           `json:"version"`
	Server  *ServerConfig `json:"server,omitempty"`
	Script  *ScriptConfig `json:"script,omitempty"`
	Log     *LogConfig    `json:"log,omitempty"`
}

// ServerConfig holds websocket call endpoint settings.
type ServerConfig struct {
	// Addr is the listen address (default "127.0.0.1:7420").
	Addr *string `json:"addr,omitempty"`

	// ReadLimit caps the size of one inbound message in bytes (default 4096).
	ReadLimit *int64 `json:"read_limit,omitempty"`
}

// GetAddr returns the listen address.
func (c *ServerConfig) GetAddr() string {
	if c == nil || c.Addr == nil || *c.Addr == "" {
		return DefaultServerAddr
	}
	return *c.Addr
}

// GetReadLimit returns the inbound message limit.
func (c *ServerConfig) GetReadLimit() int64 {
	if c == nil || c.ReadLimit == nil {
		return DefaultServerReadLimit
	}
	return *c.ReadLimit
}

// Validate checks that server config values are within sensible ranges.
func (c *ServerConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.ReadLimit != nil {
		if *c.ReadLimit < 64 {
			return fmt.Errorf("read_limit must be at least 64, got %d", *c.ReadLimit)
		}
		if *c.ReadLimit > 1<<20 {
			return fmt.Errorf("read_limit must be at most %d, got %d", 1<<20, *c.ReadLimit)
		}
	}
	return nil
}

// ScriptConfig holds script host settings.
type ScriptConfig struct {
	// Timeout is the max duration of one script run as a string (default "5s").
	Timeout *string `json:"timeout,omitempty"`
}

// GetTimeout returns the script timeout (default 5s).
func (c *ScriptConfig) GetTimeout() time.Duration {
	if c == nil || c.Timeout == nil {
		return DefaultScriptTimeout
	}
	d, err := time.ParseDuration(*c.Timeout)
	if err != nil {
		return DefaultScriptTimeout
	}
	return d
}

// Validate checks that script config values are within sensible ranges.
func (c *ScriptConfig) Validate() error {
	if c == nil || c.Timeout == nil {
		return nil
	}
	d, err := time.ParseDuration(*c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d < 100*time.Millisecond {
		return fmt.Errorf("timeout must be at least 100ms, got %v", d)
	}
	if d > time.Minute {
		return fmt.Errorf("timeout must be at most 1m, got %v", d)
	}
	return nil
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default "info").
	Level *string `json:"level,omitempty"`
}

// GetLevel returns the configured log level (default info).
func (c *LogConfig) GetLevel() zapcore.Level {
	if c == nil || c.Level == nil {
		return zapcore.InfoLevel
	}
	lvl, err := zapcore.ParseLevel(*c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Validate checks the log level name.
func (c *LogConfig) Validate() error {
	if c == nil || c.Level == nil {
		return nil
	}
	switch *c.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("level must be debug, info, warn or error, got %q", *c.Level)
}

// Default returns the default config.
func Default() Config {
	return Config{Version: DefaultVersion}
}

// DefaultPath returns the config location: $CALC_CONFIG, else calc/calc.json
// under the user config directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "calc", FileName), nil
}

// Load reads config from disk and applies defaults for zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config not found: %w", err)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

// LoadOrDefault reads config from disk, returning defaults if file doesn't exist.
func LoadOrDefault(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes a config to disk, creating the parent directory.
func Save(path string, cfg Config) error {
	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate ensures config values are within supported ranges.
func (c Config) Validate() error {
	if c.Version != DefaultVersion {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := c.Script.Validate(); err != nil {
		return fmt.Errorf("invalid script config: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}
	return nil
}
