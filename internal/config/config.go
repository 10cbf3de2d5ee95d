// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
// It accepts string formats like "15s" and "1m30s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all engine configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig holds metrics database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// MonitorConfig holds collection and retention settings.
type MonitorConfig struct {
	// Interval is the gap between the end of one collection cycle and the
	// start of the next.
	Interval Duration `yaml:"interval"`

	// RetentionDays is the default window for prune operations.
	RetentionDays int `yaml:"retention_days"`

	// CollectTimeout bounds a whole collection pass.
	CollectTimeout Duration `yaml:"collect_timeout"`

	// CPUSample is the blocking window used to measure CPU utilization.
	// It must be shorter than CollectTimeout.
	CPUSample Duration `yaml:"cpu_sample"`

	// DiskPath is the mount point whose usage gets recorded.
	DiskPath string `yaml:"disk_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8600",
		},
		Database: DatabaseConfig{
			Path: "statline.db",
		},
		Monitor: MonitorConfig{
			Interval:       Duration{60 * time.Second},
			RetentionDays:  30,
			CollectTimeout: Duration{10 * time.Second},
			CPUSample:      Duration{1 * time.Second},
			DiskPath:       "/",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	// Environment variable overrides (highest precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist: use defaults + env overrides
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	ListenAddr string
	DBPath     string
	LogLevel   string
	LogFile    string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	candidates := configSearchPaths()
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	// Layer 1: embedded config (lowest priority data layer)
	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	// Layer 2: external YAML file
	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0] // caller-supplied (may be "")
	} else {
		filePath = Locate() // auto-discover
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		}
	}

	// Layer 3: environment variables
	applyEnvOverrides(cfg)

	// Layer 4: CLI flags (highest priority)
	if cli.ListenAddr != "" {
		cfg.Server.ListenAddr = cli.ListenAddr
	}
	if cli.DBPath != "" {
		cfg.Database.Path = cli.DBPath
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFile != "" {
		cfg.Logging.File = cli.LogFile
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("STATLINE_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if path := os.Getenv("STATLINE_DB_PATH"); path != "" {
		cfg.Database.Path = path
	}
	if interval := os.Getenv("STATLINE_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Monitor.Interval = Duration{d}
		}
	}
	if days := os.Getenv("STATLINE_RETENTION_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			cfg.Monitor.RetentionDays = n
		}
	}
	if level := os.Getenv("STATLINE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen address is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Monitor.Interval.Duration <= 0 {
		return fmt.Errorf("monitor interval must be positive (got %s)", c.Monitor.Interval.Duration)
	}
	if c.Monitor.RetentionDays <= 0 {
		return fmt.Errorf("retention days must be positive (got %d)", c.Monitor.RetentionDays)
	}
	if c.Monitor.CollectTimeout.Duration <= 0 {
		return fmt.Errorf("collect timeout must be positive (got %s)", c.Monitor.CollectTimeout.Duration)
	}
	if c.Monitor.CPUSample.Duration <= 0 {
		return fmt.Errorf("cpu sample window must be positive (got %s)", c.Monitor.CPUSample.Duration)
	}
	if c.Monitor.CPUSample.Duration >= c.Monitor.CollectTimeout.Duration {
		return fmt.Errorf("cpu sample window %s must be shorter than collect timeout %s",
			c.Monitor.CPUSample.Duration, c.Monitor.CollectTimeout.Duration)
	}
	if c.Monitor.DiskPath == "" {
		return fmt.Errorf("disk path is required")
	}
	return nil
}
