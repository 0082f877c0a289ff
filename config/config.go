// Package config provides CLI configuration management for the nojoin
// command-line tool. It supports loading configuration from YAML
// files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Valtora/nojoin/pkg/db"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
)

// Default configuration values.
const (
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".nojoin"
	DefaultConfigFile   = "config.yaml"
	DefaultRedisAddr    = "localhost:6379"
	DefaultLockTTL      = 10 * time.Minute
)

// RedisConfig holds the connection settings for the pipeline lock.
// Redis is optional; without it the lock degrades to a no-op, which is
// fine for single-process installations.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr,omitempty"`

	// Password authenticates against a protected server.
	Password string `yaml:"password,omitempty"`

	// DB selects the Redis logical database.
	DB int `yaml:"db,omitempty"`
}

// Enabled reports whether a Redis server is configured.
func (r *RedisConfig) Enabled() bool {
	return r != nil && r.Addr != ""
}

// PipelineConfig tunes the processing pipeline.
type PipelineConfig struct {
	// LockTTL bounds how long a crashed run can hold the global lock.
	LockTTL time.Duration `yaml:"-"`

	// MinSnippetSeconds is the duration floor for snippet selection.
	MinSnippetSeconds float64 `yaml:"min_snippet_seconds,omitempty"`

	// Charset is the expected encoding of engine output files when it
	// is not UTF-8 (e.g. "windows-1252").
	Charset string `yaml:"charset,omitempty"`
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// Database holds the PostgreSQL connection settings.
	Database *db.Config `yaml:"database,omitempty"`

	// Redis holds the pipeline lock settings.
	Redis *RedisConfig `yaml:"redis,omitempty"`

	// Pipeline tunes the processing pipeline.
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		OutputFormat: DefaultOutputFormat,
		Pipeline: PipelineConfig{
			LockTTL: DefaultLockTTL,
		},
	}
}

// ConfigDir returns the configuration directory path.
// Uses $NOJOIN_CONFIG_DIR if set, otherwise ~/.nojoin
func ConfigDir() (string, error) {
	if dir := os.Getenv("NOJOIN_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.nojoin/config.yaml or $NOJOIN_CONFIG_DIR/config.yaml)
// 3. Environment variables (NOJOIN_OUTPUT_FORMAT, NOJOIN_DEBUG, DB_*, REDIS_*)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// A temp struct so the lock TTL can be written as a duration string.
	type configFile struct {
		OutputFormat OutputFormat   `yaml:"output_format"`
		Debug        bool           `yaml:"debug"`
		Database     *db.Config     `yaml:"database"`
		Redis        *RedisConfig   `yaml:"redis"`
		Pipeline     PipelineConfig `yaml:"pipeline"`
		LockTTL      string         `yaml:"lock_ttl"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	cfg.Debug = fileCfg.Debug
	if fileCfg.Database != nil {
		cfg.Database = fileCfg.Database
	}
	if fileCfg.Redis != nil {
		cfg.Redis = fileCfg.Redis
	}
	if fileCfg.Pipeline.MinSnippetSeconds > 0 {
		cfg.Pipeline.MinSnippetSeconds = fileCfg.Pipeline.MinSnippetSeconds
	}
	if fileCfg.Pipeline.Charset != "" {
		cfg.Pipeline.Charset = fileCfg.Pipeline.Charset
	}
	if fileCfg.LockTTL != "" {
		ttl, err := time.ParseDuration(fileCfg.LockTTL)
		if err != nil {
			return fmt.Errorf("parsing lock_ttl: %w", err)
		}
		cfg.Pipeline.LockTTL = ttl
	}

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("NOJOIN_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("NOJOIN_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv("NOJOIN_CHARSET"); v != "" {
		cfg.Pipeline.Charset = v
	}

	if v := os.Getenv("NOJOIN_LOCK_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.LockTTL = ttl
		}
	}

	// Database settings follow the DB_* convention. Env wins over the
	// file when DB_HOST is set.
	if cfg.Database == nil || os.Getenv("DB_HOST") != "" {
		cfg.Database = db.ConfigFromEnv()
	}

	// Redis settings.
	if v := os.Getenv("REDIS_HOST"); v != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		if cfg.Redis == nil {
			cfg.Redis = &RedisConfig{}
		}
		cfg.Redis.Addr = fmt.Sprintf("%s:%s", v, port)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		if cfg.Redis == nil {
			cfg.Redis = &RedisConfig{Addr: DefaultRedisAddr}
		}
		cfg.Redis.Password = v
	}
}

// Validate checks the configuration for invalid values.
func (c *CLIConfig) Validate() error {
	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output format: %s (must be text or json)", c.OutputFormat)
	}
	if c.Pipeline.MinSnippetSeconds < 0 {
		return fmt.Errorf("min_snippet_seconds must not be negative")
	}
	if c.Pipeline.LockTTL < 0 {
		return fmt.Errorf("lock_ttl must not be negative")
	}
	return nil
}

// IsValid reports whether the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON:
		return true
	}
	return false
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig writes the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
