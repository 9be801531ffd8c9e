// Package config loads the worrybox settings from ~/.worrybox/config.json,
// an optional .env file and WORRYBOX_* environment variables, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverFS       = "fs"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// DirName is the settings directory created under the user's home.
const DirName = ".worrybox"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WORRYBOX_"

// Config represents the worrybox configuration.
type Config struct {
	Version string `json:"version"`

	// DataDir holds the sqlite database, fs documents and .env. Defaults to ~/.worrybox.
	DataDir string `json:"data_dir,omitempty"`

	Store StoreConfig `json:"store"`

	LogLevel  string `json:"log_level,omitempty"`
	LogPretty bool   `json:"log_pretty,omitempty"`

	HTTPAddr         string  `json:"http_addr,omitempty"`
	RateLimit        float64 `json:"rate_limit,omitempty"` // requests per second, 0 disables
	RateBurst        int     `json:"rate_burst,omitempty"`
	DispatchInterval string  `json:"dispatch_interval,omitempty"`
	DispatchBatch    int     `json:"dispatch_batch,omitempty"`
	DispatchRate     float64 `json:"dispatch_rate,omitempty"` // alerts per second
	DispatchBurst    int     `json:"dispatch_burst,omitempty"`

	// TmuxAlerts also shows due notifications in tmux. TmuxSession limits
	// them to one session.
	TmuxAlerts  bool   `json:"tmux_alerts,omitempty"`
	TmuxSession string `json:"tmux_session,omitempty"`
}

// StoreConfig selects and configures the Persistence Port backend.
type StoreConfig struct {
	Driver string `json:"driver"`

	// postgres
	DSN string `json:"dsn,omitempty"`

	// s3
	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"path_style,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Version:          "1",
		Store:            StoreConfig{Driver: DriverSQLite, Region: "us-east-1"},
		LogLevel:         "info",
		HTTPAddr:         "127.0.0.1:7317",
		RateLimit:        10,
		RateBurst:        20,
		DispatchInterval: "30s",
		DispatchBatch:    50,
		DispatchRate:     1,
		DispatchBurst:    3,
	}
}

// DefaultDir returns ~/.worrybox.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// LoadConfig reads <dir>/config.json over the defaults. A missing file is not an error.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes config.json to dir.
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Load resolves the full configuration for dir: config.json, then .env files
// (dir first, then the working directory; existing variables win), then the
// environment. The result is validated.
func Load(dir string) (*Config, error) {
	cfg, err := LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	if err := loadDotEnv(filepath.Join(dir, ".env"), ".env"); err != nil {
		return nil, err
	}
	applyEnv(cfg, os.Getenv)
	if cfg.DataDir == "" {
		cfg.DataDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		// godotenv.Load never overrides variables that are already set.
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// applyEnv overlays WORRYBOX_* variables read through getenv.
func applyEnv(cfg *Config, getenv func(string) string) {
	get := func(key string) string { return strings.TrimSpace(getenv(EnvPrefix + key)) }

	setString := func(dst *string, key string) {
		if v := get(key); v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, key string) {
		if v := get(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.Store.Driver, "STORE_DRIVER")
	setString(&cfg.Store.DSN, "DSN")
	setString(&cfg.Store.Bucket, "S3_BUCKET")
	setString(&cfg.Store.Prefix, "S3_PREFIX")
	setString(&cfg.Store.Region, "S3_REGION")
	setString(&cfg.Store.Endpoint, "S3_ENDPOINT")
	setBool(&cfg.Store.PathStyle, "S3_PATH_STYLE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setBool(&cfg.LogPretty, "LOG_PRETTY")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.DispatchInterval, "DISPATCH_INTERVAL")
	setBool(&cfg.TmuxAlerts, "TMUX_ALERTS")
	setString(&cfg.TmuxSession, "TMUX_SESSION")

	if v := get("RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit = f
		}
	}
	if v := get("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateBurst = n
		}
	}
	if v := get("DISPATCH_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DispatchBatch = n
		}
	}
	if v := get("DISPATCH_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DispatchRate = f
		}
	}
	if v := get("DISPATCH_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DispatchBurst = n
		}
	}
}

// Interval returns the parsed dispatch interval.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.DispatchInterval)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate checks the configuration.
// Rules:
// - Store driver must be one of sqlite, fs, memory, postgres or s3
// - postgres needs a DSN and s3 needs a bucket
// - The dispatch interval must parse and be at least one second
// - Rate limits and bursts must not be negative
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverFS, DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store driver %q requires %sDSN", c.Store.Driver, EnvPrefix)
		}
	case DriverS3:
		if c.Store.Bucket == "" {
			return fmt.Errorf("store driver %q requires %sS3_BUCKET", c.Store.Driver, EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite, fs, memory, postgres or s3)", c.Store.Driver)
	}

	d, err := time.ParseDuration(c.DispatchInterval)
	if err != nil {
		return fmt.Errorf("invalid dispatch interval %q: %w", c.DispatchInterval, err)
	}
	if d < time.Second {
		return fmt.Errorf("dispatch interval must be at least 1s (got %s)", d)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate limit and burst must not be negative")
	}
	if c.DispatchRate < 0 || c.DispatchBurst < 0 {
		return fmt.Errorf("dispatch rate and burst must not be negative")
	}
	return nil
}
