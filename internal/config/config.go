// Package config loads progcdc configuration.
//
// Settings come from three layers, later layers winning:
//  1. defaults declared in the embedded CUE schema
//  2. an optional CUE (or JSON) file validated against #Config
//  3. PROGCDC_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/progcdc/internal/source"
)

//go:embed schema.cue
var schemaCUE string

// Environment variables read by Load.
const (
	EnvSourceDSN    = "PROGCDC_SOURCE_DSN"
	EnvSourceDriver = "PROGCDC_SOURCE_DRIVER"
	EnvPoolSize     = "PROGCDC_POOL_SIZE"
	EnvTrackingPath = "PROGCDC_TRACKING_PATH"
	EnvLogLevel     = "PROGCDC_LOG_LEVEL"
)

// Config holds all progcdc configuration.
type Config struct {
	Source          SourceConfig   `json:"source"`
	Tracking        TrackingConfig `json:"tracking"`
	RepostThreshold string         `json:"repost_threshold"`
	LogLevel        string         `json:"log_level"`
}

// SourceConfig describes the nesting system database.
type SourceConfig struct {
	Driver       string              `json:"driver"`
	DSN          string              `json:"dsn"`
	PoolSize     int                 `json:"pool_size"`
	ArchiveCodes source.ArchiveCodes `json:"archive_codes"`
}

// TrackingConfig describes the local tracking store.
type TrackingConfig struct {
	Path       string `json:"path"`
	Collection string `json:"collection"`
}

// Load reads configuration from path (empty for defaults only), then applies
// environment overrides.
func Load(path string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		file := ctx.CompileBytes(data, cue.Filename(path))
		if err := file.Err(); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		v = v.Unify(file)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Source.DSN = getenv(EnvSourceDSN, c.Source.DSN)
	c.Source.Driver = getenv(EnvSourceDriver, c.Source.Driver)
	c.Tracking.Path = getenv(EnvTrackingPath, c.Tracking.Path)
	c.LogLevel = getenv(EnvLogLevel, c.LogLevel)

	if v := os.Getenv(EnvPoolSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPoolSize, err)
		}
		c.Source.PoolSize = n
	}
	return nil
}

// Validate checks settings that environment overrides can break.
func (c Config) Validate() error {
	if c.Source.PoolSize <= 0 {
		return fmt.Errorf("source.pool_size must be positive, got %d", c.Source.PoolSize)
	}
	if _, err := c.Threshold(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// Threshold returns the parsed repost threshold.
func (c Config) Threshold() (time.Duration, error) {
	d, err := time.ParseDuration(c.RepostThreshold)
	if err != nil {
		return 0, fmt.Errorf("repost_threshold: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("repost_threshold must be positive, got %s", d)
	}
	return d, nil
}

// Level returns the configured log level. Unknown strings default to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
