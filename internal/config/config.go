// Package config provides configuration loading for the mosaic engine.
//
// Configuration is loaded from a single YAML file specified by:
//   - MOSAIC_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There is no automatic discovery. Without a file, Default() is used.
// Fields left out of the file keep their default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "MOSAIC_CONFIG"

// EnvLogLevel overrides the configured log level.
const EnvLogLevel = "MOSAIC_LOG_LEVEL"

// Config is the master configuration for the mosaic engine.
type Config struct {
	// Library configures the tile library and its persisted index.
	Library LibraryConfig `yaml:"library"`

	// Workers is the size of the indexing and compositing worker pools.
	// Default: 0, meaning runtime.NumCPU().
	Workers int `yaml:"workers"`

	// Cache configures the resized tile cache.
	Cache CacheConfig `yaml:"cache"`

	// JobTimeout bounds the wall-clock time of one mosaic job, including
	// tile I/O. Zero disables the bound.
	// Default: 5m
	JobTimeout time.Duration `yaml:"job_timeout"`

	// MaxCanvasPixels caps the pixel count of an upscaled mosaic canvas.
	// Jobs whose upscale factor would exceed it are rejected.
	// Default: 67108864 (8192x8192)
	MaxCanvasPixels int `yaml:"max_canvas_pixels"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	// Default: info
	LogLevel string `yaml:"log_level"`
}

// LibraryConfig configures the tile library.
type LibraryConfig struct {
	// Dir is the root of the tile library, scanned recursively.
	// Default: data/image_library
	Dir string `yaml:"dir"`

	// IndexPath is where the color index is persisted.
	// Default: data/average_colors.csv
	IndexPath string `yaml:"index_path"`

	// Extensions is the accepted file extension set.
	// Default: .jpg .jpeg .png .bmp .gif .tiff .tif
	Extensions []string `yaml:"extensions"`

	// QuarantineDir receives files that fail verification. Empty leaves
	// them in place.
	QuarantineDir string `yaml:"quarantine_dir"`
}

// CacheConfig configures the tile cache.
type CacheConfig struct {
	// Capacity is the maximum number of resized tiles kept in memory.
	// Default: 256
	Capacity int `yaml:"capacity"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Library: LibraryConfig{
			Dir:        "data/image_library",
			IndexPath:  "data/average_colors.csv",
			Extensions: []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".tif"},
		},
		Cache:           CacheConfig{Capacity: 256},
		JobTimeout:      5 * time.Minute,
		MaxCanvasPixels: 1 << 26,
		LogLevel:        "info",
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the file named by flagPath, falling back to the
// MOSAIC_CONFIG environment variable, and to Default() when neither is set.
// MOSAIC_LOG_LEVEL, when set, overrides the log level.
func Resolve(flagPath string) (Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Cache.Capacity < 0 {
		errs = append(errs, fmt.Errorf("cache.capacity must be >= 0, got %d", c.Cache.Capacity))
	}
	if c.JobTimeout < 0 {
		errs = append(errs, fmt.Errorf("job_timeout must be >= 0, got %s", c.JobTimeout))
	}
	if c.MaxCanvasPixels < 0 {
		errs = append(errs, fmt.Errorf("max_canvas_pixels must be >= 0, got %d", c.MaxCanvasPixels))
	}
	if strings.TrimSpace(c.Library.IndexPath) == "" {
		errs = append(errs, errors.New("library.index_path must be set"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// WorkerCount returns the effective pool size.
func (c Config) WorkerCount() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
