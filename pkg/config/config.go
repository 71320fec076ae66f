// Package config loads application settings from a TOML file with sane
// defaults for every knob.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/brandkit/pkg/batch"
	"github.com/matzehuels/brandkit/pkg/canvas"
	"github.com/matzehuels/brandkit/pkg/editor"
	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/kitstore"
)

// Config holds all application settings.
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Editor EditorConfig `toml:"editor"`
	Batch  BatchConfig  `toml:"batch"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// CanvasConfig sets the editor canvas dimensions.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// EditorConfig sets pointer interaction tuning.
type EditorConfig struct {
	HandleTolerance float64 `toml:"handle_tolerance"`
}

// BatchConfig sets batch orchestration limits.
type BatchConfig struct {
	Concurrency    int  `toml:"concurrency"`
	MaxImages      int  `toml:"max_images"`
	AutoSquareCrop bool `toml:"auto_square_crop"`
}

// StoreConfig selects and configures the kit persistence backend.
type StoreConfig struct {
	// Backend is one of "file", "redis", or "mongo".
	Backend string `toml:"backend"`

	// TimeoutSeconds bounds each load/save round trip.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// Dir is the base directory for the file backend. Empty means the
	// user config directory.
	Dir string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI string `toml:"mongo_uri"`
}

// ServerConfig sets the HTTP API listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:  canvas.DefaultWidth,
			Height: canvas.DefaultHeight,
		},
		Editor: EditorConfig{
			HandleTolerance: editor.DefaultHandleTolerance,
		},
		Batch: BatchConfig{
			Concurrency: batch.DefaultConcurrency,
			MaxImages:   batch.DefaultMaxImages,
		},
		Store: StoreConfig{
			Backend:        "file",
			TimeoutSeconds: int(kitstore.DefaultTimeout / time.Second),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "brandkit.toml"
	}
	return filepath.Join(home, ".config", "brandkit", "config.toml")
}

// Load reads a TOML config file, filling unset fields with defaults.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file")
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas dimensions must be positive")
	}
	if c.Batch.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "batch concurrency must be at least 1")
	}
	if c.Batch.MaxImages < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "batch max_images must be at least 1")
	}
	switch c.Store.Backend {
	case "file", "redis", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// StoreTimeout returns the configured store timeout as a duration.
func (c *Config) StoreTimeout() time.Duration {
	if c.Store.TimeoutSeconds <= 0 {
		return kitstore.DefaultTimeout
	}
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// Mapper builds the coordinate mapper for the configured canvas.
func (c *Config) Mapper() canvas.Mapper {
	return canvas.NewMapper(c.Canvas.Width, c.Canvas.Height)
}
