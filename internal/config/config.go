// Package config loads the viewer's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "viewonly"
	configFileName = "config.yaml"
)

// Config holds the settings that are not user preferences: where media
// lives, where preferences are stored, and timing constants.
type Config struct {
	Media struct {
		Roots []string `yaml:"roots"` // directories scanned for media
		Watch bool     `yaml:"watch"` // reload the gallery when files change
	} `yaml:"media"`
	Database struct {
		Path string `yaml:"path"` // preference database file; empty selects the default
	} `yaml:"database"`
	Gallery struct {
		Columns int `yaml:"columns"`
	} `yaml:"gallery"`
	Viewer struct {
		MaxZoom float32 `yaml:"max_zoom"`
	} `yaml:"viewer"`
	Gates struct {
		PerTapTimeoutMs  int `yaml:"per_tap_timeout_ms"`
		PerBackTimeoutMs int `yaml:"per_back_timeout_ms"`
	} `yaml:"gates"`
	Video struct {
		PollIntervalMs int    `yaml:"poll_interval_ms"`
		Player         string `yaml:"player"` // mpv binary
	} `yaml:"video"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Media.Roots = defaultRoots()
	cfg.Media.Watch = true
	cfg.Gallery.Columns = 4
	cfg.Viewer.MaxZoom = 8
	cfg.Gates.PerTapTimeoutMs = 300
	cfg.Gates.PerBackTimeoutMs = 500
	cfg.Video.PollIntervalMs = 30
	cfg.Video.Player = "mpv"
	return cfg
}

func defaultRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return []string{"."}
	}
	return []string{filepath.Join(home, "Pictures"), filepath.Join(home, "Videos")}
}

// DefaultPath returns $UserConfigDir/viewonly/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Load reads the configuration at path. A missing file yields the defaults;
// fields left empty in the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// decoding over the defaults keeps every key the file leaves out
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Resolve loads path, or the default file when path is empty, and applies
// the non-empty overrides.
func Resolve(path, dbPath string, roots []string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if len(roots) > 0 {
		cfg.Media.Roots = roots
	}
	return cfg, nil
}

// fillDefaults replaces empty or non-positive values with the defaults.
func (c *Config) fillDefaults() {
	d := Default()
	if len(c.Media.Roots) == 0 {
		c.Media.Roots = d.Media.Roots
	}
	if c.Gallery.Columns <= 0 {
		c.Gallery.Columns = d.Gallery.Columns
	}
	if c.Viewer.MaxZoom == 0 {
		c.Viewer.MaxZoom = d.Viewer.MaxZoom
	}
	if c.Gates.PerTapTimeoutMs <= 0 {
		c.Gates.PerTapTimeoutMs = d.Gates.PerTapTimeoutMs
	}
	if c.Gates.PerBackTimeoutMs <= 0 {
		c.Gates.PerBackTimeoutMs = d.Gates.PerBackTimeoutMs
	}
	if c.Video.PollIntervalMs <= 0 {
		c.Video.PollIntervalMs = d.Video.PollIntervalMs
	}
	if c.Video.Player == "" {
		c.Video.Player = d.Video.Player
	}
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if c.Viewer.MaxZoom < 1 {
		return fmt.Errorf("max_zoom must be at least 1, got %v", c.Viewer.MaxZoom)
	}
	if c.Gallery.Columns > 12 {
		return fmt.Errorf("columns must be at most 12, got %d", c.Gallery.Columns)
	}
	return nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) PerTapTimeout() time.Duration {
	return time.Duration(c.Gates.PerTapTimeoutMs) * time.Millisecond
}

func (c *Config) PerBackTimeout() time.Duration {
	return time.Duration(c.Gates.PerBackTimeoutMs) * time.Millisecond
}

func (c *Config) VideoPollInterval() time.Duration {
	return time.Duration(c.Video.PollIntervalMs) * time.Millisecond
}
