// Package config loads the command line renderer's settings from the
// environment, optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/beetlebugorg/featurecanvas/pkg/canvas"
)

// Prefix is the environment variable prefix, e.g. FEATURECANVAS_WIDTH.
const Prefix = "featurecanvas"

type Config struct {
	Width          int     `envconfig:"WIDTH" default:"512"`
	Height         int     `envconfig:"HEIGHT" default:"512"`
	Mode           string  `envconfig:"MODE" default:"area"`
	FIDProperty    string  `envconfig:"FID_PROPERTY" default:"id"`
	BoxRangeMin    float64 `envconfig:"BOX_RANGE_MIN" default:"0"`
	BoxRangeMax    float64 `envconfig:"BOX_RANGE_MAX" default:"0"`
	PointAsMarker  bool    `envconfig:"POINT_AS_MARKER" default:"false"`
	IconDir        string  `envconfig:"ICON_DIR"`
	IconCacheBytes int64   `envconfig:"ICON_CACHE_BYTES" default:"33554432"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env files (missing ones are ignored; variables already set in
// the environment win) and then processes the environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.ParseMode(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseMode converts Mode into a canvas.Mode.
func (c *Config) ParseMode() (canvas.Mode, error) {
	switch strings.ToLower(c.Mode) {
	case "", "area":
		return canvas.ModeArea, nil
	case "diagram":
		return canvas.ModeDiagram, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want area or diagram)", c.Mode)
	}
}

// Level returns the slog level named by LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// LayerOptions builds canvas layer options from the configuration. SVG icons
// are read from IconDir: every *.svg file is registered under its base name
// without extension.
func (c *Config) LayerOptions(logger *slog.Logger) (canvas.LayerOptions, error) {
	mode, err := c.ParseMode()
	if err != nil {
		return canvas.LayerOptions{}, err
	}

	opts := canvas.DefaultLayerOptions()
	opts.Mode = mode
	opts.Width = c.Width
	opts.Height = c.Height
	opts.FIDProperty = c.FIDProperty
	opts.BoxRangeMin = c.BoxRangeMin
	opts.BoxRangeMax = c.BoxRangeMax
	opts.PointAsMarker = c.PointAsMarker
	opts.IconCacheBytes = c.IconCacheBytes
	opts.Logger = logger

	if c.IconDir != "" {
		icons, err := readIcons(c.IconDir)
		if err != nil {
			return canvas.LayerOptions{}, err
		}
		opts.Icons = icons
	}
	return opts, nil
}

func readIcons(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read icon dir: %w", err)
	}

	icons := make(map[string][]byte)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".svg") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read icon %s: %w", name, err)
		}
		icons[strings.TrimSuffix(name, filepath.Ext(name))] = data
	}
	return icons, nil
}
