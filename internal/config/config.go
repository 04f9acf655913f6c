// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"github.com/Faultbox/fieldview/internal/logger"
)

// Backend names accepted by ViewerConfig.Backend.
const (
	BackendOpenGL = "opengl"
	BackendNull   = "null"
)

// Config holds all viewer settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Render  RenderConfig  `yaml:"render"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds window and host loop settings.
type ViewerConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Backend    string `yaml:"backend"`         // opengl or null
	Headless   int    `yaml:"headless_frames"` // >0 renders this many frames without a window
	Samples    int    `yaml:"msaa_samples"`
}

// Color is an RGBA color with components in [0, 1].
type Color [4]float64

// RenderConfig holds walkmesh view settings.
type RenderConfig struct {
	MarkerHalfSize         float32 `yaml:"marker_half_size"`
	ClearWithBackground    Color   `yaml:"clear_with_background,flow"`
	ClearWithoutBackground Color   `yaml:"clear_without_background,flow"`
	PanStep                float32 `yaml:"pan_step"`
	RotateStep             float32 `yaml:"rotate_step"`
	InitialTab             int     `yaml:"initial_tab"`
}

// DataConfig holds field data paths.
type DataConfig struct {
	FieldPath string `yaml:"field"` // YAML field dump
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	// Format of the log file: "console" or "json".
	Format     string `yaml:"format"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Quiet      bool   `yaml:"quiet"`
}

// Options converts the section into logger options.
func (l LoggingConfig) Options() logger.Options {
	return logger.Options{
		Level:  l.Level,
		Format: l.Format,
		File:   l.LogFile,
		Rotation: logger.Rotation{
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
			Compress:   true,
		},
		Console: !l.Quiet,
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Width:   1280,
			Height:  720,
			VSync:   true,
			Backend: BackendOpenGL,
		},
		Render: RenderConfig{
			MarkerHalfSize:         10,
			ClearWithBackground:    Color{0, 0, 0, 1},
			ClearWithoutBackground: Color{0.2, 0.2, 0.2, 1},
			PanStep:                10,
			RotateStep:             5,
			InitialTab:             1,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     logger.FormatConsole,
			MaxSizeMB:  logger.DefaultRotation().MaxSizeMB,
			MaxBackups: logger.DefaultRotation().MaxBackups,
			MaxAgeDays: logger.DefaultRotation().MaxAgeDays,
		},
	}
}

// Validate reports the first setting the viewer cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Viewer.Backend) {
	case BackendOpenGL, BackendNull:
	default:
		return fmt.Errorf("viewer.backend: unknown backend %q", c.Viewer.Backend)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer: invalid size %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.Samples < 0 {
		return fmt.Errorf("viewer.msaa_samples: negative sample count %d", c.Viewer.Samples)
	}
	if c.Viewer.Headless < 0 {
		return fmt.Errorf("viewer.headless_frames: negative frame count %d", c.Viewer.Headless)
	}
	if !(c.Render.MarkerHalfSize > 0) {
		return fmt.Errorf("render.marker_half_size: must be positive, got %v", c.Render.MarkerHalfSize)
	}
	if c.Render.InitialTab < -1 || c.Render.InitialTab > 3 {
		return fmt.Errorf("render.initial_tab: out of range %d", c.Render.InitialTab)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "", logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	for name, col := range map[string]Color{
		"clear_with_background":    c.Render.ClearWithBackground,
		"clear_without_background": c.Render.ClearWithoutBackground,
	} {
		for _, v := range col {
			if !(v >= 0 && v <= 1) {
				return fmt.Errorf("render.%s: component %v outside [0,1]", name, v)
			}
		}
	}
	return nil
}

// NullBackend reports whether frames go to the recording backend instead of a window.
func (v ViewerConfig) NullBackend() bool {
	return strings.EqualFold(v.Backend, BackendNull)
}
