// Package config loads the YAML settings file that supplies CLI defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wang824892540/PDFShdow/internal/fileutil"
	"github.com/wang824892540/PDFShdow/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Limits enforced by Validate.
const (
	MaxPathLength  = 4096
	MaxDPI         = 1200
	MaxPoolSize    = 256
	MaxLabelMM     = 2000
	MaxImagePixels = 400_000_000
)

// Isolation modes for task workers.
const (
	IsolationProcess = "process"
	IsolationInline  = "inline"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds the defaults applied when a command or request leaves a
// value unset.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	Worker WorkerConfig `yaml:"worker"`
	Log    LogConfig    `yaml:"log"`
	Label  LabelConfig  `yaml:"label"`
	Images ImagesConfig `yaml:"images"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the first source
}

// RenderConfig tunes pdf-to-images rasterization.
type RenderConfig struct {
	DPI      int     `yaml:"dpi"`      // 0 = library default (150)
	Quality  float64 `yaml:"quality"`  // JPEG quality in (0, 1], 0 = default (0.9)
	PoolSize int     `yaml:"poolSize"` // 0 = max(2, CPUs/2)
}

// WorkerConfig selects how tasks are isolated.
type WorkerConfig struct {
	Isolation string `yaml:"isolation"` // "process" (default) or "inline"
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name, default "warn"
	Format string `yaml:"format"` // "console" (default) or "json"
}

// LabelConfig sets the default label size for label recipes.
type LabelConfig struct {
	WidthMM  float64 `yaml:"widthMM"`
	HeightMM float64 `yaml:"heightMM"`
}

// ImagesConfig sets image-to-pdf defaults.
type ImagesConfig struct {
	PageSize  string `yaml:"pageSize"`
	ScaleMode string `yaml:"scaleMode"`
	MaxPixels int    `yaml:"maxPixels"` // 0 = no downscaling
}

// Validate checks ranges and enumerations. Called automatically by
// LoadConfig, but available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if c.Render.DPI < 0 || c.Render.DPI > MaxDPI {
		return fmt.Errorf("%w: render.dpi must be between 0 and %d, got %d", ErrInvalidValue, MaxDPI, c.Render.DPI)
	}
	if c.Render.Quality < 0 || c.Render.Quality > 1 {
		return fmt.Errorf("%w: render.quality must be between 0 and 1, got %.2f", ErrInvalidValue, c.Render.Quality)
	}
	if c.Render.PoolSize < 0 || c.Render.PoolSize > MaxPoolSize {
		return fmt.Errorf("%w: render.poolSize must be between 0 and %d, got %d", ErrInvalidValue, MaxPoolSize, c.Render.PoolSize)
	}

	switch strings.ToLower(c.Worker.Isolation) {
	case "", IsolationProcess, IsolationInline:
	default:
		return fmt.Errorf("%w: worker.isolation %q (must be process or inline)", ErrInvalidValue, c.Worker.Isolation)
	}

	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
			return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}

	if c.Label.WidthMM < 0 || c.Label.WidthMM > MaxLabelMM {
		return fmt.Errorf("%w: label.widthMM must be between 0 and %d, got %.2f", ErrInvalidValue, MaxLabelMM, c.Label.WidthMM)
	}
	if c.Label.HeightMM < 0 || c.Label.HeightMM > MaxLabelMM {
		return fmt.Errorf("%w: label.heightMM must be between 0 and %d, got %.2f", ErrInvalidValue, MaxLabelMM, c.Label.HeightMM)
	}

	if err := validateFieldLength("images.pageSize", c.Images.PageSize, 20); err != nil {
		return err
	}
	switch strings.ToLower(c.Images.ScaleMode) {
	case "", "aspectfit", "stretch":
	default:
		return fmt.Errorf("%w: images.scaleMode %q (must be aspectFit or stretch)", ErrInvalidValue, c.Images.ScaleMode)
	}
	if c.Images.MaxPixels < 0 || c.Images.MaxPixels > MaxImagePixels {
		return fmt.Errorf("%w: images.maxPixels must be between 0 and %d, got %d", ErrInvalidValue, MaxImagePixels, c.Images.MaxPixels)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration where every value defers to the
// library defaults.
func DefaultConfig() *Config {
	return &Config{
		Worker: WorkerConfig{Isolation: IsolationProcess},
		Log:    LogConfig{Level: "warn", Format: LogFormatConsole},
	}
}

// InlineIsolation reports whether tasks should run in-process.
func (c *Config) InlineIsolation() bool {
	return strings.EqualFold(c.Worker.Isolation, IsolationInline)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/pdfshdow/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "pdfshdow", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Paths: triedPaths}
}

// NotFoundError lists the locations searched for a named config.
type NotFoundError struct {
	Paths []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: tried %s", ErrConfigNotFound, strings.Join(e.Paths, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }
