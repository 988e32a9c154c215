package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wang824892540/PDFShdow/internal/config"
)

// Environment variable names.
const (
	envConfig     = "PDFSHDOW_CONFIG"
	envOutputDir  = "PDFSHDOW_OUTPUT_DIR"
	envWorkers    = "PDFSHDOW_WORKERS"
	envDPI        = "PDFSHDOW_DPI"
	envQuality    = "PDFSHDOW_QUALITY"
	envMaxPixels  = "PDFSHDOW_MAX_PIXELS"
	envIsolation  = "PDFSHDOW_ISOLATION"
	envLogLevel   = "PDFSHDOW_LOG_LEVEL"
	envLogFormat  = "PDFSHDOW_LOG_FORMAT"
	envPrefix     = "PDFSHDOW_"
	dotenvDefault = ".env"
)

// envSettings holds configuration from environment variables.
// Zero values mean unset.
type envSettings struct {
	ConfigPath string  // PDFSHDOW_CONFIG: config file name or path
	OutputDir  string  // PDFSHDOW_OUTPUT_DIR: default output directory
	Workers    int     // PDFSHDOW_WORKERS: page renderers
	DPI        int     // PDFSHDOW_DPI: pdf2img resolution
	Quality    float64 // PDFSHDOW_QUALITY: JPEG quality
	MaxPixels  int     // PDFSHDOW_MAX_PIXELS: img2pdf downscale threshold
	Isolation  string  // PDFSHDOW_ISOLATION: process or inline
	LogLevel   string  // PDFSHDOW_LOG_LEVEL
	LogFormat  string  // PDFSHDOW_LOG_FORMAT
}

// knownEnvVars lists valid PDFSHDOW_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfig:    true,
	envOutputDir: true,
	envWorkers:   true,
	envDPI:       true,
	envQuality:   true,
	envMaxPixels: true,
	envIsolation: true,
	envLogLevel:  true,
	envLogFormat: true,
}

// loadEnvSettings reads PDFSHDOW_* variables. Numbers that do not parse or
// are not positive are ignored.
func loadEnvSettings() *envSettings {
	return &envSettings{
		ConfigPath: os.Getenv(envConfig),
		OutputDir:  os.Getenv(envOutputDir),
		Workers:    positiveInt(os.Getenv(envWorkers)),
		DPI:        positiveInt(os.Getenv(envDPI)),
		Quality:    positiveFloat(os.Getenv(envQuality)),
		MaxPixels:  positiveInt(os.Getenv(envMaxPixels)),
		Isolation:  os.Getenv(envIsolation),
		LogLevel:   os.Getenv(envLogLevel),
		LogFormat:  os.Getenv(envLogFormat),
	}
}

func positiveInt(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func positiveFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return f
}

// warnUnknownEnvVars logs warnings for unrecognized PDFSHDOW_* variables.
// Helps catch typos like PDFSHDOW_DIP instead of PDFSHDOW_DPI.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvSettings overrides config values with every variable that is set.
// Flags are applied afterwards, giving: flags > env > config file > defaults.
func applyEnvSettings(env *envSettings, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Workers > 0 {
		cfg.Render.PoolSize = env.Workers
	}
	if env.DPI > 0 {
		cfg.Render.DPI = env.DPI
	}
	if env.Quality > 0 {
		cfg.Render.Quality = env.Quality
	}
	if env.MaxPixels > 0 {
		cfg.Images.MaxPixels = env.MaxPixels
	}
	if env.Isolation != "" {
		cfg.Worker.Isolation = env.Isolation
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}

// workerEnv passes resolved settings to worker processes, which read no
// config file of their own.
func workerEnv(cfg *config.Config) []string {
	env := []string{
		envLogLevel + "=" + cfg.Log.Level,
		envLogFormat + "=" + config.LogFormatJSON,
	}
	if cfg.Render.PoolSize > 0 {
		env = append(env, envWorkers+"="+strconv.Itoa(cfg.Render.PoolSize))
	}
	if cfg.Render.DPI > 0 {
		env = append(env, envDPI+"="+strconv.Itoa(cfg.Render.DPI))
	}
	if cfg.Render.Quality > 0 {
		env = append(env, envQuality+"="+strconv.FormatFloat(cfg.Render.Quality, 'f', -1, 64))
	}
	if cfg.Images.MaxPixels > 0 {
		env = append(env, envMaxPixels+"="+strconv.Itoa(cfg.Images.MaxPixels))
	}
	return env
}
