package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	pdfshdow "github.com/wang824892540/PDFShdow"
	"github.com/wang824892540/PDFShdow/internal/config"
	"github.com/wang824892540/PDFShdow/internal/fileutil"
)

// session carries the resolved settings of one command.
type session struct {
	cfg   *config.Config
	log   zerolog.Logger
	quiet bool
	env   *Environment
}

// newSession resolves settings with precedence flags > env > config file >
// defaults, and builds the logger.
func newSession(f *commonFlags, env *Environment) (*session, error) {
	envs := loadEnvSettings()
	if !f.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg := config.DefaultConfig()
	configName := f.config
	if configName == "" {
		configName = envs.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvSettings(envs, cfg)
	applyCommonFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env.Config = cfg

	return &session{
		cfg:   cfg,
		log:   newLogger(env.Stderr, cfg.Log, f.verbose),
		quiet: f.quiet,
		env:   env,
	}, nil
}

// applyCommonFlags merges explicitly set flags into cfg (flags win).
func applyCommonFlags(f *commonFlags, cfg *config.Config) {
	if f.isolation != "" {
		cfg.Worker.Isolation = f.isolation
	}
	if f.workers > 0 {
		cfg.Render.PoolSize = f.workers
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if f.verbose {
		cfg.Log.Level = zerolog.LevelDebugValue
	}
}

// newLogger writes to w in the configured format. Verbose forces debug.
func newLogger(w io.Writer, lc config.LogConfig, verbose bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil || lc.Level == "" {
		level = zerolog.WarnLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	var out io.Writer = w
	if !strings.EqualFold(lc.Format, config.LogFormatJSON) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: color.NoColor}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// options translates settings into library options.
func (s *session) options() []pdfshdow.Option {
	return []pdfshdow.Option{
		pdfshdow.WithLogger(s.log),
		pdfshdow.WithRenderPoolSize(s.cfg.Render.PoolSize),
		pdfshdow.WithDefaultDPI(s.cfg.Render.DPI),
		pdfshdow.WithDefaultQuality(s.cfg.Render.Quality),
		pdfshdow.WithMaxPixels(s.cfg.Images.MaxPixels),
	}
}

// orchestrator builds an Orchestrator that isolates tasks the configured
// way. extra options apply to inline workers only.
func (s *session) orchestrator(extra ...pdfshdow.Option) (*pdfshdow.Orchestrator, error) {
	opts := s.options()
	if s.cfg.InlineIsolation() {
		return pdfshdow.NewOrchestrator(append(opts, extra...)...), nil
	}

	exe, err := s.env.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating worker binary: %w", err)
	}
	runner := &pdfshdow.ProcessRunner{
		Path:   exe,
		Args:   []string{workerCommand},
		Env:    workerEnv(s.cfg),
		Logger: s.log,
	}
	return pdfshdow.NewOrchestrator(append(opts, pdfshdow.WithRunner(runner))...), nil
}

// resolveOutput splits an --output value into directory and file name.
// An empty value or an existing directory keeps defaultName.
func (s *session) resolveOutput(flagValue, defaultName string) pdfshdow.Output {
	if flagValue == "" {
		return pdfshdow.Output{Name: defaultName, Dir: s.cfg.Output.DefaultDir}
	}
	if fileutil.DirExists(flagValue) {
		return pdfshdow.Output{Name: defaultName, Dir: flagValue}
	}
	dir, name := filepath.Split(flagValue)
	if name == "" {
		return pdfshdow.Output{Name: defaultName, Dir: dir}
	}
	if dir == "" {
		dir = s.cfg.Output.DefaultDir
	}
	return pdfshdow.Output{Name: name, Dir: dir}
}

// labelSize returns the output label size in millimeters: flags, then
// config, then the 70 x 60 mm default.
func (s *session) labelSize(f labelFlags) (float64, float64) {
	w, h := f.widthMM, f.heightMM
	if w == 0 {
		w = s.cfg.Label.WidthMM
	}
	if h == 0 {
		h = s.cfg.Label.HeightMM
	}
	if w == 0 {
		w = pdfshdow.LabelWidthMM
	}
	if h == 0 {
		h = pdfshdow.LabelHeightMM
	}
	return w, h
}

// baseName is the file name of path without its extension.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
