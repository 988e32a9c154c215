package config

// Notes:
// - TestLoadConfig subtests that chdir cannot run in parallel because the
//   working directory is process-wide.
// - The unreadable-file case is skipped when running as root, which can read
//   any file regardless of mode.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestDefaultConfig - Neutral defaults
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Worker.Isolation != IsolationProcess {
		t.Errorf("Worker.Isolation = %q, want %q", cfg.Worker.Isolation, IsolationProcess)
	}
	if cfg.InlineIsolation() {
		t.Error("InlineIsolation() = true for defaults")
	}
	if cfg.Render.DPI != 0 || cfg.Render.PoolSize != 0 {
		t.Errorf("Render = %+v, want zero values", cfg.Render)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestValidateFieldLength - Length limits
// ---------------------------------------------------------------------------

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{"empty", "", 10, false},
		{"at limit", "0123456789", 10, false},
		{"over limit", "01234567890", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("field", tt.value, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				if !strings.Contains(err.Error(), "field") {
					t.Errorf("error %q does not name the field", err)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Ranges and enumerations
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		field   string
	}{
		{
			name:   "full valid config",
			mutate: func(c *Config) { *c = *validConfig() },
		},
		{
			name:    "negative dpi",
			mutate:  func(c *Config) { c.Render.DPI = -1 },
			wantErr: ErrInvalidValue,
			field:   "render.dpi",
		},
		{
			name:    "dpi above max",
			mutate:  func(c *Config) { c.Render.DPI = MaxDPI + 1 },
			wantErr: ErrInvalidValue,
			field:   "render.dpi",
		},
		{
			name:    "quality above one",
			mutate:  func(c *Config) { c.Render.Quality = 1.5 },
			wantErr: ErrInvalidValue,
			field:   "render.quality",
		},
		{
			name:    "negative pool size",
			mutate:  func(c *Config) { c.Render.PoolSize = -2 },
			wantErr: ErrInvalidValue,
			field:   "render.poolSize",
		},
		{
			name:   "isolation case insensitive",
			mutate: func(c *Config) { c.Worker.Isolation = "INLINE" },
		},
		{
			name:    "unknown isolation",
			mutate:  func(c *Config) { c.Worker.Isolation = "thread" },
			wantErr: ErrInvalidValue,
			field:   "worker.isolation",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: ErrInvalidValue,
			field:   "log.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: ErrInvalidValue,
			field:   "log.format",
		},
		{
			name:    "negative label width",
			mutate:  func(c *Config) { c.Label.WidthMM = -70 },
			wantErr: ErrInvalidValue,
			field:   "label.widthMM",
		},
		{
			name:    "label height too large",
			mutate:  func(c *Config) { c.Label.HeightMM = MaxLabelMM + 1 },
			wantErr: ErrInvalidValue,
			field:   "label.heightMM",
		},
		{
			name:    "unknown scale mode",
			mutate:  func(c *Config) { c.Images.ScaleMode = "fill" },
			wantErr: ErrInvalidValue,
			field:   "images.scaleMode",
		},
		{
			name:    "negative max pixels",
			mutate:  func(c *Config) { c.Images.MaxPixels = -1 },
			wantErr: ErrInvalidValue,
			field:   "images.maxPixels",
		},
		{
			name:    "output dir too long",
			mutate:  func(c *Config) { c.Output.DefaultDir = strings.Repeat("d", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
			field:   "output.defaultDir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Output: OutputConfig{DefaultDir: "/tmp/labels"},
		Render: RenderConfig{DPI: 300, Quality: 0.8, PoolSize: 4},
		Worker: WorkerConfig{Isolation: IsolationInline},
		Log:    LogConfig{Level: "debug", Format: LogFormatJSON},
		Label:  LabelConfig{WidthMM: 100, HeightMM: 150},
		Images: ImagesConfig{PageSize: "a4", ScaleMode: "aspectFit", MaxPixels: 4_000_000},
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File loading and name resolution
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "test.yaml")
		content := `output:
  defaultDir: "/srv/labels"
render:
  dpi: 300
  quality: 0.75
  poolSize: 3
worker:
  isolation: inline
label:
  widthMM: 100
  heightMM: 150
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Output.DefaultDir != "/srv/labels" {
			t.Errorf("Output.DefaultDir = %q", cfg.Output.DefaultDir)
		}
		if cfg.Render.DPI != 300 || cfg.Render.Quality != 0.75 || cfg.Render.PoolSize != 3 {
			t.Errorf("Render = %+v", cfg.Render)
		}
		if !cfg.InlineIsolation() {
			t.Error("InlineIsolation() = false, want true")
		}
		if cfg.Label.WidthMM != 100 || cfg.Label.HeightMM != 150 {
			t.Errorf("Label = %+v", cfg.Label)
		}
		// Unset sections keep defaults.
		if cfg.Log.Format != LogFormatConsole {
			t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, LogFormatConsole)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("render: [unclosed"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "unknown.yaml")
		content := "render:\n  dpi: 200\n  colour: true\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value returns ErrInvalidValue", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(configPath, []byte("render:\n  dpi: 5000\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("unreadable file returns read error not ErrConfigNotFound", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root can read files regardless of mode")
		}
		dir := t.TempDir()
		configPath := filepath.Join(dir, "unreadable.yaml")
		if err := os.WriteFile(configPath, []byte("render:\n  dpi: 100\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.Chmod(configPath, 0000); err != nil {
			t.Fatalf("setup chmod: %v", err)
		}
		defer func() { _ = os.Chmod(configPath, 0600) }()

		_, err := LoadConfig(configPath)
		if err == nil {
			t.Fatal("expected error for unreadable file")
		}
		if errors.Is(err, ErrConfigNotFound) {
			t.Error("error should not be ErrConfigNotFound for permission error")
		}
	})

	t.Run("config name resolves yml in current directory", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "myconfig.yml")
		if err := os.WriteFile(configPath, []byte("render:\n  dpi: 72\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		t.Chdir(dir)

		cfg, err := LoadConfig("myconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Render.DPI != 72 {
			t.Errorf("Render.DPI = %d, want 72", cfg.Render.DPI)
		}
	})

	t.Run("missing name lists searched paths", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		_, err := LoadConfig("absent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("error %T is not *NotFoundError", err)
		}
		if len(nf.Paths) < 2 || nf.Paths[0] != "absent.yaml" {
			t.Errorf("Paths = %v, want absent.yaml first", nf.Paths)
		}
		found := false
		for _, p := range nf.Paths {
			if strings.Contains(p, filepath.Join("pdfshdow", "absent.yaml")) {
				found = true
			}
		}
		if !found {
			t.Errorf("Paths = %v, want a user config location", nf.Paths)
		}
	})
}
