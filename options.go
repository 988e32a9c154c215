package pdfshdow

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Worker, RenderPool or Orchestrator. Options that do
// not apply to the value being built are ignored.
type Option func(*options)

type options struct {
	logger         zerolog.Logger
	renderPoolSize int
	newRasterizer  RasterizerFactory
	runner         Runner
	tempDir        string
	dpi            int
	quality        float64
	maxPixels      int
	onPageDone     func(done, total int)
	now            func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		logger:        zerolog.Nop(),
		newRasterizer: NewFitzRasterizer,
		dpi:           DefaultDPI,
		quality:       DefaultQuality,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for warnings and diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRenderPoolSize sets the number of concurrent page renderers.
// Zero or negative selects ResolveRenderPoolSize(0).
func WithRenderPoolSize(n int) Option {
	return func(o *options) { o.renderPoolSize = n }
}

// WithRasterizer replaces the go-fitz rasterizer.
func WithRasterizer(f RasterizerFactory) Option {
	return func(o *options) {
		if f != nil {
			o.newRasterizer = f
		}
	}
}

// WithRunner sets how the Orchestrator executes tasks. The default runs
// them in-process.
func WithRunner(r Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithTempDir sets the parent directory for per-task temporary files.
func WithTempDir(dir string) Option {
	return func(o *options) { o.tempDir = dir }
}

// WithDefaultDPI sets the DPI used when a request leaves it at zero.
func WithDefaultDPI(dpi int) Option {
	return func(o *options) {
		if dpi > 0 && dpi <= MaxDPI {
			o.dpi = dpi
		}
	}
}

// WithDefaultQuality sets the JPEG quality (0-1] used when a request leaves
// it at zero.
func WithDefaultQuality(q float64) Option {
	return func(o *options) {
		if q > 0 && q <= 1 {
			o.quality = q
		}
	}
}

// WithMaxPixels downscales image-to-pdf inputs larger than n pixels.
func WithMaxPixels(n int) Option {
	return func(o *options) { o.maxPixels = max(0, n) }
}

// WithProgress registers a callback invoked after each rendered page.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.onPageDone = fn }
}
