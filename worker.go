package pdfshdow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/wang824892540/PDFShdow/internal/pdf"
)

// Worker executes tasks: it loads the sources, composes the result in
// memory and writes it once composition has fully succeeded.
// A Worker is safe for concurrent use.
type Worker struct {
	opts options
	pool *RenderPool
	log  zerolog.Logger
}

// NewWorker creates a Worker with default configuration.
// Use options to customize behavior (e.g., WithRenderPoolSize).
func NewWorker(opts ...Option) *Worker {
	o := newOptions(opts)
	return &Worker{
		opts: o,
		pool: newRenderPool(o),
		log:  o.logger.With().Str("component", "worker").Logger(),
	}
}

// Execute runs req and reports its outcome. It never panics: a panic inside
// the document engine becomes a composition failure.
func (w *Worker) Execute(ctx context.Context, req TaskRequest) (res TaskResult) {
	defer func() {
		if p := recover(); p != nil {
			w.log.Error().Interface("panic", p).Str("recipe", string(req.Recipe)).Msg("task panicked")
			res = failure(fmt.Errorf("%w: internal error: %v", ErrCompose, p))
		}
	}()

	if err := req.Validate(); err != nil {
		return failure(err)
	}
	path, err := w.run(ctx, &req)
	if err != nil {
		w.log.Debug().Err(err).Str("recipe", string(req.Recipe)).Msg("task failed")
		return failure(err)
	}
	w.log.Debug().Str("recipe", string(req.Recipe)).Str("path", path).Msg("task completed")
	return TaskResult{Success: true, Path: path}
}

// Compose builds the document for req in memory without writing it. It
// applies to every recipe except pdf-to-images, which produces an archive.
func (w *Worker) Compose(ctx context.Context, req TaskRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Recipe == RecipePDFToImages {
		return nil, fmt.Errorf("%w: %s produces an archive, use Execute", ErrUnknownRecipe, req.Recipe)
	}
	data, _, err := w.compose(ctx, &req)
	return data, err
}

func (w *Worker) run(ctx context.Context, req *TaskRequest) (string, error) {
	if req.Recipe == RecipePDFToImages {
		return w.pdfToImages(ctx, req.PDFToImages)
	}

	data, pages, err := w.compose(ctx, req)
	if err != nil {
		return "", err
	}
	_, out, _, _ := req.params()
	path := outputPath(*out, req.firstSource(), pdfExtension)
	if err := writeOutput(path, data); err != nil {
		return "", err
	}
	w.log.Debug().Str("path", path).Int("pages", pages).Int("bytes", len(data)).Msg("wrote document")
	return path, nil
}

func (w *Worker) compose(ctx context.Context, req *TaskRequest) ([]byte, int, error) {
	var (
		b   *pdf.Builder
		err error
	)
	switch req.Recipe {
	case RecipeResize:
		b, err = composeResize(ctx, req.Resize)
	case RecipeStacked:
		b, err = composeStacked(ctx, req.Stacked)
	case RecipeOverlay:
		b, err = composeOverlay(ctx, req.Overlay)
	case RecipeMultiMerge:
		b, err = composeMultiMerge(ctx, req.MultiMerge)
	case RecipeImagesToPDF:
		b, err = composeImages(ctx, req.ImagesToPDF, w.opts.quality, w.opts.maxPixels)
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownRecipe, req.Recipe)
	}
	if err != nil {
		return nil, 0, err
	}
	return finish(b)
}

// ServeWorker is the entry point of a worker process: it reads one
// TaskRequest as JSON from r, executes it and writes one TaskResult as JSON
// to w. A request that cannot be decoded is reported as a validation
// failure.
func ServeWorker(ctx context.Context, r io.Reader, w io.Writer, opts ...Option) error {
	var req TaskRequest
	var res TaskResult
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		res = failure(fmt.Errorf("%w: decoding request: %v", ErrMissingParams, err))
	} else {
		res = NewWorker(opts...).Execute(ctx, req)
	}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}
