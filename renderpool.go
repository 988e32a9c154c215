package pdfshdow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Render pool sizing.
const (
	// MinRenderPoolSize keeps two renderers busy even on one CPU.
	MinRenderPoolSize = 2

	// cpuDivisor leaves headroom for composition work.
	cpuDivisor = 2
)

// Rasterizer renders the first page of a single-page PDF file.
type Rasterizer interface {
	Rasterize(path string, dpi float64) (image.Image, error)
	Close() error
}

// RasterizerFactory creates one Rasterizer per pool member.
type RasterizerFactory func() (Rasterizer, error)

// ResolveRenderPoolSize determines the render pool size.
// Priority: explicit size > GOMAXPROCS-based calculation.
func ResolveRenderPoolSize(n int) int {
	if n > 0 {
		return n
	}
	// GOMAXPROCS is adjusted by automaxprocs for containers.
	return max(MinRenderPoolSize, runtime.GOMAXPROCS(0)/cpuDivisor)
}

// RenderPool converts single-page PDFs to JPEG images in parallel.
type RenderPool struct {
	size          int
	newRasterizer RasterizerFactory
	onPageDone    func(done, total int)
	log           zerolog.Logger
}

// NewRenderPool creates a pool. Members are started per Render call.
func NewRenderPool(opts ...Option) *RenderPool {
	o := newOptions(opts)
	return newRenderPool(o)
}

func newRenderPool(o options) *RenderPool {
	return &RenderPool{
		size:          ResolveRenderPoolSize(o.renderPoolSize),
		newRasterizer: o.newRasterizer,
		onPageDone:    o.onPageDone,
		log:           o.logger.With().Str("component", "renderpool").Logger(),
	}
}

// Size returns the number of members started per batch.
func (p *RenderPool) Size() int {
	return p.size
}

type renderTask struct {
	id    uuid.UUID
	index int
	path  string
}

type renderDone struct {
	id   uuid.UUID
	data []byte
	err  error
}

// renderQueue hands each task to exactly one member.
type renderQueue struct {
	mu    sync.Mutex
	tasks []renderTask
}

func (q *renderQueue) next() (renderTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return renderTask{}, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}

// Render rasterizes pages and returns JPEG data in page order. The first
// page that fails aborts the batch: outstanding pages are not rendered and
// no partial result is returned.
func (p *RenderPool) Render(ctx context.Context, pages []string, dpi float64, quality int) ([][]byte, error) {
	if len(pages) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	queue := &renderQueue{tasks: make([]renderTask, len(pages))}
	pending := make(map[uuid.UUID]int, len(pages))
	for i, path := range pages {
		id := uuid.New()
		queue.tasks[i] = renderTask{id: id, index: i, path: path}
		pending[id] = i
	}

	slots := make([][]byte, len(pages))
	done := make(chan renderDone)
	members := min(p.size, len(pages))

	var wg sync.WaitGroup
	for m := 0; m < members; m++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.member(ctx, queue, dpi, quality, done)
		}()
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	var firstErr error
	completed := 0
	for d := range done {
		idx, ok := pending[d.id]
		if !ok {
			p.log.Debug().Str("id", d.id.String()).Msg("discarding unknown render completion")
			continue
		}
		delete(pending, d.id)
		if firstErr != nil {
			continue
		}
		if d.err != nil {
			firstErr = d.err
			cancel(d.err)
			continue
		}
		slots[idx] = d.data
		completed++
		if p.onPageDone != nil {
			p.onPageDone(completed, len(pages))
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if completed < len(pages) {
		return nil, context.Cause(ctx)
	}
	return slots, nil
}

// member claims tasks until the queue drains or the batch is cancelled.
func (p *RenderPool) member(ctx context.Context, q *renderQueue, dpi float64, quality int, done chan<- renderDone) {
	r, err := p.newRasterizer()
	if err != nil {
		// Fail a task so the batch aborts instead of waiting on a member
		// that never started.
		if t, ok := q.next(); ok {
			done <- renderDone{id: t.id, err: fmt.Errorf("%w: starting renderer: %v", ErrRender, err)}
		}
		return
	}
	defer func() {
		if err := r.Close(); err != nil {
			p.log.Warn().Err(err).Msg("closing renderer")
		}
	}()

	for ctx.Err() == nil {
		t, ok := q.next()
		if !ok {
			return
		}
		data, err := renderPage(r, t.path, dpi, quality)
		if err != nil {
			done <- renderDone{id: t.id, err: fmt.Errorf("%w: page %d: %v", ErrRender, t.index+1, err)}
			return
		}
		done <- renderDone{id: t.id, data: data}
	}
}

func renderPage(r Rasterizer, path string, dpi float64, quality int) (data []byte, err error) {
	// Members run on their own goroutines, out of reach of Worker.Execute.
	defer func() {
		if p := recover(); p != nil {
			data, err = nil, fmt.Errorf("renderer panic: %v", p)
		}
	}()

	img, err := r.Rasterize(path, dpi)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
