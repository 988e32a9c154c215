package pdfshdow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// Compile-time interface check.
var _ Rasterizer = (*fakeRasterizer)(nil)

// fakeRenderer records calls across every rasterizer it creates.
type fakeRenderer struct {
	calls    atomic.Int32
	created  atomic.Int32
	closed   atomic.Int32
	failOn   string // path suffix that fails
	panicOn  string // path suffix that panics
	startErr error

	mu    sync.Mutex
	paths []string
}

func (f *fakeRenderer) factory() (Rasterizer, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.created.Add(1)
	return &fakeRasterizer{f: f}, nil
}

type fakeRasterizer struct {
	f *fakeRenderer
}

func (r *fakeRasterizer) Rasterize(path string, dpi float64) (image.Image, error) {
	r.f.calls.Add(1)
	r.f.mu.Lock()
	r.f.paths = append(r.f.paths, path)
	r.f.mu.Unlock()

	if r.f.failOn != "" && strings.HasSuffix(path, r.f.failOn) {
		return nil, errors.New("corrupt page")
	}
	if r.f.panicOn != "" && strings.HasSuffix(path, r.f.panicOn) {
		panic("renderer crashed")
	}
	// Encode the page number in the image width so order can be checked.
	var n int
	_, _ = fmt.Sscanf(path[strings.LastIndex(path, "-")+1:], "%d", &n)
	return testImage(n*8, int(dpi)/10, color.Gray{Y: 128}), nil
}

func (r *fakeRasterizer) Close() error {
	r.f.closed.Add(1)
	return nil
}

func pagePaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("page-%d.pdf", i+1)
	}
	return paths
}

func jpegWidth(t *testing.T, data []byte) int {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.DecodeConfig() error = %v", err)
	}
	return cfg.Width
}

// ---------------------------------------------------------------------------
// TestResolveRenderPoolSize - Pool sizing
// ---------------------------------------------------------------------------

func TestResolveRenderPoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolveRenderPoolSize(5); got != 5 {
		t.Errorf("ResolveRenderPoolSize(5) = %d, want 5", got)
	}
	want := max(MinRenderPoolSize, runtime.GOMAXPROCS(0)/2)
	for _, n := range []int{0, -3} {
		if got := ResolveRenderPoolSize(n); got != want {
			t.Errorf("ResolveRenderPoolSize(%d) = %d, want %d", n, got, want)
		}
	}
	if got := ResolveRenderPoolSize(0); got < MinRenderPoolSize {
		t.Errorf("ResolveRenderPoolSize(0) = %d, want at least %d", got, MinRenderPoolSize)
	}
}

func TestNewRenderPool_Size(t *testing.T) {
	t.Parallel()

	if got := NewRenderPool(WithRenderPoolSize(3)).Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}

// ---------------------------------------------------------------------------
// TestRenderPool_Render - Ordered results and first-error abort
// ---------------------------------------------------------------------------

func TestRenderPool_Render_PreservesOrder(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 2, 4, 16} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			t.Parallel()

			f := &fakeRenderer{}
			pool := NewRenderPool(WithRenderPoolSize(size), WithRasterizer(f.factory))

			images, err := pool.Render(context.Background(), pagePaths(9), 100, 80)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if len(images) != 9 {
				t.Fatalf("got %d images, want 9", len(images))
			}
			for i, data := range images {
				if w := jpegWidth(t, data); w != (i+1)*8 {
					t.Errorf("image %d width = %d, want %d", i, w, (i+1)*8)
				}
			}
			if f.calls.Load() != 9 {
				t.Errorf("Rasterize called %d times, want 9", f.calls.Load())
			}
			if created, closed := f.created.Load(), f.closed.Load(); created != closed || int(created) > min(size, 9) {
				t.Errorf("created %d rasterizers, closed %d, want equal and at most %d", created, closed, min(size, 9))
			}
		})
	}
}

func TestRenderPool_Render_Empty(t *testing.T) {
	t.Parallel()

	f := &fakeRenderer{}
	images, err := NewRenderPool(WithRasterizer(f.factory)).Render(context.Background(), nil, 100, 80)
	if err != nil || images != nil {
		t.Errorf("Render(nil) = %v, %v, want nil, nil", images, err)
	}
	if f.created.Load() != 0 {
		t.Errorf("created %d rasterizers for an empty batch", f.created.Load())
	}
}

func TestRenderPool_Render_FirstErrorAborts(t *testing.T) {
	t.Parallel()

	f := &fakeRenderer{failOn: "page-2.pdf"}
	pool := NewRenderPool(WithRenderPoolSize(1), WithRasterizer(f.factory))

	images, err := pool.Render(context.Background(), pagePaths(5), 100, 80)
	if !errors.Is(err, ErrRender) {
		t.Fatalf("Render() error = %v, want ErrRender", err)
	}
	if !strings.Contains(err.Error(), "page 2") {
		t.Errorf("error = %q, want it to name page 2", err)
	}
	if images != nil {
		t.Errorf("Render() returned %d images with an error", len(images))
	}
	if got := f.calls.Load(); got != 2 {
		t.Errorf("Rasterize called %d times, want 2 (no pages after the failure)", got)
	}
	if f.closed.Load() != f.created.Load() {
		t.Errorf("closed %d of %d rasterizers", f.closed.Load(), f.created.Load())
	}
}

func TestRenderPool_Render_Panic(t *testing.T) {
	t.Parallel()

	f := &fakeRenderer{panicOn: "page-3.pdf"}
	pool := NewRenderPool(WithRenderPoolSize(2), WithRasterizer(f.factory))

	_, err := pool.Render(context.Background(), pagePaths(4), 100, 80)
	if !errors.Is(err, ErrRender) || !strings.Contains(err.Error(), "panic") {
		t.Errorf("Render() error = %v, want ErrRender from a panic", err)
	}
}

func TestRenderPool_Render_StartError(t *testing.T) {
	t.Parallel()

	f := &fakeRenderer{startErr: errors.New("no MuPDF")}
	pool := NewRenderPool(WithRenderPoolSize(2), WithRasterizer(f.factory))

	_, err := pool.Render(context.Background(), pagePaths(3), 100, 80)
	if !errors.Is(err, ErrRender) || !strings.Contains(err.Error(), "no MuPDF") {
		t.Errorf("Render() error = %v, want ErrRender wrapping the start error", err)
	}
	if f.calls.Load() != 0 {
		t.Errorf("Rasterize called %d times", f.calls.Load())
	}
}

func TestRenderPool_Render_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeRenderer{}
	_, err := NewRenderPool(WithRenderPoolSize(2), WithRasterizer(f.factory)).Render(ctx, pagePaths(3), 100, 80)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestRenderPool_Render_Progress(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var done []int
	total := 0
	progress := func(d, tot int) {
		mu.Lock()
		defer mu.Unlock()
		done = append(done, d)
		total = tot
	}

	f := &fakeRenderer{}
	pool := NewRenderPool(WithRenderPoolSize(3), WithRasterizer(f.factory), WithProgress(progress))
	if _, err := pool.Render(context.Background(), pagePaths(6), 100, 80); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if total != 6 || len(done) != 6 {
		t.Fatalf("progress called %d times with total %d, want 6 and 6", len(done), total)
	}
	for i, d := range done {
		if d != i+1 {
			t.Errorf("progress[%d] = %d, want %d", i, d, i+1)
		}
	}
}

func TestRenderQueue_EachTaskOnce(t *testing.T) {
	t.Parallel()

	q := &renderQueue{}
	for i := 0; i < 100; i++ {
		q.tasks = append(q.tasks, renderTask{index: i})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]int)
	for m := 0; m < 8; m++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, ok := q.next()
				if !ok {
					return
				}
				mu.Lock()
				seen[task.index]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 100 {
		t.Errorf("claimed %d distinct tasks, want 100", len(seen))
	}
	for idx, n := range seen {
		if n != 1 {
			t.Errorf("task %d claimed %d times", idx, n)
		}
	}
}
