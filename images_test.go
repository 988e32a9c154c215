package pdfshdow

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// TestComposeImages - One page per image
// ---------------------------------------------------------------------------

func TestComposeImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	images := []string{
		writePNG(t, dir, "a.png", 40, 20),
		writeJPEG(t, dir, "b.jpg", 20, 40),
		writePNG(t, dir, "c.png", 10, 10),
	}

	tests := []struct {
		name   string
		params ImagesToPDFParams
		want   Size
	}{
		{"default A4", ImagesToPDFParams{}, Size{Width: 595.28, Height: 841.89}},
		{"A4 landscape", ImagesToPDFParams{PageSize: PageSizeA4, Orientation: OrientationLandscape}, Size{Width: 841.89, Height: 595.28}},
		{"custom stretch", ImagesToPDFParams{PageSize: PageSizeCustom, WidthMM: 70, HeightMM: 60, ScaleMode: ScaleStretch}, labelOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := tt.params
			p.ImagePaths = images
			p.Output = Output{Name: "unused"}
			b, err := composeImages(context.Background(), &p, DefaultQuality, 0)
			if err != nil {
				t.Fatalf("composeImages() error = %v", err)
			}
			data, pages, err := finish(b)
			if err != nil {
				t.Fatal(err)
			}
			if pages != len(images) {
				t.Errorf("pages = %d, want %d", pages, len(images))
			}

			path := writeFile(t, t.TempDir(), "out.pdf", data)
			for i, s := range openPDF(t, path) {
				if !approx(s.Width, tt.want.Width) || !approx(s.Height, tt.want.Height) {
					t.Errorf("page %d = %vx%v, want %vx%v", i+1, s.Width, s.Height, tt.want.Width, tt.want.Height)
				}
			}
		})
	}
}

func TestComposeImages_RejectsNonImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := &ImagesToPDFParams{
		ImagePaths: []string{
			writePNG(t, dir, "a.png", 4, 4),
			writePDF(t, dir, "b.pdf", Size{Width: 10, Height: 10}),
		},
		Output: Output{Name: "images"},
	}

	_, err := composeImages(context.Background(), p, DefaultQuality, 0)
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("composeImages() error = %v, want ErrUnsupportedSource", err)
	}

	res := execute(t, TaskRequest{Recipe: RecipeImagesToPDF, ImagesToPDF: p})
	if res.Success || res.Kind != KindSource {
		t.Errorf("Execute() = %+v, want source failure", res)
	}
	assertNoFile(t, filepath.Join(dir, "images.pdf"))
}

func TestComposeImages_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &ImagesToPDFParams{ImagePaths: []string{writePNG(t, dir, "a.png", 4, 4)}}
	if _, err := composeImages(ctx, p, DefaultQuality, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("composeImages() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestFlatten - White background and pixel budget
// ---------------------------------------------------------------------------

func TestFlatten_TransparentBecomesWhite(t *testing.T) {
	t.Parallel()

	img := testImage(4, 4, color.NRGBA{})
	got := flatten(img, 0)
	r, g, b, a := got.At(1, 1).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("pixel = %v %v %v %v, want opaque white", r, g, b, a)
	}
}

func TestFlatten_MaxPixels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		w, h      int
		maxPixels int
		wantW     int
		wantH     int
	}{
		{"unlimited", 100, 50, 0, 100, 50},
		{"under budget", 100, 50, 5000, 100, 50},
		{"over budget", 100, 100, 2500, 50, 50},
		{"keeps aspect", 400, 100, 10000, 200, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := flatten(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.maxPixels)
			if b := got.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("flatten() = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestJPEGQuality - Encoder quality mapping
// ---------------------------------------------------------------------------

func TestJPEGQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		q    float64
		want int
	}{
		{0, 90},
		{-1, 90},
		{0.001, 1},
		{0.5, 50},
		{0.856, 86},
		{1, 100},
	}

	for _, tt := range tests {
		if got := jpegQuality(tt.q); got != tt.want {
			t.Errorf("jpegQuality(%v) = %d, want %d", tt.q, got, tt.want)
		}
	}
}
