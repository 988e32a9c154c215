package pdfshdow

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wang824892540/PDFShdow/internal/pdf"
)

const epsilon = 1e-6

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// writePDF writes a document with one blank page per size, or a document
// with an empty page tree when no size is given.
func writePDF(t *testing.T, dir, name string, sizes ...Size) string {
	t.Helper()
	if len(sizes) == 0 {
		return writeFile(t, dir, name, emptyPDF())
	}
	b := pdf.NewBuilder()
	for _, s := range sizes {
		if _, err := b.AddPage(s.Width, s.Height); err != nil {
			t.Fatalf("AddPage(%v) error = %v", s, err)
		}
	}
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// emptyPDF is a well-formed document whose page tree has no pages.
func emptyPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	off2 := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 3\n0000000000 65535 f \n%010d 00000 n \n%010d 00000 n \n", off1, off2)
	fmt.Fprintf(&buf, "trailer\n<< /Size 3 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func testImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h, color.NRGBA{R: 200, A: 128})); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h, color.NRGBA{B: 200, A: 255}), nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return writeFile(t, dir, name, buf.Bytes())
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// openPDF parses an output document and returns its page sizes.
func openPDF(t *testing.T, path string) []Size {
	t.Helper()
	doc, err := pdf.Open(path)
	if err != nil {
		t.Fatalf("pdf.Open(%s) error = %v", path, err)
	}
	sizes := make([]Size, 0, doc.NumPages())
	for _, p := range doc.Pages() {
		sizes = append(sizes, Size{Width: p.Width(), Height: p.Height()})
	}
	return sizes
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s exists, want no output file", path)
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	for _, e := range entries {
		t.Errorf("%s still contains %s", dir, e.Name())
	}
}

// labelOut is 70 x 60 mm in output units.
var labelOut = Size{Width: 198.4255, Height: 170.079}

// withClock fixes the time recorded in archives.
func withClock(t time.Time) Option {
	return func(o *options) { o.now = func() time.Time { return t } }
}
