package pdfshdow

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// fitzRasterizer renders with MuPDF. Each call opens its own document, so
// one rasterizer never holds more than one file open.
type fitzRasterizer struct{}

// NewFitzRasterizer returns the MuPDF-backed Rasterizer.
func NewFitzRasterizer() (Rasterizer, error) {
	return fitzRasterizer{}, nil
}

func (fitzRasterizer) Rasterize(path string, dpi float64) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = doc.Close() }()

	if doc.NumPage() < 1 {
		return nil, fmt.Errorf("%s has no pages", path)
	}
	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", path, err)
	}
	return img, nil
}

func (fitzRasterizer) Close() error {
	return nil
}
