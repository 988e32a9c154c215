package pdfshdow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"

	"github.com/wang824892540/PDFShdow/internal/pdf"
)

// composeImages puts each image on its own page, in order. Images are
// flattened onto white, downscaled past maxPixels, and re-encoded as JPEG.
func composeImages(ctx context.Context, p *ImagesToPDFParams, quality float64, maxPixels int) (*pdf.Builder, error) {
	size, err := p.pageSize()
	if err != nil {
		return nil, err
	}
	if p.Quality > 0 {
		quality = p.Quality
	}
	if p.MaxPixels > 0 {
		maxPixels = p.MaxPixels
	}
	stretch := strings.EqualFold(p.ScaleMode, ScaleStretch)
	page := Placement{Width: size.Width, Height: size.Height}

	b := pdf.NewBuilder()
	b.SetCreator(producer)
	for i, path := range p.ImagePaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		role := fmt.Sprintf("image %d", i+1)
		img, err := loadImage(role, path)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, flatten(img, maxPixels), &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
			return nil, fmt.Errorf("%w: encoding %s: %v", ErrCompose, role, err)
		}
		x, err := b.EmbedJPEG(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("%w: embedding %s: %v", ErrCompose, role, err)
		}

		ref, err := b.AddPage(size.Width, size.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompose, err)
		}
		r := page
		if !stretch {
			// Aspect fit uses the original pixel size so downscaling
			// never changes the placement.
			bounds := img.Bounds()
			if r, err = FitInto(page, Size{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrCompose, role, err)
			}
		}
		if err := b.Draw(ref, x, pdf.Rect{X: r.X, Y: r.Y, W: r.Width, H: r.Height}); err != nil {
			return nil, fmt.Errorf("%w: drawing %s: %v", ErrCompose, role, err)
		}
	}
	return b, nil
}

// loadImage reads and decodes an image, rejecting anything that is not one.
func loadImage(role, path string) (image.Image, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- image paths are user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreadableSource, role, path, err)
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: %s %s is not an image", ErrUnsupportedSource, role, path)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnreadableSource, role, path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s %s is an empty image", ErrEmptySource, role, path)
	}
	return img, nil
}

// flatten composites img over white. Images above maxPixels (when positive)
// are scaled down to fit it, keeping their aspect ratio.
func flatten(img image.Image, maxPixels int) *image.RGBA {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if maxPixels > 0 && w*h > maxPixels {
		f := math.Sqrt(float64(maxPixels) / float64(w*h))
		w = max(1, int(float64(w)*f))
		h = max(1, int(float64(h)*f))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

// jpegQuality maps a 0-1 quality onto the encoder's 1-100 scale. Zero
// selects DefaultQuality.
func jpegQuality(q float64) int {
	if q <= 0 {
		q = DefaultQuality
	}
	return min(100, max(1, int(math.Round(q*100))))
}
