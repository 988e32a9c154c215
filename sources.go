package pdfshdow

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	// Decoders registered for label sources and image-to-pdf inputs.
	_ "image/gif"
	_ "image/png"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wang824892540/PDFShdow/internal/pdf"
)

// sourceKind tells how a source's bytes are embedded.
type sourceKind int

const (
	sourceUnknown sourceKind = iota
	sourcePDF
	sourceJPEG
	sourceRaster
)

// PDF readers accept a header anywhere in the first kilobyte.
const pdfHeaderWindow = 1024

// labelSource is a loaded input. PDFs contribute pages; images contribute a
// single page the size of the image in pixels.
type labelSource struct {
	role string
	path string
	kind sourceKind
	doc  *pdf.Document
	data []byte
	img  image.Image
	size Size

	xobj *pdf.XObject // image XObject, embedded once per builder
}

// loadSource reads and parses the file at path. role names the source in
// error messages.
func loadSource(role, path string) (*labelSource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, role)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- source paths are user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreadableSource, role, path, err)
	}
	src := &labelSource{role: role, path: path}

	switch sniff(data) {
	case sourcePDF:
		doc, err := pdf.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrUnreadableSource, role, path, err)
		}
		if doc.NumPages() == 0 {
			return nil, fmt.Errorf("%w: %s %s", ErrEmptySource, role, path)
		}
		src.kind, src.doc = sourcePDF, doc
	case sourceJPEG:
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrUnreadableSource, role, path, err)
		}
		src.kind, src.data = sourceJPEG, data
		src.size = Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	case sourceRaster:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrUnreadableSource, role, path, err)
		}
		b := img.Bounds()
		src.kind, src.img = sourceRaster, img
		src.size = Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrUnsupportedSource, role, path)
	}

	if src.kind != sourcePDF && !positive(src.size.Width, src.size.Height) {
		return nil, fmt.Errorf("%w: %s %s is an empty image", ErrEmptySource, role, path)
	}
	return src, nil
}

// sniff classifies data by content, never by file extension.
func sniff(data []byte) sourceKind {
	kind, _ := filetype.Match(data)
	switch {
	case kind.Extension == "jpg":
		return sourceJPEG
	case filetype.IsImage(data):
		return sourceRaster
	case kind.Extension == "pdf":
		return sourcePDF
	}
	head := data
	if len(head) > pdfHeaderWindow {
		head = head[:pdfHeaderWindow]
	}
	if bytes.Contains(head, []byte("%PDF-")) {
		return sourcePDF
	}
	return sourceUnknown
}

// pageCount is 1 for images.
func (s *labelSource) pageCount() int {
	if s.kind == sourcePDF {
		return s.doc.NumPages()
	}
	return 1
}

// pageSize returns the size of page i in output units.
func (s *labelSource) pageSize(i int) (Size, error) {
	if s.kind != sourcePDF {
		return s.size, nil
	}
	p, err := s.doc.Page(i)
	if err != nil {
		return Size{}, fmt.Errorf("%w: %s page %d: %v", ErrCompose, s.role, i+1, err)
	}
	return Size{Width: p.Width(), Height: p.Height()}, nil
}

// embed returns the XObject for page i in b. Pages are cached by the builder;
// images are embedded once.
func (s *labelSource) embed(b *pdf.Builder, i int) (*pdf.XObject, error) {
	switch s.kind {
	case sourcePDF:
		p, err := s.doc.Page(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", ErrCompose, s.role, i+1, err)
		}
		x, err := b.EmbedPage(p)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding %s page %d: %v", ErrCompose, s.role, i+1, err)
		}
		return x, nil
	case sourceJPEG:
		if s.xobj == nil {
			x, err := b.EmbedJPEG(s.data)
			if err != nil {
				return nil, fmt.Errorf("%w: embedding %s: %v", ErrCompose, s.role, err)
			}
			s.xobj = x
		}
		return s.xobj, nil
	default:
		if s.xobj == nil {
			x, err := b.EmbedImage(s.img)
			if err != nil {
				return nil, fmt.Errorf("%w: embedding %s: %v", ErrCompose, s.role, err)
			}
			s.xobj = x
		}
		return s.xobj, nil
	}
}
