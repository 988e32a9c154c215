package pdfshdow

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/wang824892540/PDFShdow/internal/fileutil"
	"github.com/wang824892540/PDFShdow/internal/pdf"
)

// producer is recorded as the creator of every generated document.
const producer = "PDFShdow"

type fitMode int

const (
	// fitAspect scales the source uniformly and centers it in the region.
	fitAspect fitMode = iota
	// fitStretch fills the region exactly.
	fitStretch
)

// labelElement places one source into a region of every output page.
// A repeating element contributes page i to output page i; any other
// element contributes its first page to every output page.
type labelElement struct {
	id        string
	source    *labelSource
	repeating bool
	region    Placement
	fit       fitMode
}

// composeLabel draws elems onto w x h pages, one page per page of the
// repeating element (a single page when none repeats). Elements are drawn
// in order, so later elements paint over earlier ones.
func composeLabel(ctx context.Context, w, h float64, elems []labelElement) (*pdf.Builder, error) {
	pages := 1
	for _, e := range elems {
		if e.repeating {
			pages = e.source.pageCount()
			break
		}
	}

	b := pdf.NewBuilder()
	b.SetCreator(producer)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := b.AddPage(w, h)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompose, err)
		}
		for _, e := range elems {
			idx := 0
			if e.repeating {
				idx = i
			}
			if err := drawElement(b, page, e, idx); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

func drawElement(b *pdf.Builder, page *pdf.PageRef, e labelElement, idx int) error {
	x, err := e.source.embed(b, idx)
	if err != nil {
		return err
	}
	r, err := e.placement(idx)
	if err != nil {
		return err
	}
	if err := b.Draw(page, x, pdf.Rect{X: r.X, Y: r.Y, W: r.Width, H: r.Height}); err != nil {
		return fmt.Errorf("%w: drawing %s: %v", ErrCompose, e.id, err)
	}
	return nil
}

// placement is where page idx of the element's source lands.
func (e labelElement) placement(idx int) (Placement, error) {
	if e.fit == fitStretch {
		return e.region, nil
	}
	size, err := e.source.pageSize(idx)
	if err != nil {
		return Placement{}, err
	}
	r, err := FitInto(e.region, size)
	if err != nil {
		return Placement{}, fmt.Errorf("%w: %s page %d: %v", ErrCompose, e.id, idx+1, err)
	}
	return r, nil
}

// layoutElements places sources by element ID using the free layout.
// Every id must have an element; the first missing id is reported.
func layoutElements(l *Layout, outW, outH float64, sources []labelElement) ([]labelElement, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	out := make([]labelElement, 0, len(sources))
	for _, s := range sources {
		el, ok := l.Find(s.id)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingLayout, s.id)
		}
		region, err := FreeLayoutTransform(el.Rect(), l.EditorWidth, l.EditorHeight, outW, outH)
		if err != nil {
			return nil, err
		}
		s.region = region
		s.fit = fitStretch
		out = append(out, s)
	}
	return out, nil
}

// finish serializes b and reports the page count.
func finish(b *pdf.Builder) ([]byte, int, error) {
	pages := b.NumPages()
	data, err := b.Bytes()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: serializing: %v", ErrCompose, err)
	}
	return data, pages, nil
}

// composeResize draws every page of the source onto its own Width x Height
// page, aspect-fit and centered. Without a target size the pages keep their
// own sizes.
func composeResize(ctx context.Context, p *ResizeParams) (*pdf.Builder, error) {
	src, err := loadSource("source", p.SourcePath)
	if err != nil {
		return nil, err
	}
	if p.PassThrough() {
		return copyPages(ctx, src)
	}
	return composeLabel(ctx, p.Width, p.Height, []labelElement{{
		id:        "source",
		source:    src,
		repeating: true,
		region:    Placement{Width: p.Width, Height: p.Height},
		fit:       fitAspect,
	}})
}

// copyPages draws each page of src unscaled onto a page of the same size.
func copyPages(ctx context.Context, src *labelSource) (*pdf.Builder, error) {
	b := pdf.NewBuilder()
	b.SetCreator(producer)
	for i := 0; i < src.pageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		size, err := src.pageSize(i)
		if err != nil {
			return nil, err
		}
		page, err := b.AddPage(size.Width, size.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompose, err)
		}
		x, err := src.embed(b, i)
		if err != nil {
			return nil, err
		}
		if err := b.Draw(page, x, pdf.Rect{W: size.Width, H: size.Height}); err != nil {
			return nil, fmt.Errorf("%w: drawing %s page %d: %v", ErrCompose, src.role, i+1, err)
		}
	}
	return b, nil
}

// composeStacked puts the repeating page in the top half and the static
// first page in the bottom half, or places both by layout.
func composeStacked(ctx context.Context, p *StackedParams) (*pdf.Builder, error) {
	w, h := MMToUnits(p.WidthMM), MMToUnits(p.HeightMM)
	if p.Layout != nil {
		// Layout problems surface before any file is read.
		if err := p.Layout.Validate(); err != nil {
			return nil, err
		}
		if err := p.Layout.require(StackedStaticID, StackedRepeatingID); err != nil {
			return nil, err
		}
	}

	static, err := loadSource("static source", p.StaticPath)
	if err != nil {
		return nil, err
	}
	repeating, err := loadSource("repeating source", p.RepeatingPath)
	if err != nil {
		return nil, err
	}
	elems, err := stackedElements(p, static, repeating)
	if err != nil {
		return nil, err
	}
	return composeLabel(ctx, w, h, elems)
}

func stackedElements(p *StackedParams, static, repeating *labelSource) ([]labelElement, error) {
	w, h := MMToUnits(p.WidthMM), MMToUnits(p.HeightMM)
	elems := []labelElement{
		{id: StackedStaticID, source: static},
		{id: StackedRepeatingID, source: repeating, repeating: true},
	}
	if p.Layout != nil {
		return layoutElements(p.Layout, w, h, elems)
	}
	top, bottom := Halves(w, h)
	elems[0].region, elems[0].fit = bottom, fitAspect
	elems[1].region, elems[1].fit = top, fitAspect
	return elems, nil
}

// composeOverlay places two or three sources by layout.
func composeOverlay(ctx context.Context, p *OverlayParams) (*pdf.Builder, error) {
	w, h := MMToUnits(p.WidthMM), MMToUnits(p.HeightMM)
	ids := make([]string, len(p.Sources))
	for i, s := range p.Sources {
		ids[i] = s.ID
	}
	if err := p.Layout.require(ids...); err != nil {
		return nil, err
	}

	elems := make([]labelElement, 0, len(p.Sources))
	for _, s := range p.Sources {
		src, err := loadSource(fmt.Sprintf("source %q", s.ID), s.Path)
		if err != nil {
			return nil, err
		}
		elems = append(elems, labelElement{id: s.ID, source: src, repeating: s.Repeating})
	}
	elems, err := layoutElements(&p.Layout, w, h, elems)
	if err != nil {
		return nil, err
	}
	return composeLabel(ctx, w, h, elems)
}

// composeMultiMerge binds Paths positionally to MultiMergeIDs. The third
// source repeats.
func composeMultiMerge(ctx context.Context, p *MultiMergeParams) (*pdf.Builder, error) {
	w, h := MMToUnits(p.WidthMM), MMToUnits(p.HeightMM)
	if err := p.Layout.require(MultiMergeIDs[:]...); err != nil {
		return nil, err
	}

	elems := make([]labelElement, 0, len(MultiMergeIDs))
	for i, id := range MultiMergeIDs {
		src, err := loadSource(fmt.Sprintf("source %q", id), p.Paths[i])
		if err != nil {
			return nil, err
		}
		elems = append(elems, labelElement{id: id, source: src, repeating: i == len(MultiMergeIDs)-1})
	}
	elems, err := layoutElements(&p.Layout, w, h, elems)
	if err != nil {
		return nil, err
	}
	return composeLabel(ctx, w, h, elems)
}

// outputPath resolves where a result is written. The directory defaults to
// the directory of the request's first source.
func outputPath(out Output, firstSource, ext string) string {
	dir := out.Dir
	if dir == "" {
		dir = filepath.Dir(firstSource)
	}
	return filepath.Join(dir, fileutil.EnsureExtension(out.Name, ext))
}

// writeOutput writes data to path, creating its directory.
func writeOutput(path string, data []byte) error {
	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
