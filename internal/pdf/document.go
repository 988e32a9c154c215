package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// headerWindow is how far into the file a %PDF- header is accepted.
const headerWindow = 1024

// letterBox is the MediaBox assumed when a page tree declares none.
var letterBox = Rect{X: 0, Y: 0, W: 612, H: 792}

func init() {
	// Workers must not create pdfcpu's config directory in the user's home.
	api.DisableConfigDir()
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Document is a parsed, read-only PDF.
type Document struct {
	ctx   *model.Context
	pages []*Page
}

// Page is one page of a parsed Document. Its size is read once, at load.
type Page struct {
	doc       *Document
	index     int
	dict      types.Dict
	mediaBox  Rect
	resources types.Object
	rotate    int
}

// Open reads and parses the file at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-provided document path
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse reads, validates and optimizes data. Documents protected by a user
// password, and encrypted documents in general, are rejected.
func Parse(data []byte) (*Document, error) {
	head := data
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		if errors.Is(err, pdfcpu.ErrWrongPassword) {
			return nil, ErrEncrypted
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ctx.Encrypt != nil {
		return nil, ErrEncrypted
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	d := &Document{ctx: ctx, pages: make([]*Page, 0, ctx.PageCount)}
	for nr := 1; nr <= ctx.PageCount; nr++ {
		p, err := d.loadPage(nr)
		if err != nil {
			return nil, err
		}
		d.pages = append(d.pages, p)
	}
	return d, nil
}

// loadPage reads page nr (1-based) with its inherited MediaBox, Rotate and
// Resources.
func (d *Document) loadPage(nr int) (*Page, error) {
	dict, _, inh, err := d.ctx.PageDict(nr, true)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrMalformed, nr, err)
	}
	if dict == nil {
		return nil, fmt.Errorf("%w: page %d not found", ErrMalformed, nr)
	}

	p := &Page{doc: d, index: nr - 1, dict: dict, mediaBox: letterBox}
	if inh != nil {
		if inh.MediaBox != nil {
			p.mediaBox = rectFrom(inh.MediaBox)
		}
		p.rotate = ((inh.Rotate % 360) + 360) % 360
		if inh.Resources != nil {
			p.resources = inh.Resources
		}
	}
	if p.resources == nil {
		if res, found := dict.Find("Resources"); found {
			p.resources = res
		}
	}
	return p, nil
}

// NumPages returns the number of pages in the page tree.
func (d *Document) NumPages() int {
	return len(d.pages)
}

// Page returns the page at zero-based index i.
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d (document has %d pages)", ErrPageOutOfRange, i, len(d.pages))
	}
	return d.pages[i], nil
}

// Pages returns every page in document order.
func (d *Document) Pages() []*Page {
	return d.pages
}

// ExtractPage writes page i as a standalone single-page document.
func (d *Document) ExtractPage(i int) ([]byte, error) {
	if _, err := d.Page(i); err != nil {
		return nil, err
	}
	single, err := pdfcpu.ExtractPages(d.ctx, []int{i + 1}, false)
	if err != nil {
		return nil, fmt.Errorf("extracting page %d: %w", i+1, err)
	}
	var buf bytes.Buffer
	if err := api.WriteContext(single, &buf); err != nil {
		return nil, fmt.Errorf("writing page %d: %w", i+1, err)
	}
	return buf.Bytes(), nil
}

// Width is the MediaBox width in points.
func (p *Page) Width() float64 { return p.mediaBox.W }

// Height is the MediaBox height in points.
func (p *Page) Height() float64 { return p.mediaBox.H }

// Index is the zero-based position of the page in its document.
func (p *Page) Index() int { return p.index }

// MediaBox returns the inherited MediaBox.
func (p *Page) MediaBox() Rect { return p.mediaBox }

// Rotate returns the /Rotate value normalized to 0, 90, 180 or 270.
func (p *Page) Rotate() int { return p.rotate }

// Content returns the decoded content of the page. Multiple content streams
// are concatenated; a page without /Contents has empty content.
func (p *Page) Content() ([]byte, error) {
	if _, found := p.dict.Find("Contents"); !found {
		return nil, nil
	}
	data, err := p.doc.ctx.PageContent(p.dict, p.index+1)
	if err != nil {
		return nil, fmt.Errorf("reading content of page %d: %w", p.index+1, err)
	}
	return data, nil
}
