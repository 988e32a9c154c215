package pdf

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Rect is a rectangle in PDF units with its origin at the lower-left corner.
type Rect struct {
	X, Y, W, H float64
}

func rectFrom(r *types.Rectangle) Rect {
	return Rect{X: r.LL.X, Y: r.LL.Y, W: r.Width(), H: r.Height()}
}

func (r Rect) array() types.Array {
	return types.RectForWidthAndHeight(r.X, r.Y, r.W, r.H).Array()
}

// Builder is an output document under construction. Pages are appended and
// never removed; Bytes serializes the document once, after which every
// mutating call fails with ErrFinalized.
type Builder struct {
	ctx       *model.Context
	err       error
	pages     []*PageRef
	forms     map[*Page]*XObject
	copiers   map[*Document]*copier
	nextName  int
	finalized bool
	creator   string
}

// PageRef is a page of a Builder.
type PageRef struct {
	owner    *Builder
	width    float64
	height   float64
	content  bytes.Buffer
	xobjects types.Dict
}

// Width of the page in points.
func (p *PageRef) Width() float64 { return p.width }

// Height of the page in points.
func (p *PageRef) Height() float64 { return p.height }

// XObject is an embedded page (Form XObject) or image, drawable any number
// of times on any page of the Builder that created it.
type XObject struct {
	owner *Builder
	ref   types.IndirectRef
	name  string
	form  bool
	bbox  Rect
}

// Width is the natural width: the BBox width for forms, pixels for images.
func (x *XObject) Width() float64 { return x.bbox.W }

// Height is the natural height: the BBox height for forms, pixels for images.
func (x *XObject) Height() float64 { return x.bbox.H }

// NewBuilder returns an empty document with zero pages.
func NewBuilder() *Builder {
	ctx, err := pdfcpu.CreateContextWithXRefTable(newConfiguration(), &types.Dim{Width: letterBox.W, Height: letterBox.H})
	return &Builder{
		ctx:     ctx,
		err:     err,
		forms:   make(map[*Page]*XObject),
		copiers: make(map[*Document]*copier),
	}
}

// SetCreator records s as the /Creator of the info dictionary.
func (b *Builder) SetCreator(s string) {
	b.creator = s
}

// NumPages returns the number of pages appended so far.
func (b *Builder) NumPages() int {
	return len(b.pages)
}

func (b *Builder) check() error {
	if b.finalized {
		return ErrFinalized
	}
	if b.err != nil {
		return fmt.Errorf("creating document: %w", b.err)
	}
	return nil
}

func (b *Builder) newName() string {
	b.nextName++
	return "X" + strconv.Itoa(b.nextName)
}

// addStream flate-compresses data into a new stream object carrying dict.
func (b *Builder) addStream(dict types.Dict, data []byte) (types.IndirectRef, error) {
	sd, err := b.ctx.NewStreamDictForBuf(data)
	if err != nil {
		return types.IndirectRef{}, err
	}
	for k, v := range dict {
		sd.Dict[k] = v
	}
	if err := sd.Encode(); err != nil {
		return types.IndirectRef{}, err
	}
	ref, err := b.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}

func validSize(w, h float64) bool {
	return w > 0 && h > 0 && !math.IsInf(w, 0) && !math.IsInf(h, 0)
}

// AddPage appends an empty page of the given size in points.
func (b *Builder) AddPage(width, height float64) (*PageRef, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if !validSize(width, height) {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidPageSize, width, height)
	}
	p := &PageRef{
		owner:    b,
		width:    width,
		height:   height,
		xobjects: types.NewDict(),
	}
	b.pages = append(b.pages, p)
	return p, nil
}

// EmbedPage turns a source page into a Form XObject. The page's resources
// are copied, so the output never refers back to the source. Embedding the
// same page twice returns the cached XObject.
func (b *Builder) EmbedPage(p *Page) (*XObject, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if x, ok := b.forms[p]; ok {
		return x, nil
	}

	c := b.copierFor(p.doc)
	var res types.Object = types.NewDict()
	if p.resources != nil {
		cr, err := c.copy(p.resources)
		if err != nil {
			return nil, fmt.Errorf("copying resources of page %d: %w", p.index+1, err)
		}
		if cr != nil {
			res = cr
		}
	}
	content, err := p.Content()
	if err != nil {
		return nil, err
	}

	dict := types.Dict{
		"Type":      types.Name("XObject"),
		"Subtype":   types.Name("Form"),
		"FormType":  types.Integer(1),
		"BBox":      p.mediaBox.array(),
		"Resources": res,
	}
	if g, found := p.dict.Find("Group"); found {
		if cg, err := c.copy(g); err == nil && cg != nil {
			dict["Group"] = cg
		}
	}

	ref, err := b.addStream(dict, content)
	if err != nil {
		return nil, fmt.Errorf("embedding page %d: %w", p.index+1, err)
	}
	x := &XObject{owner: b, ref: ref, name: b.newName(), form: true, bbox: p.mediaBox}
	b.forms[p] = x
	return x, nil
}

// Draw paints x on page, scaled to fill r exactly.
func (b *Builder) Draw(page *PageRef, x *XObject, r Rect) error {
	if err := b.check(); err != nil {
		return err
	}
	if page == nil || page.owner != b || x == nil || x.owner != b {
		return ErrForeignPage
	}
	if !validSize(r.W, r.H) {
		return fmt.Errorf("%w: placement %vx%v", ErrInvalidPageSize, r.W, r.H)
	}

	var a, d, e, f float64
	if x.form {
		a = r.W / x.bbox.W
		d = r.H / x.bbox.H
		e = r.X - x.bbox.X*a
		f = r.Y - x.bbox.Y*d
	} else {
		a, d, e, f = r.W, r.H, r.X, r.Y
	}

	page.xobjects[x.name] = x.ref
	fmt.Fprintf(&page.content, "q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n",
		formatNumber(a), formatNumber(d), formatNumber(e), formatNumber(f), x.name)
	return nil
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func (b *Builder) copierFor(d *Document) *copier {
	c, ok := b.copiers[d]
	if !ok {
		c = newCopier(d, b)
		b.copiers[d] = c
	}
	return c
}

// Bytes serializes the document. It may be called once, and only after at
// least one page was added.
func (b *Builder) Bytes() ([]byte, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if len(b.pages) == 0 {
		return nil, ErrNoPages
	}
	b.finalized = true

	pagesRef, err := b.ctx.Pages()
	if err != nil {
		return nil, err
	}
	kids := make(types.Array, 0, len(b.pages))
	for _, p := range b.pages {
		content, err := b.addStream(types.NewDict(), p.content.Bytes())
		if err != nil {
			return nil, err
		}
		res := types.Dict{"ProcSet": types.Array{types.Name("PDF"), types.Name("ImageB"), types.Name("ImageC")}}
		if len(p.xobjects) > 0 {
			res["XObject"] = p.xobjects
		}
		ref, err := b.ctx.IndRefForNewObject(types.Dict{
			"Type":      types.Name("Page"),
			"Parent":    *pagesRef,
			"MediaBox":  Rect{W: p.width, H: p.height}.array(),
			"Contents":  content,
			"Resources": res,
		})
		if err != nil {
			return nil, err
		}
		kids = append(kids, *ref)
	}

	pages, err := b.ctx.DereferenceDict(*pagesRef)
	if err != nil {
		return nil, err
	}
	pages["Kids"] = kids
	pages["Count"] = types.Integer(len(kids))
	b.ctx.PageCount = len(kids)

	if b.creator != "" {
		info, err := b.ctx.IndRefForNewObject(types.Dict{"Creator": types.StringLiteral(b.creator)})
		if err != nil {
			return nil, err
		}
		b.ctx.Info = info
	}

	var buf bytes.Buffer
	if err := api.WriteContext(b.ctx, &buf); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}
	b.forms = nil
	b.copiers = nil
	return buf.Bytes(), nil
}
