package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// copier moves objects from one parsed document into a Builder. Each source
// object is copied at most once, so shared fonts and images stay shared.
type copier struct {
	src  *model.Context
	dst  *model.Context
	refs map[int]types.IndirectRef
}

func newCopier(src *Document, dst *Builder) *copier {
	return &copier{src: src.ctx, dst: dst.ctx, refs: make(map[int]types.IndirectRef)}
}

func (c *copier) copy(o types.Object) (types.Object, error) {
	switch v := o.(type) {
	case types.IndirectRef:
		return c.copyRef(v)
	case types.Dict:
		d := types.NewDict()
		for k, e := range v {
			ce, err := c.copy(e)
			if err != nil {
				return nil, err
			}
			if ce != nil {
				d[k] = ce
			}
		}
		return d, nil
	case types.Array:
		a := make(types.Array, len(v))
		for i, e := range v {
			ce, err := c.copy(e)
			if err != nil {
				return nil, err
			}
			a[i] = ce
		}
		return a, nil
	case types.StreamDict:
		d := types.NewDict()
		for k, e := range v.Dict {
			// The source /Length may be an indirect object; it is rewritten.
			if k == "Length" {
				continue
			}
			ce, err := c.copy(e)
			if err != nil {
				return nil, err
			}
			if ce != nil {
				d[k] = ce
			}
		}
		l := int64(len(v.Raw))
		d["Length"] = types.Integer(l)
		return types.StreamDict{
			Dict:           d,
			StreamLength:   &l,
			FilterPipeline: v.FilterPipeline,
			Raw:            v.Raw,
		}, nil
	default:
		return o, nil
	}
}

func (c *copier) copyRef(ref types.IndirectRef) (types.Object, error) {
	nr := ref.ObjectNumber.Value()
	if r, ok := c.refs[nr]; ok {
		return r, nil
	}
	o, err := c.src.Dereference(ref)
	if err != nil {
		return nil, fmt.Errorf("resolving object %d: %w", nr, err)
	}
	if o == nil {
		return nil, nil
	}

	// Reserve the number first so cycles resolve to it.
	dst, err := c.dst.IndRefForNewObject(nil)
	if err != nil {
		return nil, err
	}
	c.refs[nr] = *dst
	co, err := c.copy(o)
	if err != nil {
		return nil, err
	}
	c.dst.Table[dst.ObjectNumber.Value()].Object = co
	return *dst, nil
}
