package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// EmbedJPEG embeds baseline or progressive JPEG data without re-encoding.
// The returned XObject's natural size is the pixel size.
func (b *Builder) EmbedJPEG(data []byte) (*XObject, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty JPEG", ErrInvalidImage)
	}

	l := int64(len(data))
	dict := types.Dict{
		"Type":             types.Name("XObject"),
		"Subtype":          types.Name("Image"),
		"Width":            types.Integer(cfg.Width),
		"Height":           types.Integer(cfg.Height),
		"BitsPerComponent": types.Integer(8),
		"Filter":           types.Name("DCTDecode"),
		"Length":           types.Integer(l),
	}
	switch cfg.ColorModel {
	case color.GrayModel:
		dict["ColorSpace"] = types.Name("DeviceGray")
	case color.CMYKModel:
		// Adobe writes CMYK JPEGs inverted.
		dict["ColorSpace"] = types.Name("DeviceCMYK")
		dict["Decode"] = types.Array{
			types.Integer(1), types.Integer(0), types.Integer(1), types.Integer(0),
			types.Integer(1), types.Integer(0), types.Integer(1), types.Integer(0),
		}
	default:
		dict["ColorSpace"] = types.Name("DeviceRGB")
	}

	ref, err := b.ctx.IndRefForNewObject(types.StreamDict{
		Dict:           dict,
		StreamLength:   &l,
		FilterPipeline: []types.PDFFilter{{Name: "DCTDecode"}},
		Raw:            data,
	})
	if err != nil {
		return nil, err
	}
	return &XObject{
		owner: b,
		ref:   *ref,
		name:  b.newName(),
		bbox:  Rect{W: float64(cfg.Width), H: float64(cfg.Height)},
	}, nil
}

// EmbedImage embeds a decoded raster losslessly as Flate-compressed RGB.
// Transparency is preserved through a soft mask.
func (b *Builder) EmbedImage(img image.Image) (*XObject, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	rgb := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	opaque := true
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rgb = append(rgb, c.R, c.G, c.B)
			alpha = append(alpha, c.A)
			if c.A != 0xff {
				opaque = false
			}
		}
	}

	imageDict := func(cs string) types.Dict {
		return types.Dict{
			"Type":             types.Name("XObject"),
			"Subtype":          types.Name("Image"),
			"Width":            types.Integer(w),
			"Height":           types.Integer(h),
			"ColorSpace":       types.Name(cs),
			"BitsPerComponent": types.Integer(8),
		}
	}
	dict := imageDict("DeviceRGB")
	if !opaque {
		mask, err := b.addStream(imageDict("DeviceGray"), alpha)
		if err != nil {
			return nil, err
		}
		dict["SMask"] = mask
	}
	ref, err := b.addStream(dict, rgb)
	if err != nil {
		return nil, err
	}
	return &XObject{
		owner: b,
		ref:   ref,
		name:  b.newName(),
		bbox:  Rect{W: float64(w), H: float64(h)},
	}, nil
}
