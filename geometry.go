package pdfshdow

import (
	"fmt"
	"math"
)

// MMToPt converts millimeters to PDF units (points).
const MMToPt = 2.83465

// MMToUnits converts a length in millimeters to output units.
func MMToUnits(mm float64) float64 {
	return mm * MMToPt
}

// Size is a width and height in output units.
type Size struct {
	Width  float64
	Height float64
}

// Placement is a rectangle in output units, origin at the bottom-left.
type Placement struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Fit describes how a source rectangle is scaled and centered into a
// destination rectangle. Offsets are relative to the destination origin.
type Fit struct {
	Scale   float64
	DrawW   float64
	DrawH   float64
	OffsetX float64
	OffsetY float64
}

// EditorRect is a rectangle in editor coordinates (Y grows downward).
type EditorRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func positive(vals ...float64) bool {
	for _, v := range vals {
		if !(v > 0) || math.IsInf(v, 1) {
			return false
		}
	}
	return true
}

// AspectFit scales src uniformly to the largest size that fits dst and
// centers it.
func AspectFit(srcW, srcH, dstW, dstH float64) (Fit, error) {
	if !positive(srcW, srcH, dstW, dstH) {
		return Fit{}, fmt.Errorf("%w: aspect fit of %vx%v into %vx%v", ErrNonPositiveDimension, srcW, srcH, dstW, dstH)
	}
	scale := math.Min(dstW/srcW, dstH/srcH)
	drawW := srcW * scale
	drawH := srcH * scale
	return Fit{
		Scale:   scale,
		DrawW:   drawW,
		DrawH:   drawH,
		OffsetX: (dstW - drawW) / 2,
		OffsetY: (dstH - drawH) / 2,
	}, nil
}

// Stretch fills dst exactly, ignoring the source aspect ratio.
func Stretch(dstW, dstH float64) Fit {
	return Fit{Scale: 1, DrawW: dstW, DrawH: dstH}
}

// Place positions f inside a destination whose origin is (x, y).
func (f Fit) Place(x, y float64) Placement {
	return Placement{X: x + f.OffsetX, Y: y + f.OffsetY, Width: f.DrawW, Height: f.DrawH}
}

// FitInto aspect-fits src into region and returns the absolute placement.
func FitInto(region Placement, src Size) (Placement, error) {
	f, err := AspectFit(src.Width, src.Height, region.Width, region.Height)
	if err != nil {
		return Placement{}, err
	}
	return f.Place(region.X, region.Y), nil
}

// Halves returns the top and bottom bands of a dstW x dstH page.
func Halves(dstW, dstH float64) (top, bottom Placement) {
	half := dstH / 2
	return Placement{X: 0, Y: half, Width: dstW, Height: half},
		Placement{X: 0, Y: 0, Width: dstW, Height: half}
}

// StackedHalves aspect-fits top into the upper band and bottom into the lower
// band of the page. Both placements are in absolute page coordinates.
func StackedHalves(dstW, dstH float64, top, bottom Size) (topPl, bottomPl Placement, err error) {
	if !positive(dstW, dstH) {
		return Placement{}, Placement{}, fmt.Errorf("%w: page %vx%v", ErrNonPositiveDimension, dstW, dstH)
	}
	topBand, bottomBand := Halves(dstW, dstH)
	if topPl, err = FitInto(topBand, top); err != nil {
		return Placement{}, Placement{}, err
	}
	if bottomPl, err = FitInto(bottomBand, bottom); err != nil {
		return Placement{}, Placement{}, err
	}
	return topPl, bottomPl, nil
}

// FreeLayoutTransform maps an editor rectangle onto an outW x outH page,
// flipping the Y axis.
func FreeLayoutTransform(r EditorRect, editorW, editorH, outW, outH float64) (Placement, error) {
	if !positive(editorW, editorH, outW, outH) {
		return Placement{}, fmt.Errorf("%w: editor %vx%v, output %vx%v", ErrNonPositiveDimension, editorW, editorH, outW, outH)
	}
	scaleX := outW / editorW
	scaleY := outH / editorH
	height := r.Height * scaleY
	return Placement{
		X:      r.X * scaleX,
		Y:      outH - r.Y*scaleY - height,
		Width:  r.Width * scaleX,
		Height: height,
	}, nil
}
