package pdfshdow

import (
	"fmt"
	"strings"
)

// Page size presets.
const (
	PageSizeA3        = "a3"
	PageSizeA4        = "a4"
	PageSizeA5        = "a5"
	PageSizeLetter    = "letter"
	PageSizeLegal     = "legal"
	PageSizeTabloid   = "tabloid"
	PageSizeExecutive = "executive"
	PageSizeLabel     = "label"
	PageSizeCustom    = "custom"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Scale modes for placing an image on its page.
const (
	ScaleAspectFit = "aspectfit"
	ScaleStretch   = "stretch"
)

// pagePresets are portrait sizes in points.
var pagePresets = map[string]Size{
	PageSizeA3:        {Width: 841.89, Height: 1190.55},
	PageSizeA4:        {Width: 595.28, Height: 841.89},
	PageSizeA5:        {Width: 419.53, Height: 595.28},
	PageSizeLetter:    {Width: 612, Height: 792},
	PageSizeLegal:     {Width: 612, Height: 1008},
	PageSizeTabloid:   {Width: 792, Height: 1224},
	PageSizeExecutive: {Width: 521.86, Height: 756},
	PageSizeLabel:     {Width: LabelWidthMM * MMToPt, Height: LabelHeightMM * MMToPt},
}

// pageSizeAliases maps alternate spellings onto preset names.
var pageSizeAliases = map[string]string{
	"shein": PageSizeLabel,
}

// PageSizeNames returns the accepted preset names.
func PageSizeNames() []string {
	return []string{
		PageSizeA3, PageSizeA4, PageSizeA5, PageSizeLetter, PageSizeLegal,
		PageSizeTabloid, PageSizeExecutive, PageSizeLabel, PageSizeCustom,
	}
}

// pageSize resolves the preset, custom millimeters and orientation into
// page dimensions in points. An empty preset means A4.
func (p *ImagesToPDFParams) pageSize() (Size, error) {
	name := strings.ToLower(strings.TrimSpace(p.PageSize))
	if alias, ok := pageSizeAliases[name]; ok {
		name = alias
	}

	var size Size
	switch name {
	case "":
		size = pagePresets[PageSizeA4]
	case PageSizeCustom:
		if !positive(p.WidthMM, p.HeightMM) {
			return Size{}, fmt.Errorf("%w: custom size %vx%v mm", ErrNonPositiveDimension, p.WidthMM, p.HeightMM)
		}
		size = Size{Width: MMToUnits(p.WidthMM), Height: MMToUnits(p.HeightMM)}
	default:
		preset, ok := pagePresets[name]
		if !ok {
			return Size{}, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidPageSize, p.PageSize, strings.Join(PageSizeNames(), ", "))
		}
		size = preset
	}

	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		size.Width, size.Height = size.Height, size.Width
	}
	return size, nil
}

func isValidOrientation(o string) bool {
	switch strings.ToLower(o) {
	case "", OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

func isValidScaleMode(m string) bool {
	switch strings.ToLower(m) {
	case "", ScaleAspectFit, ScaleStretch:
		return true
	}
	return false
}
