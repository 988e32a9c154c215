package pdfshdow

import (
	"errors"
	"fmt"
	"math"

	"github.com/wang824892540/PDFShdow/internal/fileutil"
)

// Recipe names a composition recipe.
type Recipe string

// Supported recipes.
const (
	RecipeResize      Recipe = "resize"
	RecipeStacked     Recipe = "stacked-label"
	RecipeOverlay     Recipe = "overlay-label"
	RecipeMultiMerge  Recipe = "multi-merge"
	RecipePDFToImages Recipe = "pdf-to-images"
	RecipeImagesToPDF Recipe = "image-to-pdf"
)

// Recipes lists every supported recipe in documentation order.
var Recipes = []Recipe{
	RecipeResize, RecipeStacked, RecipeOverlay, RecipeMultiMerge, RecipePDFToImages, RecipeImagesToPDF,
}

// Element IDs bound to fixed roles.
const (
	StackedStaticID    = "stacked-static"
	StackedRepeatingID = "stacked-repeating"
)

// MultiMergeIDs are bound positionally to MultiMergeParams.Paths: two static
// sources followed by the repeating one.
var MultiMergeIDs = [3]string{"multi-merge-pdf-1", "multi-merge-pdf-2", "multi-merge-pdf-3"}

// Defaults.
const (
	DefaultDPI         = 150
	MaxDPI             = 1200
	DefaultQuality     = 0.9
	LabelWidthMM       = 70.0
	LabelHeightMM      = 60.0
	minOverlaySources  = 2
	maxOverlaySources  = 3
	multiMergeSources  = 3
	pdfExtension       = ".pdf"
	archiveExtension   = ".zip"
	maxElementIDLength = 128
)

// LayoutElement is one rectangle of a free layout, in editor coordinates.
type LayoutElement struct {
	ID     string  `json:"id" yaml:"id"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect returns the element's rectangle.
func (e LayoutElement) Rect() EditorRect {
	return EditorRect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// Layout is a free layout drawn on an editor canvas of EditorWidth x
// EditorHeight. Elements are matched to sources by ID.
type Layout struct {
	EditorWidth  float64         `json:"editorWidth" yaml:"editorWidth"`
	EditorHeight float64         `json:"editorHeight" yaml:"editorHeight"`
	Elements     []LayoutElement `json:"elements" yaml:"elements"`
}

// Validate checks the canvas and every element. Element positions are not
// bounded: elements may extend past the canvas.
func (l *Layout) Validate() error {
	if l == nil {
		return fmt.Errorf("%w: layout is required", ErrInvalidLayout)
	}
	if !positive(l.EditorWidth, l.EditorHeight) {
		return fmt.Errorf("%w: editor canvas %vx%v", ErrNonPositiveDimension, l.EditorWidth, l.EditorHeight)
	}
	seen := make(map[string]bool, len(l.Elements))
	for _, e := range l.Elements {
		if e.ID == "" {
			return fmt.Errorf("%w: element without id", ErrInvalidLayout)
		}
		if len(e.ID) > maxElementIDLength {
			return fmt.Errorf("%w: element id longer than %d characters", ErrInvalidLayout, maxElementIDLength)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: duplicate element %q", ErrInvalidLayout, e.ID)
		}
		seen[e.ID] = true
		if !positive(e.Width, e.Height) {
			return fmt.Errorf("%w: element %q is %vx%v", ErrNonPositiveDimension, e.ID, e.Width, e.Height)
		}
	}
	return nil
}

// Find returns the element with the given id.
func (l *Layout) Find(id string) (LayoutElement, bool) {
	for _, e := range l.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return LayoutElement{}, false
}

// require reports the first id with no element.
func (l *Layout) require(ids ...string) error {
	for _, id := range ids {
		if _, ok := l.Find(id); !ok {
			return fmt.Errorf("%w %q", ErrMissingLayout, id)
		}
	}
	return nil
}

// Output names where a recipe writes its result.
type Output struct {
	Name string `json:"outputName" yaml:"output"`
	Dir  string `json:"outputDir,omitempty" yaml:"outputDir"`
}

// ResizeParams resizes every page of a document to Width x Height units.
type ResizeParams struct {
	SourcePath string  `json:"sourcePath" yaml:"source"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
	Output     `yaml:",inline"`
}

// Validate checks the parameters without touching the filesystem.
func (p *ResizeParams) Validate() error {
	if p.SourcePath == "" {
		return fmt.Errorf("%w: source", ErrMissingSource)
	}
	if p.PassThrough() {
		return nil
	}
	if !positive(p.Width, p.Height) {
		return fmt.Errorf("%w: target %vx%v", ErrNonPositiveDimension, p.Width, p.Height)
	}
	return nil
}

// PassThrough reports whether no target size was given, in which case every
// page is copied at its own size.
func (p *ResizeParams) PassThrough() bool {
	return p.Width == 0 && p.Height == 0
}

// StackedParams stacks the current page of a repeating source above the
// first page of a static source, one output page per repeating page. With a
// Layout, elements StackedStaticID and StackedRepeatingID are placed freely.
type StackedParams struct {
	StaticPath    string  `json:"staticPath" yaml:"static"`
	RepeatingPath string  `json:"repeatingPath" yaml:"repeating"`
	WidthMM       float64 `json:"widthMM" yaml:"widthMM"`
	HeightMM      float64 `json:"heightMM" yaml:"heightMM"`
	Layout        *Layout `json:"layout,omitempty" yaml:"layout"`
	Output        `yaml:",inline"`
}

// Validate checks the parameters without touching the filesystem.
func (p *StackedParams) Validate() error {
	if p.StaticPath == "" {
		return fmt.Errorf("%w: static source", ErrMissingSource)
	}
	if p.RepeatingPath == "" {
		return fmt.Errorf("%w: repeating source", ErrMissingSource)
	}
	if !positive(p.WidthMM, p.HeightMM) {
		return fmt.Errorf("%w: output %vx%v mm", ErrNonPositiveDimension, p.WidthMM, p.HeightMM)
	}
	if p.Layout != nil {
		if err := p.Layout.Validate(); err != nil {
			return err
		}
		return p.Layout.require(StackedStaticID, StackedRepeatingID)
	}
	return nil
}

// OverlaySource binds a source file to a layout element.
type OverlaySource struct {
	ID        string `json:"id" yaml:"id"`
	Path      string `json:"path" yaml:"path"`
	Repeating bool   `json:"repeating,omitempty" yaml:"repeating"`
}

// OverlayParams places two or three sources with a free layout. At most one
// source repeats; the output has one page per page of that source.
type OverlayParams struct {
	Sources  []OverlaySource `json:"sources" yaml:"sources"`
	Layout   Layout          `json:"layout" yaml:"layout"`
	WidthMM  float64         `json:"widthMM" yaml:"widthMM"`
	HeightMM float64         `json:"heightMM" yaml:"heightMM"`
	Output   `yaml:",inline"`
}

// Validate checks the parameters without touching the filesystem.
func (p *OverlayParams) Validate() error {
	if n := len(p.Sources); n < minOverlaySources || n > maxOverlaySources {
		return fmt.Errorf("%w: got %d, want %d to %d", ErrSourceCount, n, minOverlaySources, maxOverlaySources)
	}
	if !positive(p.WidthMM, p.HeightMM) {
		return fmt.Errorf("%w: output %vx%v mm", ErrNonPositiveDimension, p.WidthMM, p.HeightMM)
	}
	if err := p.Layout.Validate(); err != nil {
		return err
	}
	repeating := 0
	seen := make(map[string]bool, len(p.Sources))
	for _, s := range p.Sources {
		if s.ID == "" {
			return fmt.Errorf("%w: source without id", ErrInvalidLayout)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate source id %q", ErrInvalidLayout, s.ID)
		}
		seen[s.ID] = true
		if s.Path == "" {
			return fmt.Errorf("%w: %q", ErrMissingSource, s.ID)
		}
		if s.Repeating {
			repeating++
		}
		if err := p.Layout.require(s.ID); err != nil {
			return err
		}
	}
	if repeating > 1 {
		return fmt.Errorf("%w: %d marked repeating", ErrTooManyRepeating, repeating)
	}
	return nil
}

// MultiMergeParams composes two static sources and one repeating source,
// bound in that order to MultiMergeIDs.
type MultiMergeParams struct {
	Paths    []string `json:"paths" yaml:"paths"`
	Layout   Layout   `json:"layout" yaml:"layout"`
	WidthMM  float64  `json:"widthMM" yaml:"widthMM"`
	HeightMM float64  `json:"heightMM" yaml:"heightMM"`
	Output   `yaml:",inline"`
}

// Validate checks the parameters without touching the filesystem.
func (p *MultiMergeParams) Validate() error {
	if len(p.Paths) != multiMergeSources {
		return fmt.Errorf("%w: got %d, want %d", ErrSourceCount, len(p.Paths), multiMergeSources)
	}
	for i, path := range p.Paths {
		if path == "" {
			return fmt.Errorf("%w: %q", ErrMissingSource, MultiMergeIDs[i])
		}
	}
	if !positive(p.WidthMM, p.HeightMM) {
		return fmt.Errorf("%w: output %vx%v mm", ErrNonPositiveDimension, p.WidthMM, p.HeightMM)
	}
	if err := p.Layout.Validate(); err != nil {
		return err
	}
	return p.Layout.require(MultiMergeIDs[:]...)
}

// PDFToImagesParams rasterizes every page into a JPEG inside a zip archive.
type PDFToImagesParams struct {
	SourcePath string  `json:"sourcePath" yaml:"source"`
	DPI        int     `json:"dpi,omitempty" yaml:"dpi"`
	Quality    float64 `json:"quality,omitempty" yaml:"quality"`
	Output     `yaml:",inline"`
}

// Validate checks the parameters without touching the filesystem. Zero DPI
// and quality select the defaults.
func (p *PDFToImagesParams) Validate() error {
	if p.SourcePath == "" {
		return fmt.Errorf("%w: source", ErrMissingSource)
	}
	if p.DPI < 0 || p.DPI > MaxDPI {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidDPI, p.DPI, MaxDPI)
	}
	return validateQuality(p.Quality)
}

// ImagesToPDFParams places each image on its own page.
type ImagesToPDFParams struct {
	ImagePaths  []string `json:"imagePaths" yaml:"images"`
	PageSize    string   `json:"pageSize,omitempty" yaml:"pageSize"`
	WidthMM     float64  `json:"widthMM,omitempty" yaml:"widthMM"`
	HeightMM    float64  `json:"heightMM,omitempty" yaml:"heightMM"`
	Orientation string   `json:"orientation,omitempty" yaml:"orientation"`
	ScaleMode   string   `json:"scaleMode,omitempty" yaml:"scaleMode"`
	Quality     float64  `json:"quality,omitempty" yaml:"quality"`
	MaxPixels   int      `json:"maxPixels,omitempty" yaml:"maxPixels"`
	Output      `yaml:",inline"`
}

// Validate checks the parameters without touching the filesystem.
func (p *ImagesToPDFParams) Validate() error {
	if len(p.ImagePaths) == 0 {
		return fmt.Errorf("%w: no images", ErrMissingSource)
	}
	for i, path := range p.ImagePaths {
		if path == "" {
			return fmt.Errorf("%w: image %d", ErrMissingSource, i+1)
		}
	}
	if _, err := p.pageSize(); err != nil {
		return err
	}
	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if !isValidScaleMode(p.ScaleMode) {
		return fmt.Errorf("%w: %q", ErrInvalidScaleMode, p.ScaleMode)
	}
	if p.MaxPixels < 0 {
		return fmt.Errorf("%w: max pixels %d", ErrNonPositiveDimension, p.MaxPixels)
	}
	return validateQuality(p.Quality)
}

func validateQuality(q float64) error {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return fmt.Errorf("%w: %v", ErrInvalidQuality, q)
	}
	return nil
}

// TaskRequest is one unit of work: a recipe and its parameter block.
// Exactly the block matching Recipe must be set.
type TaskRequest struct {
	Recipe      Recipe             `json:"recipe" yaml:"recipe"`
	Resize      *ResizeParams      `json:"resize,omitempty" yaml:"resize"`
	Stacked     *StackedParams     `json:"stacked,omitempty" yaml:"stacked"`
	Overlay     *OverlayParams     `json:"overlay,omitempty" yaml:"overlay"`
	MultiMerge  *MultiMergeParams  `json:"multiMerge,omitempty" yaml:"multiMerge"`
	PDFToImages *PDFToImagesParams `json:"pdfToImages,omitempty" yaml:"pdfToImages"`
	ImagesToPDF *ImagesToPDFParams `json:"imagesToPdf,omitempty" yaml:"imagesToPdf"`
}

type validator interface {
	Validate() error
}

// params returns the block matching the recipe and how many blocks are set.
func (r *TaskRequest) params() (validator, *Output, int, error) {
	set := 0
	var v validator
	var out *Output
	pick := func(match bool, isSet bool, pv validator, po *Output) {
		if !isSet {
			return
		}
		set++
		if match {
			v, out = pv, po
		}
	}
	pick(r.Recipe == RecipeResize, r.Resize != nil, r.Resize, outputOf(r.Resize))
	pick(r.Recipe == RecipeStacked, r.Stacked != nil, r.Stacked, outputOf(r.Stacked))
	pick(r.Recipe == RecipeOverlay, r.Overlay != nil, r.Overlay, outputOf(r.Overlay))
	pick(r.Recipe == RecipeMultiMerge, r.MultiMerge != nil, r.MultiMerge, outputOf(r.MultiMerge))
	pick(r.Recipe == RecipePDFToImages, r.PDFToImages != nil, r.PDFToImages, outputOf(r.PDFToImages))
	pick(r.Recipe == RecipeImagesToPDF, r.ImagesToPDF != nil, r.ImagesToPDF, outputOf(r.ImagesToPDF))

	switch r.Recipe {
	case RecipeResize, RecipeStacked, RecipeOverlay, RecipeMultiMerge, RecipePDFToImages, RecipeImagesToPDF:
	default:
		return nil, nil, set, fmt.Errorf("%w: %q", ErrUnknownRecipe, r.Recipe)
	}
	if v == nil {
		return nil, nil, set, fmt.Errorf("%w: %s", ErrMissingParams, r.Recipe)
	}
	return v, out, set, nil
}

func outputOf(p any) *Output {
	switch v := p.(type) {
	case *ResizeParams:
		if v != nil {
			return &v.Output
		}
	case *StackedParams:
		if v != nil {
			return &v.Output
		}
	case *OverlayParams:
		if v != nil {
			return &v.Output
		}
	case *MultiMergeParams:
		if v != nil {
			return &v.Output
		}
	case *PDFToImagesParams:
		if v != nil {
			return &v.Output
		}
	case *ImagesToPDFParams:
		if v != nil {
			return &v.Output
		}
	}
	return nil
}

// Validate checks the request shape and its parameters. It performs no I/O.
func (r *TaskRequest) Validate() error {
	v, out, set, err := r.params()
	if err != nil {
		return err
	}
	if set > 1 {
		return fmt.Errorf("%w: %s request carries %d parameter blocks", ErrConflictingParams, r.Recipe, set)
	}
	if err := fileutil.ValidateOutputName(out.Name); err != nil {
		if errors.Is(err, fileutil.ErrOutputNameEmpty) {
			return ErrMissingOutputName
		}
		return fmt.Errorf("%w: %q", ErrInvalidOutputName, out.Name)
	}
	return v.Validate()
}

// TaskResult is the single outcome of a task.
type TaskResult struct {
	Success         bool      `json:"success"`
	Path            string    `json:"path,omitempty"`
	Error           string    `json:"error,omitempty"`
	Kind            ErrorKind `json:"kind,omitempty"`
	OutputFileSize  *int64    `json:"outputFileSize,omitempty"`
	OutputPageCount *int      `json:"outputPageCount,omitempty"`
	Warning         string    `json:"warning,omitempty"`
}

// Err returns nil for a successful result and a *TaskError otherwise.
func (r TaskResult) Err() error {
	if r.Success {
		return nil
	}
	return &TaskError{Kind: r.Kind, Message: r.Error}
}

// failure converts err into a failed result.
func failure(err error) TaskResult {
	return TaskResult{Error: err.Error(), Kind: KindOf(err)}
}

// firstSource is the path the output directory defaults to. The request
// must be valid.
func (r *TaskRequest) firstSource() string {
	switch r.Recipe {
	case RecipeResize:
		return r.Resize.SourcePath
	case RecipeStacked:
		return r.Stacked.StaticPath
	case RecipeOverlay:
		return r.Overlay.Sources[0].Path
	case RecipeMultiMerge:
		return r.MultiMerge.Paths[0]
	case RecipePDFToImages:
		return r.PDFToImages.SourcePath
	case RecipeImagesToPDF:
		return r.ImagesToPDF.ImagePaths[0]
	}
	return ""
}
