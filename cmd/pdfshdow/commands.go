package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"

	pdfshdow "github.com/wang824892540/PDFShdow"
	"github.com/wang824892540/PDFShdow/internal/yamlutil"
)

// runResize resizes every page of one document.
func runResize(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseResizeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return argsError("resize", "one source", len(pos))
	}
	s, err := newSession(&f.common, env)
	if err != nil {
		return withHint(err, nil)
	}

	return runTask(ctx, s, pdfshdow.TaskRequest{
		Recipe: pdfshdow.RecipeResize,
		Resize: &pdfshdow.ResizeParams{
			SourcePath: pos[0],
			Width:      f.width,
			Height:     f.height,
			Output:     s.resolveOutput(f.output, baseName(pos[0])+"-resized"),
		},
	})
}

// runStacked stacks a repeating source above a static one.
func runStacked(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseStackedFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return argsError("stacked", "a static and a repeating source", len(pos))
	}
	s, err := newSession(&f.common, env)
	if err != nil {
		return withHint(err, nil)
	}

	var layout *pdfshdow.Layout
	if f.layout != "" {
		if layout, err = readLayout(f.layout); err != nil {
			return err
		}
	}
	w, h := s.labelSize(f.label)
	return runTask(ctx, s, pdfshdow.TaskRequest{
		Recipe: pdfshdow.RecipeStacked,
		Stacked: &pdfshdow.StackedParams{
			StaticPath:    pos[0],
			RepeatingPath: pos[1],
			WidthMM:       w,
			HeightMM:      h,
			Layout:        layout,
			Output:        s.resolveOutput(f.output, baseName(pos[1])+"-label"),
		},
	})
}

// runOverlay places two or three sources by a layout file.
func runOverlay(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseOverlayFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) != 0 {
		return argsError("overlay", "sources through --source", len(pos))
	}
	if f.layout == "" {
		return fmt.Errorf("%w: overlay requires --layout", ErrUsage)
	}
	sources, err := parseSources(f.sources, f.repeating)
	if err != nil {
		return err
	}
	s, err := newSession(&f.common, env)
	if err != nil {
		return withHint(err, nil)
	}
	layout, err := readLayout(f.layout)
	if err != nil {
		return err
	}

	defaultName := "overlay"
	if len(sources) > 0 {
		defaultName = baseName(sources[0].Path) + "-overlay"
	}
	w, h := s.labelSize(f.label)
	return runTask(ctx, s, pdfshdow.TaskRequest{
		Recipe: pdfshdow.RecipeOverlay,
		Overlay: &pdfshdow.OverlayParams{
			Sources:  sources,
			Layout:   *layout,
			WidthMM:  w,
			HeightMM: h,
			Output:   s.resolveOutput(f.output, defaultName),
		},
	})
}

// parseSources turns id=path values into overlay sources.
func parseSources(values []string, repeating string) ([]pdfshdow.OverlaySource, error) {
	sources := make([]pdfshdow.OverlaySource, 0, len(values))
	found := repeating == ""
	for _, v := range values {
		id, path, ok := strings.Cut(v, "=")
		if !ok || id == "" || path == "" {
			return nil, fmt.Errorf("%w: %q (want id=path)", ErrSourceFlag, v)
		}
		src := pdfshdow.OverlaySource{ID: id, Path: path, Repeating: id == repeating}
		found = found || src.Repeating
		sources = append(sources, src)
	}
	if !found {
		return nil, fmt.Errorf("%w: --repeat %q matches no source", ErrSourceFlag, repeating)
	}
	return sources, nil
}

// runMerge composes two static sources and a repeating one.
func runMerge(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseMergeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) != 3 {
		return argsError("merge", "two static sources and a repeating source", len(pos))
	}
	if f.layout == "" {
		return fmt.Errorf("%w: merge requires --layout", ErrUsage)
	}
	s, err := newSession(&f.common, env)
	if err != nil {
		return withHint(err, nil)
	}
	layout, err := readLayout(f.layout)
	if err != nil {
		return err
	}

	w, h := s.labelSize(f.label)
	return runTask(ctx, s, pdfshdow.TaskRequest{
		Recipe: pdfshdow.RecipeMultiMerge,
		MultiMerge: &pdfshdow.MultiMergeParams{
			Paths:    pos,
			Layout:   *layout,
			WidthMM:  w,
			HeightMM: h,
			Output:   s.resolveOutput(f.output, baseName(pos[2])+"-merged"),
		},
	})
}

// runPDF2Img renders every page into a zip of JPEGs.
func runPDF2Img(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parsePDF2ImgFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return argsError("pdf2img", "one source", len(pos))
	}
	s, err := newSession(&f.common, env)
	if err != nil {
		return withHint(err, nil)
	}

	// Page progress is only observable when pages render in this process.
	var extra []pdfshdow.Option
	if s.cfg.InlineIsolation() && !s.quiet {
		var bar *progressbar.ProgressBar
		extra = append(extra, pdfshdow.WithProgress(func(done, total int) {
			if bar == nil {
				bar = newProgressBar(env.Stderr, total, "pages")
			}
			_ = bar.Set(done)
		}))
	}

	return runTask(ctx, s, pdfshdow.TaskRequest{
		Recipe: pdfshdow.RecipePDFToImages,
		PDFToImages: &pdfshdow.PDFToImagesParams{
			SourcePath: pos[0],
			DPI:        f.dpi,
			Quality:    f.quality,
			Output:     s.resolveOutput(f.output, baseName(pos[0])),
		},
	}, extra...)
}

// runImg2PDF places images on pages.
func runImg2PDF(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseImg2PDFFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return argsError("img2pdf", "at least one image", 0)
	}
	s, err := newSession(&f.common, env)
	if err != nil {
		return withHint(err, nil)
	}

	pageSize := f.pageSize
	if pageSize == "" {
		pageSize = s.cfg.Images.PageSize
	}
	scale := f.scaleMode
	if scale == "" {
		scale = s.cfg.Images.ScaleMode
	}
	return runTask(ctx, s, pdfshdow.TaskRequest{
		Recipe: pdfshdow.RecipeImagesToPDF,
		ImagesToPDF: &pdfshdow.ImagesToPDFParams{
			ImagePaths:  pos,
			PageSize:    pageSize,
			WidthMM:     f.label.widthMM,
			HeightMM:    f.label.heightMM,
			Orientation: f.orientation,
			ScaleMode:   scale,
			Quality:     f.quality,
			MaxPixels:   f.maxPixels,
			Output:      s.resolveOutput(f.output, baseName(pos[0])),
		},
	})
}

// readLayout loads a free layout from YAML.
func readLayout(path string) (*pdfshdow.Layout, error) {
	var layout pdfshdow.Layout
	if err := yamlutil.ReadFile(path, &layout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadLayout, err)
	}
	return &layout, nil
}
