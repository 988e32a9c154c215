package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across task commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	isolation string
	workers   int
	logLevel  string
	logFormat string
}

// labelFlags holds the output label size.
type labelFlags struct {
	widthMM  float64
	heightMM float64
}

type resizeFlags struct {
	common commonFlags
	output string
	width  float64
	height float64
}

type stackedFlags struct {
	common commonFlags
	output string
	label  labelFlags
	layout string
}

type overlayFlags struct {
	common    commonFlags
	output    string
	label     labelFlags
	layout    string
	sources   []string
	repeating string
}

type mergeFlags struct {
	common commonFlags
	output string
	label  labelFlags
	layout string
}

type pdf2imgFlags struct {
	common  commonFlags
	output  string
	dpi     int
	quality float64
}

type img2pdfFlags struct {
	common      commonFlags
	output      string
	pageSize    string
	label       labelFlags
	orientation string
	scaleMode   string
	quality     float64
	maxPixels   int
}

type batchFlags struct {
	common commonFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show diagnostic logs")
	fs.StringVar(&f.isolation, "isolation", "", "task isolation: process, inline")
	fs.IntVarP(&f.workers, "workers", "w", 0, "page renderers for pdf2img (0 = auto)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
}

// addLabelFlags adds output label size flags to a FlagSet.
func addLabelFlags(fs *flag.FlagSet, f *labelFlags) {
	fs.Float64Var(&f.widthMM, "width-mm", 0, "output width in millimeters")
	fs.Float64Var(&f.heightMM, "height-mm", 0, "output height in millimeters")
}

func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

func parseResizeFlags(args []string, stderr io.Writer) (*resizeFlags, []string, error) {
	fs := newFlagSet("resize", printResizeUsage, stderr)
	f := &resizeFlags{}
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.Float64Var(&f.width, "width", 0, "page width in points")
	fs.Float64Var(&f.height, "height", 0, "page height in points")
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

func parseStackedFlags(args []string, stderr io.Writer) (*stackedFlags, []string, error) {
	fs := newFlagSet("stacked", printStackedUsage, stderr)
	f := &stackedFlags{}
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.layout, "layout", "l", "", "free layout YAML file")
	addLabelFlags(fs, &f.label)
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

func parseOverlayFlags(args []string, stderr io.Writer) (*overlayFlags, []string, error) {
	fs := newFlagSet("overlay", printOverlayUsage, stderr)
	f := &overlayFlags{}
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.layout, "layout", "l", "", "free layout YAML file")
	fs.StringArrayVarP(&f.sources, "source", "s", nil, "source as id=path (repeatable)")
	fs.StringVarP(&f.repeating, "repeat", "r", "", "id of the repeating source")
	addLabelFlags(fs, &f.label)
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

func parseMergeFlags(args []string, stderr io.Writer) (*mergeFlags, []string, error) {
	fs := newFlagSet("merge", printMergeUsage, stderr)
	f := &mergeFlags{}
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.layout, "layout", "l", "", "free layout YAML file")
	addLabelFlags(fs, &f.label)
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

func parsePDF2ImgFlags(args []string, stderr io.Writer) (*pdf2imgFlags, []string, error) {
	fs := newFlagSet("pdf2img", printPDF2ImgUsage, stderr)
	f := &pdf2imgFlags{}
	fs.StringVarP(&f.output, "output", "o", "", "output archive or directory")
	fs.IntVar(&f.dpi, "dpi", 0, "render resolution (0 = config or 150)")
	fs.Float64Var(&f.quality, "quality", 0, "JPEG quality 0-1 (0 = config or 0.9)")
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

func parseImg2PDFFlags(args []string, stderr io.Writer) (*img2pdfFlags, []string, error) {
	fs := newFlagSet("img2pdf", printImg2PDFUsage, stderr)
	f := &img2pdfFlags{}
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size preset or custom")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.StringVar(&f.scaleMode, "scale", "", "scale mode: aspectfit, stretch")
	fs.Float64Var(&f.quality, "quality", 0, "JPEG quality 0-1 (0 = config or 0.9)")
	fs.IntVar(&f.maxPixels, "max-pixels", 0, "downscale images above this many pixels")
	addLabelFlags(fs, &f.label)
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

func parseBatchFlags(args []string, stderr io.Writer) (*batchFlags, []string, error) {
	fs := newFlagSet("batch", printBatchUsage, stderr)
	f := &batchFlags{}
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}
