package main

import (
	"fmt"
	"io"
	"strings"

	pdfshdow "github.com/wang824892540/PDFShdow"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  resize     Resize every page of a PDF or image")
	fmt.Fprintln(w, "  stacked    Stack a repeating label above a static one")
	fmt.Fprintln(w, "  overlay    Place two or three sources by a layout")
	fmt.Fprintln(w, "  merge      Combine two static sources with a repeating one")
	fmt.Fprintln(w, "  pdf2img    Render pages into a zip of JPEG images")
	fmt.Fprintln(w, "  img2pdf    Place images on PDF pages")
	fmt.Fprintln(w, "  batch      Run the tasks of a YAML manifest")
	fmt.Fprintln(w, "  doctor     Check the rendering environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pdfshdow help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags every task command accepts.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --isolation <s>       Task isolation: process, inline")
	fmt.Fprintln(w, "  -w, --workers <n>         Page renderers for pdf2img (0 = auto)")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Log format: console, json")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show diagnostic logs")
}

func printLabelFlags(w io.Writer) {
	fmt.Fprintln(w, "Label:")
	fmt.Fprintf(w, "      --width-mm <f>        Output width in mm (default %g)\n", pdfshdow.LabelWidthMM)
	fmt.Fprintf(w, "      --height-mm <f>       Output height in mm (default %g)\n", pdfshdow.LabelHeightMM)
}

func printResizeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow resize <source> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resize every page of a PDF or image, keeping its aspect ratio.")
	fmt.Fprintln(w, "Without --width and --height, pages are copied at their own size.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "      --width <f>           Page width in points")
	fmt.Fprintln(w, "      --height <f>          Page height in points")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printStackedUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow stacked <static> <repeating> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stack each repeating page above the single static page.")
	fmt.Fprintln(w, "Without a layout the label is split into equal halves.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintf(w, "  -l, --layout <file>       Layout YAML with elements %q and %q\n",
		pdfshdow.StackedStaticID, pdfshdow.StackedRepeatingID)
	fmt.Fprintln(w)
	printLabelFlags(w)
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printOverlayUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow overlay --layout <file> --source <id=path>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Place two or three sources on one label per repeating page.")
	fmt.Fprintln(w, "Each source id must match a layout element.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -l, --layout <file>       Layout YAML (required)")
	fmt.Fprintln(w, "  -s, --source <id=path>    Source bound to a layout element (repeatable)")
	fmt.Fprintln(w, "  -r, --repeat <id>         Source that yields one page per output page")
	fmt.Fprintln(w)
	printLabelFlags(w)
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printMergeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow merge <static1> <static2> <repeating> --layout <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Combine two static sources with each page of a repeating one.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintf(w, "  -l, --layout <file>       Layout YAML with elements %s (required)\n",
		strings.Join(pdfshdow.MultiMergeIDs[:], ", "))
	fmt.Fprintln(w)
	printLabelFlags(w)
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printPDF2ImgUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow pdf2img <source> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every page to JPEG and store them in a zip archive.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output archive or directory")
	fmt.Fprintln(w, "      --dpi <n>             Render resolution (0 = config or 150)")
	fmt.Fprintln(w, "      --quality <f>         JPEG quality 0-1 (0 = config or 0.9)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printImg2PDFUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow img2pdf <image>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Place each image on its own PDF page.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintf(w, "  -p, --page-size <s>       Page size: %s\n", strings.Join(pdfshdow.PageSizeNames(), ", "))
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --scale <s>           Scale mode: aspectfit, stretch")
	fmt.Fprintln(w, "      --quality <f>         JPEG quality 0-1 (0 = config or 0.9)")
	fmt.Fprintln(w, "      --max-pixels <n>      Downscale images above this many pixels")
	fmt.Fprintln(w)
	printLabelFlags(w)
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow batch <manifest.yaml> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run every task of a manifest concurrently, each in its own worker.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manifest:")
	fmt.Fprintln(w, "  tasks:")
	fmt.Fprintln(w, "    - recipe: resize")
	fmt.Fprintln(w, "      resize: {source: in.pdf, width: 200, height: 200, output: small.pdf}")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshdow doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that pages can be rendered and output written.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "resize":
		printResizeUsage(env.Stdout)
	case "stacked":
		printStackedUsage(env.Stdout)
	case "overlay":
		printOverlayUsage(env.Stdout)
	case "merge":
		printMergeUsage(env.Stdout)
	case "pdf2img":
		printPDF2ImgUsage(env.Stdout)
	case "img2pdf":
		printImg2PDFUsage(env.Stdout)
	case "batch":
		printBatchUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: pdfshdow version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: pdfshdow help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
	return nil
}
