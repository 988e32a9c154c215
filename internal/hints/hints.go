// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/wang824892540/PDFShdow/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForWorkerFault returns hints for a worker that died without reporting.
// In containers the usual cause is the memory limit.
func ForWorkerFault() string {
	var hints []string

	if IsInContainer() {
		hints = append(hints, "raise the container memory limit")
	}
	if os.Getenv("PDFSHDOW_ISOLATION") != "inline" {
		hints = append(hints, "rerun with --isolation inline to see the failure in-process")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/pdfshdow/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/pdfshdow") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnsupportedSource lists the input formats sources may use.
func ForUnsupportedSource() string {
	return format("supported inputs: PDF, JPEG, PNG, GIF, WebP, BMP, TIFF")
}

// ForPageSize returns hints for unknown page size presets.
func ForPageSize(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForLayout reminds which element IDs a recipe's layout must contain.
func ForLayout(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return format("layout needs elements with ids: " + strings.Join(ids, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
