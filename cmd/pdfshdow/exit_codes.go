package main

import (
	"errors"
	"os"

	pdfshdow "github.com/wang824892540/PDFShdow"
	"github.com/wang824892540/PDFShdow/internal/config"
)

// Exit codes for the pdfshdow CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Task succeeded
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or request
	ExitIO      = 3 // Output could not be written, input not found
	ExitInput   = 4 // Source or composition failure
	ExitWorker  = 5 // Worker crashed or was terminated
)

// exitCodeFor returns the appropriate exit code for an error.
// Failed task results are classified by their kind; other errors use
// errors.Is, so callers must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var taskErr *pdfshdow.TaskError
	if errors.As(err, &taskErr) {
		switch taskErr.Kind {
		case pdfshdow.KindValidation:
			return ExitUsage
		case pdfshdow.KindIO:
			return ExitIO
		case pdfshdow.KindSource, pdfshdow.KindComposition:
			return ExitInput
		case pdfshdow.KindWorker:
			return ExitWorker
		}
		return ExitGeneral
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrSourceFlag) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, ErrReadLayout) ||
		errors.Is(err, ErrReadManifest) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	if errors.Is(err, ErrBatchFailed) {
		return ExitInput
	}

	return ExitGeneral
}
