package pdfshdow

import (
	"errors"
	"io/fs"
)

// Sentinel errors for task validation and execution.
var (
	// Request validation errors.
	ErrUnknownRecipe        = errors.New("unknown recipe")
	ErrMissingParams        = errors.New("missing recipe parameters")
	ErrConflictingParams    = errors.New("parameters set for more than one recipe")
	ErrNonPositiveDimension = errors.New("dimensions must be positive")
	ErrMissingSource        = errors.New("missing source path")
	ErrSourceCount          = errors.New("wrong number of sources")
	ErrTooManyRepeating     = errors.New("at most one source may repeat")
	ErrInvalidLayout        = errors.New("invalid layout")
	ErrMissingOutputName    = errors.New("output name is required")
	ErrInvalidOutputName    = errors.New("invalid output name")
	ErrInvalidPageSize      = errors.New("invalid page size")
	ErrInvalidOrientation   = errors.New("invalid orientation")
	ErrInvalidScaleMode     = errors.New("invalid scale mode")
	ErrInvalidQuality       = errors.New("quality must be between 0 and 1")
	ErrInvalidDPI           = errors.New("invalid DPI")

	// Source errors.
	ErrUnreadableSource  = errors.New("cannot read source")
	ErrEmptySource       = errors.New("source has no pages")
	ErrUnsupportedSource = errors.New("unsupported source type")

	// Composition errors.
	ErrMissingLayout = errors.New("missing layout data for element")
	ErrCompose       = errors.New("composition failed")
	ErrRender        = errors.New("page rendering failed")

	// I/O errors.
	ErrWriteOutput = errors.New("failed to write output")

	// Worker faults.
	ErrWorkerFault        = errors.New("worker terminated without a result")
	ErrOrchestratorClosed = errors.New("orchestrator is closed")
)

// ErrorKind classifies a failed task so callers can react differently to a
// bad input and to a crashed worker.
type ErrorKind string

// Error kinds.
const (
	KindValidation  ErrorKind = "validation"
	KindSource      ErrorKind = "source"
	KindComposition ErrorKind = "composition"
	KindIO          ErrorKind = "io"
	KindWorker      ErrorKind = "worker"
)

// KindOf classifies err. Unrecognized errors are composition errors: they
// come from inside the document engine.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWorkerFault), errors.Is(err, ErrOrchestratorClosed):
		return KindWorker
	case errors.Is(err, ErrUnknownRecipe),
		errors.Is(err, ErrMissingParams),
		errors.Is(err, ErrConflictingParams),
		errors.Is(err, ErrNonPositiveDimension),
		errors.Is(err, ErrMissingSource),
		errors.Is(err, ErrSourceCount),
		errors.Is(err, ErrTooManyRepeating),
		errors.Is(err, ErrInvalidLayout),
		errors.Is(err, ErrMissingOutputName),
		errors.Is(err, ErrInvalidOutputName),
		errors.Is(err, ErrInvalidPageSize),
		errors.Is(err, ErrInvalidOrientation),
		errors.Is(err, ErrInvalidScaleMode),
		errors.Is(err, ErrInvalidQuality),
		errors.Is(err, ErrInvalidDPI):
		return KindValidation
	case errors.Is(err, ErrWriteOutput):
		return KindIO
	case errors.Is(err, ErrUnreadableSource),
		errors.Is(err, ErrEmptySource),
		errors.Is(err, ErrUnsupportedSource):
		return KindSource
	case errors.Is(err, ErrMissingLayout),
		errors.Is(err, ErrCompose),
		errors.Is(err, ErrRender):
		return KindComposition
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return KindIO
	}
	return KindComposition
}

// TaskError is the error form of a failed TaskResult.
type TaskError struct {
	Kind    ErrorKind
	Message string
}

func (e *TaskError) Error() string {
	return e.Message
}
