package pdf

import "errors"

// Sentinel errors for reading and building documents.
var (
	ErrNotPDF          = errors.New("not a PDF document")
	ErrEncrypted       = errors.New("encrypted documents are not supported")
	ErrMalformed       = errors.New("malformed document")
	ErrPageOutOfRange  = errors.New("page index out of range")
	ErrNoPages         = errors.New("document has no pages")
	ErrFinalized       = errors.New("document already finalized")
	ErrInvalidPageSize = errors.New("page dimensions must be positive")
	ErrForeignPage     = errors.New("page does not belong to this document")
	ErrInvalidImage    = errors.New("invalid image data")
)
