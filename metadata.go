package pdfshdow

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wang824892540/PDFShdow/internal/pdf"
)

// enrich adds file size and page count to a successful result. Failures
// leave the fields nil and set a warning; they never fail the task.
func (o *Orchestrator) enrich(res *TaskResult, log zerolog.Logger) {
	info, err := os.Stat(res.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", res.Path).Msg("reading output metadata")
		res.Warning = "output metadata unavailable: " + err.Error()
		return
	}
	size := info.Size()
	res.OutputFileSize = &size

	if !strings.EqualFold(filepath.Ext(res.Path), pdfExtension) {
		return
	}
	doc, err := pdf.Open(res.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", res.Path).Msg("counting output pages")
		res.Warning = "output page count unavailable: " + err.Error()
		return
	}
	n := doc.NumPages()
	res.OutputPageCount = &n
}
