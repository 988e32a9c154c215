package pdfshdow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wang824892540/PDFShdow/internal/fileutil"
	"github.com/wang824892540/PDFShdow/internal/pdf"
)

// pdfToImages splits the source into single-page PDFs in a private temp
// directory, renders them through the render pool and stores the JPEGs in
// a zip archive. The temp directory is removed on every path.
func (w *Worker) pdfToImages(ctx context.Context, p *PDFToImagesParams) (string, error) {
	src, err := loadSource("source", p.SourcePath)
	if err != nil {
		return "", err
	}
	if src.kind != sourcePDF {
		return "", fmt.Errorf("%w: source %s is not a PDF", ErrUnsupportedSource, p.SourcePath)
	}

	dir, cleanup, err := fileutil.TempDir(w.opts.tempDir, "pdfshdow-pages-")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			w.log.Warn().Err(err).Str("dir", dir).Msg("removing temporary pages")
		}
	}()

	pages, err := splitPages(ctx, src.doc, dir)
	if err != nil {
		return "", err
	}

	dpi := p.DPI
	if dpi == 0 {
		dpi = w.opts.dpi
	}
	quality := p.Quality
	if quality == 0 {
		quality = w.opts.quality
	}
	images, err := w.pool.Render(ctx, pages, float64(dpi), jpegQuality(quality))
	if err != nil {
		return "", err
	}

	archive, err := buildArchive(images, w.opts.now())
	if err != nil {
		return "", err
	}
	path := outputPath(p.Output, p.SourcePath, archiveExtension)
	if err := writeOutput(path, archive); err != nil {
		return "", err
	}
	w.log.Debug().Str("path", path).Int("pages", len(images)).Msg("wrote archive")
	return path, nil
}

// splitPages writes page-N.pdf for every page of doc into dir.
func splitPages(ctx context.Context, doc *pdf.Document, dir string) ([]string, error) {
	paths := make([]string, 0, doc.NumPages())
	for i := range doc.NumPages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := doc.ExtractPage(i)
		if err != nil {
			return nil, fmt.Errorf("%w: splitting page %d: %v", ErrCompose, i+1, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("page-%d.pdf", i+1))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
