package pdfshdow

import (
	"bytes"
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"
)

// buildArchive stores each image as {N}.jpg, numbered from 1. JPEG data is
// already compressed, so entries are stored rather than deflated.
func buildArchive(images [][]byte, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, data := range images {
		hdr := &zip.FileHeader{
			Name:     fmt.Sprintf("%d.jpg", i+1),
			Method:   zip.Store,
			Modified: modified,
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("%w: archive entry %s: %v", ErrCompose, hdr.Name, err)
		}
		if _, err := f.Write(data); err != nil {
			return nil, fmt.Errorf("%w: archive entry %s: %v", ErrCompose, hdr.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing archive: %v", ErrCompose, err)
	}
	return buf.Bytes(), nil
}
