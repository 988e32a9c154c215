package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wang824892540/PDFShdow/internal/config"
	"github.com/wang824892540/PDFShdow/internal/pdf"
)

// testEnv is an Environment with captured output. Tasks run inline, so no
// worker binary is needed.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv() *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testEnv{
		Environment: &Environment{
			Now:    func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
			Stdin:  &bytes.Buffer{},
			Stdout: stdout,
			Stderr: stderr,
			Executable: func() (string, error) {
				return "", os.ErrNotExist
			},
			Config: config.DefaultConfig(),
		},
		stdout: stdout,
		stderr: stderr,
	}
}

// writeTestPDF writes a PDF with one blank page per size (in points).
func writeTestPDF(t *testing.T, dir, name string, sizes ...[2]float64) string {
	t.Helper()
	b := pdf.NewBuilder()
	for _, s := range sizes {
		if _, err := b.AddPage(s[0], s[1]); err != nil {
			t.Fatalf("AddPage(%v) error = %v", s, err)
		}
	}
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// pageCount opens a written PDF and returns its number of pages.
func pageCount(t *testing.T, path string) int {
	t.Helper()
	doc, err := pdf.Open(path)
	if err != nil {
		t.Fatalf("pdf.Open(%s) error = %v", path, err)
	}
	return doc.NumPages()
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
