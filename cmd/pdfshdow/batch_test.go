package main

// Notes:
// - runBatch: we test a mixed manifest (every task reported, exit as failed)
//   and manifest errors. Tasks run inline.
// - The progress bar writes to stderr; we only check stdout and the error.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunBatch - Manifest execution
// ---------------------------------------------------------------------------

func TestRunBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeTestPDF(t, dir, "doc.pdf", [2]float64{612, 792})
	manifest := writeTestFile(t, dir, "batch.yaml", fmt.Sprintf(`
tasks:
  - recipe: resize
    resize: {source: %q, width: 100, height: 100, output: small.pdf}
  - recipe: resize
    resize: {source: %q, width: 300, height: 300, output: large.pdf}
`, src, src))

	env := newTestEnv()
	if err := runCLI(t, env, "batch", manifest, "--isolation", "inline"); err != nil {
		t.Fatalf("batch error = %v", err)
	}

	for _, name := range []string{"small.pdf", "large.pdf"} {
		if n := pageCount(t, filepath.Join(dir, name)); n != 1 {
			t.Errorf("%s pages = %d, want 1", name, n)
		}
	}
	out := env.stdout.String()
	if strings.Index(out, "small.pdf") > strings.Index(out, "large.pdf") {
		t.Errorf("results should follow manifest order, got %q", out)
	}
}

func TestRunBatch_PartialFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeTestPDF(t, dir, "doc.pdf", [2]float64{612, 792})
	manifest := writeTestFile(t, dir, "batch.yaml", fmt.Sprintf(`
tasks:
  - recipe: resize
    resize: {source: %q, width: 100, height: 100, output: ok.pdf}
  - recipe: resize
    resize: {source: %q, width: 100, height: 100, output: bad.pdf}
  - recipe: resize
    resize: {source: %q, width: 0, height: 100, output: invalid.pdf}
`, src, filepath.Join(dir, "missing.pdf"), src))

	env := newTestEnv()
	err := runCLI(t, env, "batch", manifest, "--isolation", "inline")
	if !errors.Is(err, ErrBatchFailed) {
		t.Fatalf("error = %v, want ErrBatchFailed", err)
	}
	if !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("error = %q, want failure count", err.Error())
	}
	if n := pageCount(t, filepath.Join(dir, "ok.pdf")); n != 1 {
		t.Errorf("ok.pdf pages = %d, want 1", n)
	}
	stderr := env.stderr.String()
	if !strings.Contains(stderr, "task 2:") || !strings.Contains(stderr, "task 3:") {
		t.Errorf("stderr = %q, want both failures reported", stderr)
	}
	if got := exitCodeFor(err); got != ExitInput {
		t.Errorf("exit code = %d, want %d", got, ExitInput)
	}
}

func TestRunBatch_ManifestErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"no tasks", "tasks: []\n"},
		{"unknown field", "taks:\n  - recipe: resize\n"},
		{"not yaml", "tasks: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeTestFile(t, dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml", tt.content)
			err := runCLI(t, newTestEnv(), "batch", path, "--isolation", "inline")
			if !errors.Is(err, ErrReadManifest) {
				t.Errorf("error = %v, want ErrReadManifest", err)
			}
		})
	}

	t.Run("no manifest argument", func(t *testing.T) {
		t.Parallel()
		if err := runCLI(t, newTestEnv(), "batch"); !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})
}
