package main

// Notes:
// - exitCodeFor: we test task errors by kind, CLI and config sentinels, and
//   wrapped errors to verify the errors.Is/As chains.
// - Exit code constants: we verify Unix conventions (0=success, 1=general,
//   2=usage) and that custom codes stay below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	pdfshdow "github.com/wang824892540/PDFShdow"
	"github.com/wang824892540/PDFShdow/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	taskErr := func(kind pdfshdow.ErrorKind) error {
		return pdfshdow.TaskResult{Error: "boom", Kind: kind}.Err()
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Task results (by kind)
		{"validation", taskErr(pdfshdow.KindValidation), ExitUsage},
		{"io", taskErr(pdfshdow.KindIO), ExitIO},
		{"source", taskErr(pdfshdow.KindSource), ExitInput},
		{"composition", taskErr(pdfshdow.KindComposition), ExitInput},
		{"worker", taskErr(pdfshdow.KindWorker), ExitWorker},
		{"unknown kind", taskErr("mystery"), ExitGeneral},
		{"hinted task error", fmt.Errorf("%w\n  hint", taskErr(pdfshdow.KindWorker)), ExitWorker},

		// Usage/config errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"source flag", ErrSourceFlag, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"read layout", fmt.Errorf("%w: %w", ErrReadLayout, os.ErrNotExist), ExitUsage},
		{"read manifest", ErrReadManifest, ExitUsage},
		{"wrapped config", fmt.Errorf("loading config: %w", config.ErrConfigParse), ExitUsage},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},

		// Batch (exit 4)
		{"batch failed", fmt.Errorf("%w: 1 of 2", ErrBatchFailed), ExitInput},

		// General
		{"unknown error", errors.New("something else"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	seen := map[int]bool{}
	for _, code := range []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitInput, ExitWorker} {
		if code >= 126 {
			t.Errorf("exit code %d collides with shell-reserved codes", code)
		}
		if seen[code] {
			t.Errorf("exit code %d is used twice", code)
		}
		seen[code] = true
	}
}
