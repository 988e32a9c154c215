package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownCommand = errors.New("unknown command")
	ErrSourceFlag     = errors.New("invalid --source value")
	ErrReadLayout     = errors.New("failed to read layout file")
	ErrReadManifest   = errors.New("failed to read batch manifest")
	ErrBatchFailed    = errors.New("batch had failed tasks")
)

// usageError wraps a flag parsing error. --help passes through unchanged
// so the caller can exit successfully.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// argsError reports a wrong number of positional arguments.
func argsError(cmd, want string, got int) error {
	return fmt.Errorf("%w: %s takes %s, got %d argument(s)", ErrUsage, cmd, want, got)
}
