package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

// workerCommand is the hidden command a process-isolated worker runs.
const workerCommand = "worker"

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := run(ctx, args, env)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	printError(env.Stderr, err)
	return exitCodeFor(err)
}

// run dispatches args[1] to its command.
func run(ctx context.Context, args []string, env *Environment) error {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "resize":
		return runResize(ctx, rest, env)
	case "stacked":
		return runStacked(ctx, rest, env)
	case "overlay":
		return runOverlay(ctx, rest, env)
	case "merge":
		return runMerge(ctx, rest, env)
	case "pdf2img":
		return runPDF2Img(ctx, rest, env)
	case "img2pdf":
		return runImg2PDF(ctx, rest, env)
	case "batch":
		return runBatch(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case workerCommand:
		return runWorker(ctx, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "pdfshdow %s\n", Version)
		return nil
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}
