package pdfshdow

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wang824892540/PDFShdow/internal/process"
)

// ProcessRunner runs each task in its own worker process: Path invoked with
// Args, one TaskRequest as JSON on stdin, one TaskResult as JSON on stdout.
// Worker stderr is forwarded to Logger.
type ProcessRunner struct {
	Path   string
	Args   []string // default: "worker"
	Env    []string // appended to the current environment
	Logger zerolog.Logger
}

// NewProcessRunner re-executes the current binary's worker subcommand.
func NewProcessRunner(logger zerolog.Logger) (*ProcessRunner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}
	return &ProcessRunner{Path: exe, Logger: logger}, nil
}

// Start launches the worker process. Cancelling ctx does not stop it; use
// the returned Handle.
func (r *ProcessRunner) Start(_ context.Context, req TaskRequest, emit func(Signal)) (Handle, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrWorkerFault, err)
	}

	args := r.Args
	if args == nil {
		args = []string{"worker"}
	}
	cmd := exec.Command(r.Path, args...) // #nosec G204 -- path is the worker binary chosen by the caller
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.Stdin = bytes.NewReader(payload)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerFault, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerFault, err)
	}
	process.SetProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting worker: %v", ErrWorkerFault, err)
	}
	h := &processHandle{cmd: cmd, killGroup: process.KillProcessGroup}

	logged := make(chan struct{})
	go func() {
		defer close(logged)
		forwardLines(stderr, r.Logger.With().Str("stream", "worker-stderr").Logger())
	}()

	go func() {
		var res TaskResult
		switch err := json.NewDecoder(stdout).Decode(&res); {
		case err == nil:
			emit(Signal{Kind: SignalMessage, Result: res})
		case errors.Is(err, io.EOF):
			// No output at all; the exit signal reports it.
		default:
			emit(Signal{Kind: SignalFault, Err: fmt.Errorf("%w: reading result: %v", ErrWorkerFault, err)})
		}
		_, _ = io.Copy(io.Discard, stdout)
		// Wait closes the pipes, so both must be drained first.
		<-logged

		err := cmd.Wait()
		h.markReaped()
		code := -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		emit(Signal{Kind: SignalExit, ExitCode: code, Err: err})
	}()

	return h, nil
}

type processHandle struct {
	cmd       *exec.Cmd
	killGroup func(pid int)

	mu     sync.Mutex
	reaped bool
}

func (h *processHandle) markReaped() {
	h.mu.Lock()
	h.reaped = true
	h.mu.Unlock()
}

// Kill terminates the worker and everything it spawned. Once the worker has
// been waited for, its process group id may belong to another process, so
// nothing is signalled.
func (h *processHandle) Kill() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reaped {
		return nil
	}
	h.killGroup(h.cmd.Process.Pid)
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// maxStderrLine bounds one forwarded line of worker stderr.
const maxStderrLine = 1 << 20

// forwardLines logs every non-empty line read from r until EOF. Lines split
// across writes are reassembled.
func forwardLines(r io.Reader, log zerolog.Logger) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxStderrLine)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
			log.Warn().Msg(line)
		}
	}
	if err := sc.Err(); err != nil {
		log.Debug().Err(err).Msg("reading worker stderr")
		// Keep draining so the worker never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
	}
}
