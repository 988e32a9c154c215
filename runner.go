package pdfshdow

import (
	"context"
	"fmt"
)

// SignalKind identifies one of the three ways a running task reports.
type SignalKind int

// Signal kinds.
const (
	// SignalMessage carries the worker's result.
	SignalMessage SignalKind = iota
	// SignalFault reports a worker-level failure such as a crash or an
	// unreadable result.
	SignalFault
	// SignalExit reports that the worker is gone.
	SignalExit
)

func (k SignalKind) String() string {
	switch k {
	case SignalMessage:
		return "message"
	case SignalFault:
		return "fault"
	case SignalExit:
		return "exit"
	}
	return fmt.Sprintf("SignalKind(%d)", int(k))
}

// Signal is emitted by a Runner for a task. A task may emit several; only
// the first is honored.
type Signal struct {
	Kind     SignalKind
	Result   TaskResult // SignalMessage
	Err      error      // SignalFault, and SignalExit when the exit was abnormal
	ExitCode int        // SignalExit
}

// Runner starts tasks in isolated execution units.
type Runner interface {
	// Start launches req and returns without waiting for it. emit may be
	// called from any goroutine, including before Start returns.
	Start(ctx context.Context, req TaskRequest, emit func(Signal)) (Handle, error)
}

// Handle terminates a started task.
type Handle interface {
	Kill() error
}

// InlineRunner runs tasks on goroutines of the current process.
type InlineRunner struct {
	Worker *Worker
}

// NewInlineRunner runs tasks with a Worker built from opts.
func NewInlineRunner(opts ...Option) *InlineRunner {
	return &InlineRunner{Worker: NewWorker(opts...)}
}

// Start runs req on a new goroutine. The task ignores cancellation of ctx;
// only Kill stops it.
func (r *InlineRunner) Start(ctx context.Context, req TaskRequest, emit func(Signal)) (Handle, error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	go func() {
		defer cancel()
		defer func() {
			if p := recover(); p != nil {
				emit(Signal{Kind: SignalFault, Err: fmt.Errorf("%w: panic: %v", ErrWorkerFault, p)})
			}
			emit(Signal{Kind: SignalExit})
		}()
		emit(Signal{Kind: SignalMessage, Result: r.Worker.Execute(ctx, req)})
	}()
	return inlineHandle(cancel), nil
}

type inlineHandle context.CancelFunc

func (h inlineHandle) Kill() error {
	h()
	return nil
}
