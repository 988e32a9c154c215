package pdfshdow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TaskState is the lifecycle state of a submitted task.
type TaskState string

// Task states. Completed and Failed are terminal.
const (
	TaskPending   TaskState = "pending"
	TaskRunning   TaskState = "running"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
)

// task is one registry entry. resolved is the single-assignment guard:
// whichever signal flips it delivers the result.
type task struct {
	id       string
	resolved atomic.Bool
	result   chan TaskResult
	handle   Handle // guarded by Orchestrator.mu
}

// Orchestrator dispatches each request to its own worker and guarantees
// exactly one result per request.
type Orchestrator struct {
	runner Runner
	log    zerolog.Logger

	mu     sync.Mutex
	tasks  map[string]*task
	states map[string]TaskState
	closed bool
}

// NewOrchestrator creates an Orchestrator. Without WithRunner, tasks run
// in-process on a Worker built from the same options.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := newOptions(opts)
	runner := o.runner
	if runner == nil {
		runner = &InlineRunner{Worker: NewWorker(opts...)}
	}
	return &Orchestrator{
		runner: runner,
		log:    o.logger.With().Str("component", "orchestrator").Logger(),
		tasks:  make(map[string]*task),
		states: make(map[string]TaskState),
	}
}

// Submit validates req and dispatches it. The returned channel receives
// exactly one result and is then closed. Invalid requests fail without
// starting a worker.
func (o *Orchestrator) Submit(ctx context.Context, req TaskRequest) (string, <-chan TaskResult) {
	t := &task{id: uuid.NewString(), result: make(chan TaskResult, 1)}
	log := o.log.With().Str("task", t.id).Str("recipe", string(req.Recipe)).Logger()

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		t.resolved.Store(true)
		o.deliver(t, failure(ErrOrchestratorClosed))
		return t.id, t.result
	}
	o.states[t.id] = TaskPending
	o.mu.Unlock()

	if err := req.Validate(); err != nil {
		log.Debug().Err(err).Msg("rejected request")
		t.resolved.Store(true)
		o.deliver(t, failure(err))
		return t.id, t.result
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		t.resolved.Store(true)
		o.deliver(t, failure(ErrOrchestratorClosed))
		return t.id, t.result
	}
	o.tasks[t.id] = t
	o.mu.Unlock()

	handle, err := o.runner.Start(ctx, req, func(s Signal) { o.onSignal(t, log, s) })
	if err != nil {
		if !errors.Is(err, ErrWorkerFault) {
			err = fmt.Errorf("%w: %v", ErrWorkerFault, err)
		}
		o.resolve(t, log, failure(err))
		return t.id, t.result
	}

	o.mu.Lock()
	closed := o.closed
	if _, ok := o.tasks[t.id]; ok {
		t.handle = handle
		o.states[t.id] = TaskRunning
	}
	o.mu.Unlock()
	if closed {
		// Close ran while the worker was starting and could not kill it.
		_ = handle.Kill()
	}
	log.Debug().Msg("dispatched")
	return t.id, t.result
}

// Run submits req and waits for its result. The wait is not cancellable:
// tasks end with a result, or with a worker fault when Close terminates
// them.
func (o *Orchestrator) Run(ctx context.Context, req TaskRequest) TaskResult {
	_, ch := o.Submit(ctx, req)
	return <-ch
}

// Active returns the number of registered, unresolved tasks.
func (o *Orchestrator) Active() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.tasks)
}

// State returns the state of a submitted task.
func (o *Orchestrator) State(id string) (TaskState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.states[id]
	return s, ok
}

// Close terminates every registered task, resolving each as a worker
// fault, and rejects later submissions. It is safe to call more than once.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	o.closed = true
	tasks := o.tasks
	o.tasks = make(map[string]*task)
	handles := make([]Handle, 0, len(tasks))
	for _, t := range tasks {
		if t.handle != nil {
			handles = append(handles, t.handle)
		}
	}
	o.mu.Unlock()

	for _, t := range tasks {
		if t.resolved.CompareAndSwap(false, true) {
			o.deliver(t, failure(fmt.Errorf("%w: terminated at shutdown", ErrWorkerFault)))
		}
	}

	var errs []error
	for _, h := range handles {
		if err := h.Kill(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(tasks) > 0 {
		o.log.Debug().Int("tasks", len(tasks)).Msg("terminated outstanding tasks")
	}
	return errors.Join(errs...)
}

// onSignal turns the first signal of a task into its result.
func (o *Orchestrator) onSignal(t *task, log zerolog.Logger, s Signal) {
	if !t.resolved.CompareAndSwap(false, true) {
		log.Debug().Stringer("signal", s.Kind).Msg("discarding signal for resolved task")
		return
	}

	var res TaskResult
	switch s.Kind {
	case SignalMessage:
		res = s.Result
		if !res.Success && res.Kind == "" {
			res.Kind = KindComposition
		}
		if res.Success && res.Path != "" {
			o.enrich(&res, log)
		}
	case SignalFault:
		err := s.Err
		if err == nil || !errors.Is(err, ErrWorkerFault) {
			err = fmt.Errorf("%w: %v", ErrWorkerFault, err)
		}
		res = failure(err)
	default:
		// Exiting before reporting is a fault even with status 0.
		res = failure(fmt.Errorf("%w: exit status %d", ErrWorkerFault, s.ExitCode))
	}
	o.deliver(t, res)
}

func (o *Orchestrator) resolve(t *task, log zerolog.Logger, res TaskResult) {
	if !t.resolved.CompareAndSwap(false, true) {
		log.Debug().Msg("task already resolved")
		return
	}
	o.deliver(t, res)
}

// deliver records the terminal state and publishes res. The caller must
// have won the resolved guard.
func (o *Orchestrator) deliver(t *task, res TaskResult) {
	state := TaskCompleted
	if !res.Success {
		state = TaskFailed
		if res.Kind == KindWorker {
			o.log.Warn().Str("task", t.id).Str("error", res.Error).Msg("worker fault")
		}
	}
	o.mu.Lock()
	delete(o.tasks, t.id)
	o.states[t.id] = state
	o.mu.Unlock()

	t.result <- res
	close(t.result)
}
