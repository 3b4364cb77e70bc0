package supervisor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/scrubd/scrubd/internal/logging"
)

// State is a Worker lifecycle state. Transitions are monotonic:
// NotStarted → Running → StopRequested → Stopped. A worker whose target
// returns on its own skips StopRequested.
type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateStopRequested
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateStopRequested:
		return "stop_requested"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Target is the unit of work a Worker executes.
//
// Run blocks until the work is finished or aborted. The Trace handle must
// be threaded through any pure-Go control flow the target owns: each
// Trace.Step call is an abort point. Code the target does not own (a
// listener's accept loop, a native call) never reaches Step, which is why
// Interrupt exists: it must force a blocked Run to return promptly, by
// whatever means the target has (closing a socket, cancelling a context).
// Interrupt returns ErrAbortUnsupported when the target has no such means.
type Target interface {
	Run(tr *Trace) error
	Interrupt() error
}

// Trace instruments a target's execution. The worker owns the stop flag;
// the target only observes it through Step.
type Trace struct {
	stop *atomic.Bool
}

// abortSignal unwinds a target goroutine after a stop request. It is
// deliberately an unexported panic value: target code cannot name it, so
// its recover-and-continue error handling cannot swallow the abort.
type abortSignal struct{}

// Step aborts the calling goroutine if a stop has been requested.
// Targets call it at the finest granularity they control, typically once
// per loop iteration or unit of work. The abort skips the target's
// remaining cleanup; that is the contract, stop-fast over clean-up.
func (t *Trace) Step() {
	if t.stop.Load() {
		panic(abortSignal{})
	}
}

// Stopping reports whether a stop has been requested, for targets that
// prefer to unwind on their own instead of being aborted mid-loop.
func (t *Trace) Stopping() bool {
	return t.stop.Load()
}

// Worker runs a single Target on its own goroutine and lets the owner
// force-stop it without process signals.
type Worker struct {
	name   string
	target Target
	log    *logging.Logger

	state atomic.Int32
	stop  atomic.Bool
	done  chan struct{}
	err   error // written by run, readable after done closes
}

// NewWorker wraps target. The worker does not run until Start.
func NewWorker(name string, target Target, log *logging.Logger) *Worker {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Worker{
		name:   name,
		target: target,
		log:    log,
		done:   make(chan struct{}),
	}
}

// Name returns the worker's name.
func (w *Worker) Name() string { return w.name }

// State returns the current lifecycle state.
func (w *Worker) State() State { return State(w.state.Load()) }

// Done is closed once the worker's goroutine has fully terminated.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Err returns the target's Run error. Valid only after Done is closed;
// nil for a clean return or an abort.
func (w *Worker) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

// Start launches the target on a new goroutine and returns immediately.
// Fails with ErrInvalidState unless the worker has never been started.
func (w *Worker) Start() error {
	if !w.state.CompareAndSwap(int32(StateNotStarted), int32(StateRunning)) {
		return fmt.Errorf("start worker %q: %w: state is %s", w.name, ErrInvalidState, w.State())
	}
	w.log.Info("worker started", zap.String("worker", w.name))
	go w.run()
	return nil
}

// RequestStop signals the worker to terminate and returns without
// waiting. The stop flag becomes visible to every subsequent Trace.Step,
// and the target's Interrupt hook is invoked to unblock Run if it is
// parked outside traced execution. Fails with ErrInvalidState unless the
// worker is Running. An ErrAbortUnsupported from Interrupt is returned to
// the caller so the degraded guarantee is visible, but the stop flag
// stays set.
func (w *Worker) RequestStop() error {
	if !w.state.CompareAndSwap(int32(StateRunning), int32(StateStopRequested)) {
		return fmt.Errorf("stop worker %q: %w: state is %s", w.name, ErrInvalidState, w.State())
	}
	w.stop.Store(true)
	w.log.Info("worker stop requested", zap.String("worker", w.name))

	if err := w.target.Interrupt(); err != nil {
		w.log.Warn("worker interrupt failed",
			zap.String("worker", w.name),
			zap.Error(err),
		)
		return fmt.Errorf("stop worker %q: %w", w.name, err)
	}
	return nil
}

// Join blocks until the worker's goroutine has terminated or ctx is
// done. A ctx expiry returns ErrStopNotConfirmed; the worker may still
// stop later and Join may be retried.
func (w *Worker) Join(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("join worker %q: %w", w.name, ErrStopNotConfirmed)
	}
}

// JoinTimeout is Join with a duration bound. A non-positive timeout polls:
// it returns immediately, confirming only if the worker already stopped.
func (w *Worker) JoinTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		select {
		case <-w.done:
			return nil
		default:
			return fmt.Errorf("join worker %q: %w", w.name, ErrStopNotConfirmed)
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.done:
		return nil
	case <-timer.C:
		return fmt.Errorf("join worker %q: %w", w.name, ErrStopNotConfirmed)
	}
}

// run executes the target and settles the terminal state. Deferred in
// reverse order: recover first, then the state store, then the done
// close, so observers that wake on done always read StateStopped.
func (w *Worker) run() {
	defer close(w.done)
	defer w.state.Store(int32(StateStopped))
	defer func() {
		r := recover()
		switch r := r.(type) {
		case nil:
		case abortSignal:
			w.log.Info("worker aborted", zap.String("worker", w.name))
		default:
			w.err = fmt.Errorf("worker %q panicked: %v", w.name, r)
			w.log.Error("worker panicked",
				zap.String("worker", w.name),
				zap.Any("panic", r),
			)
		}
	}()

	w.err = w.target.Run(&Trace{stop: &w.stop})
	if w.err != nil {
		w.log.Error("worker target failed",
			zap.String("worker", w.name),
			zap.Error(w.err),
		)
	}
}

// funcTarget adapts bare functions to Target.
type funcTarget struct {
	run       func(tr *Trace) error
	interrupt func() error
}

func (f funcTarget) Run(tr *Trace) error { return f.run(tr) }

func (f funcTarget) Interrupt() error {
	if f.interrupt == nil {
		return ErrAbortUnsupported
	}
	return f.interrupt()
}

// Func builds a Target from bare functions. A nil interrupt means the
// target can only be stopped at Trace.Step abort points.
func Func(run func(tr *Trace) error, interrupt func() error) Target {
	return funcTarget{run: run, interrupt: interrupt}
}
