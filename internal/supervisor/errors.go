package supervisor

import "errors"

// Sentinel errors returned by Worker and Supervisor operations. They are
// always wrapped with operation context; match with errors.Is.
var (
	// ErrInvalidState indicates an operation was attempted from a state
	// that forbids it, e.g. RequestStop on a worker that never started.
	ErrInvalidState = errors.New("invalid worker state")

	// ErrAlreadyRunning indicates Launch was called while a worker is
	// still active and replacement was not explicitly requested.
	ErrAlreadyRunning = errors.New("worker already running")

	// ErrStopNotConfirmed indicates a bounded Join expired before the
	// worker's goroutine terminated. Recoverable: retry Join or escalate.
	ErrStopNotConfirmed = errors.New("worker stop not confirmed")

	// ErrAbortUnsupported indicates the target cannot be unblocked while
	// it is outside traced execution (e.g. parked in a native call) and
	// provides no interrupt hook. The stop flag is still set; the worker
	// stops at the next traced step, if one is ever reached.
	ErrAbortUnsupported = errors.New("abort not supported by target")
)
