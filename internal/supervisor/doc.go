/*
Package supervisor manages the lifecycle of the embedded HTTP service: a
single supervised worker running a blocking serve loop on its own
goroutine, force-stoppable from the owning process without resorting to
process-level signals.

# Overview

A Worker wraps a Target (a blocking Run plus an Interrupt hook) and
exposes Start, RequestStop and Join. A Supervisor owns at most one active
Worker behind a mutex and exposes Launch, Relaunch, Kill and KillWait.

# Stop semantics

RequestStop never blocks: it flips an atomic stop flag and invokes the
target's Interrupt hook. Two delivery paths exist:

  - Traced execution: pure-Go work the target owns calls Trace.Step at
    each unit of work; the first Step after a stop request aborts the
    goroutine via an unexported panic value that only the worker's own
    run frame recovers. Target code cannot catch it.
  - Blocked execution: a goroutine parked in a native call (a listener's
    accept, most commonly) never reaches Step. Go offers no way to kill
    a goroutine from outside, so the target must supply an Interrupt
    that forces Run to return; for the HTTP server that means closing
    the bound socket. Targets without such a hook report
    ErrAbortUnsupported and stop only at the next traced step.

Cancellation is abrupt: an aborted target's cleanup code does not run,
and in-flight work is dropped. Callers needing orderly shutdown should
not use this package.

# Blocking behavior

Start and RequestStop return immediately. Join is the only blocking
operation; without a bound it waits until the abort lands, which can be
indefinitely if the target neither reaches a Step nor honors Interrupt.
Bounded joins return ErrStopNotConfirmed and may be retried.
*/
package supervisor
