package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrubd/scrubd/internal/logging"
)

// blockingTarget parks Run until Interrupt closes the gate, mimicking a
// serve loop that only an interrupt can unblock.
type blockingTarget struct {
	gate    chan struct{}
	once    sync.Once
	started chan struct{}
	runErr  error
}

func newBlockingTarget() *blockingTarget {
	return &blockingTarget{
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}
}

func (t *blockingTarget) Run(tr *Trace) error {
	close(t.started)
	<-t.gate
	return t.runErr
}

func (t *blockingTarget) Interrupt() error {
	t.once.Do(func() { close(t.gate) })
	return nil
}

func TestWorkerStartStopJoin(t *testing.T) {
	target := newBlockingTarget()
	w := NewWorker("test", target, logging.NewNop())

	require.Equal(t, StateNotStarted, w.State())
	require.NoError(t, w.Start())

	<-target.started
	assert.Equal(t, StateRunning, w.State())

	require.NoError(t, w.RequestStop())
	require.NoError(t, w.Join(context.Background()))
	assert.Equal(t, StateStopped, w.State())
	assert.NoError(t, w.Err())
}

func TestWorkerRequestStopBeforeStart(t *testing.T) {
	w := NewWorker("test", newBlockingTarget(), logging.NewNop())

	err := w.RequestStop()
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateNotStarted, w.State())
}

func TestWorkerStartTwice(t *testing.T) {
	target := newBlockingTarget()
	w := NewWorker("test", target, logging.NewNop())

	require.NoError(t, w.Start())
	err := w.Start()
	require.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, w.RequestStop())
	require.NoError(t, w.Join(context.Background()))
}

func TestWorkerRequestStopAfterStopped(t *testing.T) {
	target := newBlockingTarget()
	w := NewWorker("test", target, logging.NewNop())

	require.NoError(t, w.Start())
	require.NoError(t, w.RequestStop())
	require.NoError(t, w.Join(context.Background()))

	err := w.RequestStop()
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateStopped, w.State())
}

func TestWorkerJoinTimeoutZeroDoesNotBlock(t *testing.T) {
	target := newBlockingTarget()
	w := NewWorker("test", target, logging.NewNop())
	require.NoError(t, w.Start())
	<-target.started

	start := time.Now()
	err := w.JoinTimeout(0)
	require.ErrorIs(t, err, ErrStopNotConfirmed)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	require.NoError(t, w.RequestStop())
	require.NoError(t, w.Join(context.Background()))
	assert.NoError(t, w.JoinTimeout(0))
}

func TestWorkerJoinTimeoutExpiresThenRetries(t *testing.T) {
	// Interrupt is a no-op here: the target ignores the stop request
	// until the test releases it, like a callable stuck in native code.
	gate := make(chan struct{})
	stubborn := Func(
		func(tr *Trace) error { <-gate; return nil },
		func() error { return nil },
	)
	w := NewWorker("stubborn", stubborn, logging.NewNop())
	require.NoError(t, w.Start())
	require.NoError(t, w.RequestStop())

	err := w.JoinTimeout(30 * time.Millisecond)
	require.ErrorIs(t, err, ErrStopNotConfirmed)

	close(gate)
	require.NoError(t, w.JoinTimeout(2*time.Second))
	assert.Equal(t, StateStopped, w.State())
}

// TestWorkerStopsTightComputationLoop verifies the fine-granularity stop
// path: a pure-computation spin loop with no interrupt hook must still
// terminate promptly after a stop request, via the per-step abort.
func TestWorkerStopsTightComputationLoop(t *testing.T) {
	started := make(chan struct{})
	spinner := Func(func(tr *Trace) error {
		close(started)
		x := 0
		for {
			x++
			tr.Step()
		}
	}, nil)

	w := NewWorker("spinner", spinner, logging.NewNop())
	require.NoError(t, w.Start())
	<-started

	err := w.RequestStop()
	require.ErrorIs(t, err, ErrAbortUnsupported) // no interrupt hook: degraded guarantee is reported

	require.NoError(t, w.JoinTimeout(2*time.Second))
	assert.Equal(t, StateStopped, w.State())
	assert.NoError(t, w.Err())
}

func TestWorkerAbortSkipsTargetRecovery(t *testing.T) {
	// The abort must cut through the target's own recover-everything
	// error handling.
	started := make(chan struct{})
	swallower := Func(func(tr *Trace) error {
		close(started)
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						if _, ok := r.(abortSignal); ok {
							panic(r) // only the worker may consume the abort
						}
					}
				}()
				tr.Step()
			}()
		}
	}, nil)

	w := NewWorker("swallower", swallower, logging.NewNop())
	require.NoError(t, w.Start())
	<-started

	_ = w.RequestStop()
	require.NoError(t, w.JoinTimeout(2*time.Second))
}

func TestWorkerRunError(t *testing.T) {
	wantErr := errors.New("listen failed")
	target := newBlockingTarget()
	target.runErr = wantErr
	w := NewWorker("test", target, logging.NewNop())

	require.NoError(t, w.Start())
	require.NoError(t, target.Interrupt()) // let Run return on its own
	require.NoError(t, w.Join(context.Background()))

	assert.Equal(t, StateStopped, w.State())
	assert.ErrorIs(t, w.Err(), wantErr)
}

func TestWorkerTargetPanicIsContained(t *testing.T) {
	boom := Func(func(tr *Trace) error { panic("boom") }, nil)
	w := NewWorker("boom", boom, logging.NewNop())

	require.NoError(t, w.Start())
	require.NoError(t, w.JoinTimeout(2*time.Second))
	require.Error(t, w.Err())
	assert.Contains(t, w.Err().Error(), "panicked")
}

func TestTraceStopping(t *testing.T) {
	observed := make(chan bool, 1)
	done := make(chan struct{})
	target := Func(func(tr *Trace) error {
		<-done
		observed <- tr.Stopping()
		return nil
	}, func() error {
		close(done)
		return nil
	})

	w := NewWorker("observer", target, logging.NewNop())
	require.NoError(t, w.Start())
	require.NoError(t, w.RequestStop())
	require.NoError(t, w.JoinTimeout(2*time.Second))
	assert.True(t, <-observed)
}
