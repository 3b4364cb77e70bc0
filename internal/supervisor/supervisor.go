package supervisor

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scrubd/scrubd/internal/logging"
)

// Config carries the options a launched service is bound with.
type Config struct {
	Host  string
	Port  int
	Debug bool
}

// Addr returns the host:port bind address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TargetFactory builds a Target bound with the given config.
type TargetFactory func(cfg Config) (Target, error)

// Supervisor owns at most one active Worker. Launch and Kill serialize on
// an internal mutex, so two callers cannot race to replace or kill the
// active slot. The slot is cleared only after the worker's termination is
// confirmed.
type Supervisor struct {
	log *logging.Logger

	mu     sync.Mutex
	active *Worker
}

// New creates an idle supervisor.
func New(log *logging.Logger) *Supervisor {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Supervisor{log: log}
}

// Active returns the worker currently holding the slot, or nil.
func (s *Supervisor) Active() *Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Launch builds a target bound with cfg, starts a worker running it, and
// stores it as the active slot. Fails with ErrAlreadyRunning while a
// prior worker is Running or StopRequested; use Relaunch to replace
// explicitly. A fully stopped prior worker is evicted silently.
func (s *Supervisor) Launch(name string, factory TargetFactory, cfg Config) (*Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		switch s.active.State() {
		case StateRunning, StateStopRequested:
			return nil, fmt.Errorf("launch %q: %w", name, ErrAlreadyRunning)
		}
	}
	return s.launchLocked(name, factory, cfg)
}

// Relaunch is the explicit replacement path: it kills the active worker,
// if any, then launches, all under one lock hold.
func (s *Supervisor) Relaunch(name string, factory TargetFactory, cfg Config) (*Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.killLocked(context.Background())
	return s.launchLocked(name, factory, cfg)
}

// Kill stops the active worker and blocks until its termination is
// confirmed, then clears the slot. Returns false without side effects
// when no worker holds the slot. Interrupt failures are logged, not
// raised: the join still waits for the abort to land.
func (s *Supervisor) Kill() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killLocked(context.Background())
}

// KillWait is Kill with a confirmation bound. When the worker does not
// stop within timeout it returns ErrStopNotConfirmed and keeps the slot,
// so the caller can retry or escalate.
func (s *Supervisor) KillWait(timeout time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.active
	if w == nil {
		return false, nil
	}
	s.requestStop(w)
	if err := w.JoinTimeout(timeout); err != nil {
		s.log.Warn("worker did not confirm stop",
			zap.String("worker", w.Name()),
			zap.Duration("timeout", timeout),
		)
		return false, err
	}
	s.clearLocked(w)
	return true, nil
}

func (s *Supervisor) launchLocked(name string, factory TargetFactory, cfg Config) (*Worker, error) {
	target, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("launch %q: %w", name, err)
	}
	w := NewWorker(name, target, s.log)
	if err := w.Start(); err != nil {
		return nil, err
	}
	s.active = w
	s.log.Info("service launched",
		zap.String("worker", name),
		zap.String("addr", cfg.Addr()),
		zap.Bool("debug", cfg.Debug),
	)
	return w, nil
}

func (s *Supervisor) killLocked(ctx context.Context) bool {
	w := s.active
	if w == nil {
		return false
	}
	s.requestStop(w)
	if err := w.Join(ctx); err != nil {
		return false
	}
	s.clearLocked(w)
	return true
}

// requestStop forwards the stop request, tolerating a worker that
// already stopped on its own.
func (s *Supervisor) requestStop(w *Worker) {
	if err := w.RequestStop(); err != nil {
		s.log.Warn("stop request not delivered cleanly",
			zap.String("worker", w.Name()),
			zap.String("state", w.State().String()),
			zap.Error(err),
		)
	}
}

func (s *Supervisor) clearLocked(w *Worker) {
	s.active = nil
	s.log.Info("service terminated", zap.String("worker", w.Name()))
}
