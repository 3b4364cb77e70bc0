package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/scrubd/scrubd/internal/supervisor"
)

// Factory returns the supervisor target factory for this server. The
// listener is bound inside the factory, so bind failures surface from
// Launch synchronously instead of inside the worker goroutine.
func (s *Server) Factory() supervisor.TargetFactory {
	return func(cfg supervisor.Config) (supervisor.Target, error) {
		lis, err := net.Listen("tcp", cfg.Addr())
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", cfg.Addr(), err)
		}
		return &serveTarget{
			srv: &http.Server{Handler: s.router},
			lis: lis,
		}, nil
	}
}

// serveTarget runs the HTTP serve loop as a supervisor target.
type serveTarget struct {
	srv *http.Server
	lis net.Listener
}

// Run serves until the listener closes. The accept loop blocks in a
// native call and never reaches a trace step; stopping this target
// relies entirely on Interrupt.
func (t *serveTarget) Run(tr *supervisor.Trace) error {
	err := t.srv.Serve(t.lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Interrupt force-closes the server: the bound socket and every active
// connection close immediately, which unblocks Serve. In-flight
// requests are dropped rather than drained.
func (t *serveTarget) Interrupt() error {
	return t.srv.Close()
}

// Addr returns the bound listen address, useful when launched on port 0.
func (t *serveTarget) Addr() string {
	return t.lis.Addr().String()
}
