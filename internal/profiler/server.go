// Package profiler serves net/http/pprof on a loopback listener next to the
// API server.
package profiler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskdesk/internal/core/logging"
)

// Server is a pprof endpoint bound to 127.0.0.1.
type Server struct {
	port int
	srv  *http.Server
	ln   net.Listener
	log  zerolog.Logger
}

// New prepares a profiler for port. Port 0 lets the kernel choose.
func New(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	for name, h := range map[string]http.HandlerFunc{
		"cmdline": pprof.Cmdline,
		"profile": pprof.Profile,
		"symbol":  pprof.Symbol,
		"trace":   pprof.Trace,
	} {
		mux.Handle("/debug/pprof/"+name, h)
	}

	return &Server{
		port: port,
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		log:  logging.Component("profiler"),
	}
}

// Start binds the listener and serves in a goroutine. Bind errors are
// returned; later serve errors are logged.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("profiler listen: %w", err)
	}
	s.ln = ln

	go func() {
		err := s.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("profiler stopped")
		}
	}()

	s.log.Info().Str("addr", s.Addr()).Msg("profiler listening")
	return nil
}

// Addr is the bound host:port, empty until Start succeeds.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown waits for in-flight profiles until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
