package httputil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPTimeouts represents the configuration params for the HTTP server.
type HTTPTimeouts struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

var DefaultTimeouts = HTTPTimeouts{
	ReadTimeout:       30 * time.Second,
	ReadHeaderTimeout: 30 * time.Second,
	WriteTimeout:      30 * time.Second,
	IdleTimeout:       120 * time.Second,
}

type Option func(s *HTTPServer)

func WithTimeouts(timeouts HTTPTimeouts) Option {
	return func(s *HTTPServer) {
		s.timeouts = timeouts
	}
}

// standupDelay is how long Start waits for the server to fail immediately.
const standupDelay = 10 * time.Millisecond

// HTTPServer serves a handler on a TCP address, and exposes the bound address while online.
// A 0 port binds to any available port.
type HTTPServer struct {
	listenAddr string
	handler    http.Handler
	timeouts   HTTPTimeouts

	mu       sync.RWMutex
	srv      *http.Server // nil while offline
	listener net.Listener
	cancel   context.CancelFunc
}

func NewHTTPServer(addr string, handler http.Handler, opts ...Option) *HTTPServer {
	s := &HTTPServer{listenAddr: addr, handler: handler, timeouts: DefaultTimeouts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func StartHTTPServer(addr string, handler http.Handler, opts ...Option) (*HTTPServer, error) {
	out := NewHTTPServer(addr, handler, opts...)
	return out, out.Start()
}

// Start binds the listener and serves in the background.
// Requests are served with a base context that is canceled when the server stops.
func (s *HTTPServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return errors.New("already have existing server")
	}
	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to bind to address %q: %w", s.listenAddr, err)
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.timeouts.ReadTimeout,
		ReadHeaderTimeout: s.timeouts.ReadHeaderTimeout,
		WriteTimeout:      s.timeouts.WriteTimeout,
		IdleTimeout:       s.timeouts.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	select {
	case err := <-errCh:
		cancel()
		return fmt.Errorf("http server failed: %w", err)
	case <-time.After(standupDelay):
	}
	s.srv, s.listener, s.cancel = srv, listener, cancel
	return nil
}

func (s *HTTPServer) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.srv == nil
}

// Stop shuts the server down gracefully, and force-closes the remaining connections once ctx is done.
// Stopping an offline server is a no-op.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	s.cancel()
	err := s.srv.Shutdown(ctx)
	if err != nil && errors.Is(err, ctx.Err()) {
		err = s.srv.Close()
	}
	if err != nil {
		return err
	}
	s.srv, s.listener, s.cancel = nil, nil, nil
	return nil
}

// Addr returns the bound address, or nil while offline.
func (s *HTTPServer) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// HTTPEndpoint returns the http URL of the bound address, or an empty string while offline.
func (s *HTTPServer) HTTPEndpoint() string {
	addr := s.Addr()
	if addr == nil {
		return ""
	}
	return "http://" + addr.String()
}
