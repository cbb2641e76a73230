// Package tcpserver wraps the TCP listener lifecycle for line-oriented
// servers: a context-driven accept loop that hands each accepted connection
// to its own handler goroutine.
package tcpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
)

// ConnHandler handles one accepted connection. The handler owns the
// connection and is responsible for closing it on every exit path.
type ConnHandler func(conn net.Conn)

// Server wraps the TCP listener lifecycle.
type Server struct {
	addr   string
	logger *log.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server that will listen on addr.
func New(addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, logger: logger}
}

// ListenAddr returns the bound address once the server is listening, or an
// empty string before that.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ListenAndServe accepts connections until the context is cancelled or the
// listener fails. Each accepted connection is served by its own goroutine;
// the accept loop never blocks on application logic.
func (s *Server) ListenAndServe(ctx context.Context, handler ConnHandler) error {
	if handler == nil {
		return errors.New("tcpserver: connection handler required")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("tcpserver: listen %q: %w", s.addr, err)
	}
	defer listener.Close()

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	shutdown := make(chan struct{})
	defer close(shutdown)

	go func() {
		select {
		case <-ctx.Done():
			if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Printf("tcpserver: listener close error: %v", err)
			}
		case <-shutdown:
		}
	}()

	s.logger.Printf("tcpserver: listening on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			s.logger.Printf("tcpserver: accept error: %v", err)
			continue
		}

		go handler(conn)
	}
}
