package http

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrServerClosed is returned by ServeOne and Listen after Close.
	ErrServerClosed = errors.New("server closed")

	// ErrHandlerPanic wraps a value recovered from a panicking handler.
	ErrHandlerPanic = errors.New("handler panicked")
)

// Endpoint is a bound handler method.
type Endpoint interface {
	Invoke() (string, error)
}

// Dispatcher resolves a request path to an endpoint. *routing.Router
// satisfies it.
type Dispatcher interface {
	Dispatch(path string) (Endpoint, bool)
}

// ── Server ───────────────────────────────────────────────────────────────────

// Server is the line-protocol listener. It handles one connection at a
// time: read the request line, dispatch, write the body, close.
type Server struct {
	addr       string
	dispatcher Dispatcher
	logger     *slog.Logger

	mu sync.Mutex
	ln net.Listener

	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithListener serves on an already bound listener instead of binding addr.
func WithListener(ln net.Listener) ServerOption {
	return func(s *Server) { s.ln = ln }
}

// NewServer creates a Server for addr (e.g. ":8080").
func NewServer(addr string, d Dispatcher, opts ...ServerOption) *Server {
	s := &Server{
		addr:       addr,
		dispatcher: d,
		logger:     slog.Default(),
		closed:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the TCP socket. Calling it again is a no-op.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.closed:
		return ErrServerClosed
	default:
	}
	if s.ln != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.ln = ln
	s.logger.Info("Listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until Close is called, then returns nil. It
// binds first when Listen has not been called. Close before Serve is also a
// clean stop.
func (s *Server) Serve() error {
	if err := s.Listen(); err != nil {
		if errors.Is(err, ErrServerClosed) {
			return nil
		}
		return err
	}
	for {
		err := s.accept()
		switch {
		case err == nil:
		case errors.Is(err, ErrServerClosed):
			return nil
		default:
			return err
		}
	}
}

// ServeOne accepts and handles exactly one connection.
func (s *Server) ServeOne() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.accept()
}

// Close closes the listening socket, unblocking a pending accept. It is
// idempotent; in-flight connections are left to finish.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.mu.Lock()
		ln := s.ln
		s.mu.Unlock()
		if ln != nil {
			s.closeErr = ln.Close()
		}
		s.logger.Info("Server closed")
	})
	return s.closeErr
}

func (s *Server) accept() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	conn, err := ln.Accept()
	if err != nil {
		select {
		case <-s.closed:
			return ErrServerClosed
		default:
		}
		if errors.Is(err, net.ErrClosed) {
			return ErrServerClosed
		}
		return fmt.Errorf("accept: %w", err)
	}
	s.handle(conn)
	return nil
}

// handle serves one connection. Handler failures are written as a 500
// body and never escape to the accept loop.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With("request_id", uuid.NewString(), "remote", conn.RemoteAddr().String())
	res := NewResponse(conn)

	req, err := ReadRequest(bufio.NewReader(conn))
	if err != nil {
		logger.Warn("Bad request", "error", err)
		if errors.Is(err, ErrMalformedRequest) {
			s.write(logger, res.BadRequest())
		}
		return
	}

	endpoint, ok := s.dispatcher.Dispatch(req.Path)
	if !ok {
		logger.Info("Route not found", "method", req.Method, "path", req.Path)
		s.write(logger, res.NotFound(req.Path))
		return
	}

	body, err := invoke(endpoint)
	if err != nil {
		logger.Error("Handler failed", "method", req.Method, "path", req.Path, "error", err)
		s.write(logger, res.ServerError(req.Path, err))
		return
	}

	logger.Info("Request served", "method", req.Method, "path", req.Path, "bytes", len(body))
	s.write(logger, res.Text(body))
}

func (s *Server) write(logger *slog.Logger, err error) {
	if err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

func invoke(e Endpoint) (body string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, p)
		}
	}()
	return e.Invoke()
}
