package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/simplay/internal/protocol"
)

// requestTimeout bounds how long a client may take to send its request.
const requestTimeout = 10 * time.Second

// RequestHandler answers a single control request.
type RequestHandler interface {
	Handle(ctx context.Context, req protocol.Request) protocol.Response
}

// Server accepts control connections on a unix socket. Each connection
// carries one request and one response and is served on its own goroutine.
type Server struct {
	socketPath string
	handler    RequestHandler
	logger     zerolog.Logger

	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a server for socketPath.
func NewServer(socketPath string, handler RequestHandler, logger zerolog.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger.With().Str("component", "server").Logger(),
	}
}

// Listen removes a stale socket file and binds the control socket with
// owner-only permissions.
func (s *Server) Listen() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = ln
	s.logger.Info().Str("socket", s.socketPath).Msg("Listening")
	return nil
}

// Serve accepts connections until ctx is cancelled, then waits for
// in-flight requests and removes the socket file. Listen must be called
// first.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	defer func() {
		s.wg.Wait()
		_ = os.Remove(s.socketPath)
		s.logger.Info().Msg("Server stopped")
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Warn().Err(err).Msg("Accept failed")
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	logger := s.logger.With().Str("conn", uuid.NewString()).Logger()

	_ = conn.SetReadDeadline(time.Now().Add(requestTimeout))

	var req protocol.Request
	if err := protocol.ReadMessage(bufio.NewReader(conn), &req); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		logger.Debug().Err(err).Msg("Invalid request")
		s.reply(logger, conn, protocol.Fail("Invalid request"))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	logger.Debug().Str("cmd", req.Cmd).Msg("Request")
	s.reply(logger, conn, s.handler.Handle(ctx, req))
}

func (s *Server) reply(logger zerolog.Logger, conn net.Conn, resp protocol.Response) {
	if err := protocol.WriteMessage(conn, resp); err != nil {
		logger.Debug().Err(err).Msg("Failed to write response")
	}
}
