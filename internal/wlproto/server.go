package wlproto

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/tidal/internal/logger"
)

// EventSink is where the core writes its batched update events. The
// socket server implements it; tests substitute a recorder.
type EventSink interface {
	// SendBatch writes a sealed batch of events to the wm client.
	SendBatch(envs []Envelope) error
	// Connected reports whether a wm client is attached.
	Connected() bool
}

// Server owns the wm protocol socket. Exactly one window manager client
// is served at a time; a second connection is refused. Incoming
// requests are decoded off the socket goroutine and posted onto the
// core event loop via Post.
type Server struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	conn       net.Conn
	handler    Handler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool

	// Post marshals a function onto the core event loop.
	Post func(fn func())
	// OnConnect runs on the core loop when a wm client attaches.
	OnConnect func()
	// OnDisconnect runs on the core loop when the wm client goes away.
	OnDisconnect func()
}

// NewServer creates the wm protocol server. If socketPath is empty a
// default under XDG_RUNTIME_DIR is used.
func NewServer(handler Handler, socketPath string, post func(fn func())) (*Server, error) {
	if socketPath == "" {
		var err error
		socketPath, err = DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		Post:       post,
	}, nil
}

// DefaultSocketPath returns the wm socket path for this session.
func DefaultSocketPath() (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, "tidal-wm.sock"), nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for the wm client.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("wm protocol socket listening at %s", s.socketPath)
	return nil
}

// Stop shuts the server down and removes the socket.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	os.RemoveAll(s.socketPath)

	logger.Info("wm protocol socket stopped")
}

func (s *Server) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Errorf("Failed to accept wm connection: %v", err)
				continue
			}
		}

		s.mu.Lock()
		if s.conn != nil {
			s.mu.Unlock()
			logger.Warn("Refusing second wm client connection")
			conn.Close()
			continue
		}
		s.conn = conn
		s.mu.Unlock()

		logger.Info("wm client connected")
		if s.OnConnect != nil {
			s.Post(s.OnConnect)
		}

		s.wg.Add(1)
		go s.readLoop(ctx, conn)
	}
}

func (s *Server) readLoop(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		conn.Close()
		logger.Info("wm client disconnected")
		if s.OnDisconnect != nil {
			s.Post(s.OnDisconnect)
		}
	}()

	for {
		env, err := ReadMessage(conn)
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				logger.Debugf("wm connection closed or read error: %v", err)
			}
			return
		}

		s.Post(func() {
			if err := Dispatch(s.handler, env); err != nil {
				// Protocol misuse: log and carry on.
				logger.Errorf("wm request rejected: %v", err)
			}
		})
	}
}

// SendBatch writes a sealed batch of events to the wm client. Without a
// connected client the batch is dropped; the full state is replayed on
// the next connect.
func (s *Server) SendBatch(envs []Envelope) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	for _, env := range envs {
		if err := WriteMessage(conn, env); err != nil {
			return fmt.Errorf("failed to send %s: %w", env.Type, err)
		}
	}
	return nil
}

// Connected reports whether a wm client is attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}
