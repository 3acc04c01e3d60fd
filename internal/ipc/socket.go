package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/tidal/internal/logger"
)

// MessageHandler answers control queries. The compositor implements it
// by snapshotting core state on the event loop.
type MessageHandler interface {
	HandleStatus() (Response, error)
	HandleDump() (Response, error)
}

// SocketServer handles incoming control connections.
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    MessageHandler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// NewSocketServer creates a control socket server. Empty socketPath
// selects the default under XDG_RUNTIME_DIR.
func NewSocketServer(handler MessageHandler, socketPath string) (*SocketServer, error) {
	if socketPath == "" {
		var err error
		socketPath, err = DefaultSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get socket path: %w", err)
		}
	}
	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
	}, nil
}

// Start starts the socket server.
func (s *SocketServer) Start() error {
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

	logger.Infof("control socket listening at %s", s.socketPath)
	return nil
}

// Stop stops the socket server.
func (s *SocketServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()
	os.RemoveAll(s.socketPath)

	logger.Info("control socket stopped")
}

func (s *SocketServer) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Errorf("Failed to accept control connection: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req Request
		if err := readFrame(conn, &req); err != nil {
			logger.Debugf("control connection closed or read error: %v", err)
			return
		}

		resp := s.handleRequest(req)
		if err := writeFrame(conn, resp); err != nil {
			logger.Errorf("Failed to send control response: %v", err)
			return
		}
	}
}

func (s *SocketServer) handleRequest(req Request) Response {
	switch req.Type {
	case RequestStatus:
		resp, err := s.handler.HandleStatus()
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return resp
	case RequestDump:
		resp, err := s.handler.HandleDump()
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return resp
	default:
		return NewErrorResponse(fmt.Sprintf("unknown request type: %s", req.Type))
	}
}
