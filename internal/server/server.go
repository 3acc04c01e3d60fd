// Package server assembles the compositor process: one global
// instance with an init -> run -> deinit lifecycle. Init order is
// config, the core (scene tree, output bookkeeping and session lock
// state), input management, the wm protocol socket, then the control
// socket; deinit stops the wm protocol socket and then the control
// socket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/bnema/tidal/internal/config"
	"github.com/bnema/tidal/internal/input"
	"github.com/bnema/tidal/internal/ipc"
	"github.com/bnema/tidal/internal/logger"
	"github.com/bnema/tidal/internal/session"
	"github.com/bnema/tidal/internal/wlproto"
	"github.com/bnema/tidal/internal/wm"
)

// Server is the compositor process singleton. Not re-entrant.
type Server struct {
	cfg *config.Config

	core  *wm.WM
	input *input.Manager
	seat  *input.Seat

	wmSock  *wlproto.Server
	ctlSock *ipc.SocketServer

	displayName string
}

// New builds the compositor in init order.
func New(cfg *config.Config, backend session.Backend) (*Server, error) {
	s := &Server{
		cfg:         cfg,
		displayName: waylandDisplayName(),
	}

	// Core (owns the scene tree and output bookkeeping).
	s.core = wm.New(wm.Config{
		TransactionTimeout: time.Duration(cfg.Compositor.TransactionTimeoutMS) * time.Millisecond,
		BorderWidth:        int32(cfg.Compositor.BorderWidth),
	}, nil)

	// Input.
	s.input = input.NewManager(s.core, backend)
	s.core.SetInput(s.input)
	s.seat = s.input.NewSeat("seat0")
	s.core.AnnounceSeat(s.seat)

	// WM protocol.
	wmSock, err := wlproto.NewServer(s.core, cfg.Compositor.WMSocketPath, s.core.Post)
	if err != nil {
		return nil, fmt.Errorf("failed to create wm socket: %w", err)
	}
	wmSock.OnConnect = s.core.HandleWmConnect
	wmSock.OnDisconnect = s.core.HandleWmDisconnect
	s.wmSock = wmSock
	s.core.SetSink(wmSock)

	// Control socket.
	ctlSock, err := ipc.NewSocketServer(&controlHandler{s: s}, cfg.Compositor.ControlSocketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create control socket: %w", err)
	}
	s.ctlSock = ctlSock

	return s, nil
}

// Core exposes the window management core to backend glue.
func (s *Server) Core() *wm.WM {
	return s.core
}

// Input exposes the input manager to backend glue.
func (s *Server) Input() *input.Manager {
	return s.input
}

// Seat returns the default seat.
func (s *Server) Seat() *input.Seat {
	return s.seat
}

// Run exports the session environment, starts the supervised socket
// services and drives the core event loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.exportEnv()

	sup := suture.New("tidal", suture.Spec{
		EventHook: supervisorEventHook(),
	})
	sup.Add(socketService{name: "wm-socket", start: s.wmSock.Start, stop: s.wmSock.Stop})
	sup.Add(socketService{name: "control-socket", start: s.ctlSock.Start, stop: s.ctlSock.Stop})

	supDone := sup.ServeBackground(ctx)

	logger.Infof("compositor running on %s", s.displayName)
	s.core.Run(ctx)

	// Deinit: protocol clients go first, backend resources after.
	s.wmSock.Stop()
	s.ctlSock.Stop()
	<-supDone
	return nil
}

// exportEnv publishes the environment the core produces for child
// processes and clients.
func (s *Server) exportEnv() {
	os.Setenv("WAYLAND_DISPLAY", s.displayName)
	os.Setenv("XCURSOR_SIZE", strconv.Itoa(s.cfg.Cursor.Size))
	if s.cfg.Cursor.Theme != "" {
		os.Setenv("XCURSOR_THEME", s.cfg.Cursor.Theme)
	}
}

func waylandDisplayName() string {
	if d := os.Getenv("WAYLAND_DISPLAY"); d != "" {
		return d
	}
	return "wayland-1"
}

// controlHandler answers control queries by snapshotting core state on
// the event loop.
type controlHandler struct {
	s *Server
}

func (h *controlHandler) snapshot() wm.StateSnapshot {
	done := make(chan wm.StateSnapshot, 1)
	h.s.core.Post(func() {
		done <- h.s.core.Snapshot()
	})
	return <-done
}

func (h *controlHandler) HandleStatus() (ipc.Response, error) {
	snap := h.snapshot()
	return ipc.Response{
		Type: "status",
		Status: &ipc.StatusResponse{
			Running:             true,
			WMConnected:         snap.WMConnected,
			Windows:             len(snap.Windows),
			Outputs:             len(snap.Outputs),
			Seats:               len(snap.Seats),
			Locked:              snap.Locked,
			TransactionInflight: snap.TransactionInflight,
			WaylandDisplay:      h.s.displayName,
		},
	}, nil
}

func (h *controlHandler) HandleDump() (ipc.Response, error) {
	snap := h.snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return ipc.Response{}, fmt.Errorf("failed to marshal state: %w", err)
	}
	return ipc.Response{Type: "dump", Dump: data}, nil
}

// socketService adapts a Start/Stop socket server to suture.
type socketService struct {
	name  string
	start func() error
	stop  func()
}

func (s socketService) String() string {
	return s.name
}

func (s socketService) Serve(ctx context.Context) error {
	if err := s.start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.stop()
	return ctx.Err()
}

// supervisorEventHook routes supervisor events through the logger.
func supervisorEventHook() suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logger.Warnf("service %s failed to stop in time", e.ServiceName)
		case suture.EventServicePanic:
			logger.Errorf("service panic: %s", e.PanicMsg)
			logger.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			logger.Errorf("service %s failed: %v", e.ServiceName, e.Err)
		case suture.EventBackoff:
			logger.Debugf("supervisor %s entering backoff", e.SupervisorName)
		case suture.EventResume:
			logger.Debugf("supervisor %s leaving backoff", e.SupervisorName)
		default:
			logger.Debugf("supervisor event: %v", ei)
		}
	}
}
