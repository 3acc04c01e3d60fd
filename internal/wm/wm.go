package wm

import (
	"context"
	"time"

	"github.com/bnema/tidal/internal/geo"
	"github.com/bnema/tidal/internal/input"
	"github.com/bnema/tidal/internal/logger"
	"github.com/bnema/tidal/internal/scene"
	"github.com/bnema/tidal/internal/wlproto"
)

// Config carries the core's tunables.
type Config struct {
	// TransactionTimeout bounds the wait for configure acks.
	TransactionTimeout time.Duration
	// BorderWidth in logical pixels.
	BorderWidth int32
}

// transaction tracks the single inflight reconfiguration.
type transaction struct {
	inflight    bool
	serial      uint32
	pendingAcks int
	windows     []*Window
	timer       *time.Timer
	queued      bool
}

// focusReq is a buffered wm focus request, applied on commit.
type focusReq struct {
	seat   uint32
	window uint32
}

// WM is the window management core. One instance per compositor; all
// methods must run on the core event loop.
type WM struct {
	cfg   Config
	sink  wlproto.EventSink
	input *input.Manager

	events chan func()

	sceneRoot   *scene.Node
	windowLayer *scene.Node

	windows      map[uint32]*Window
	order        []*Window // topmost first
	windowSerial uint32

	outputs      map[uint32]*Output
	outputOrder  []*Output
	outputSerial uint32

	seats         []*input.Seat
	seatAnnounced map[uint32]bool

	// deltas queued for the next wm update
	closedWindows  []uint32
	removedOutputs []uint32

	// update cycle state
	updateSerial   uint32
	updateInflight bool
	updateAcked    bool
	pendingDirty   bool

	pendingFocus []focusReq

	txn             transaction
	configureSerial uint32

	lockState LockState
}

// New creates the core. The sink is where update batches go; tests
// pass a recorder.
func New(cfg Config, sink wlproto.EventSink) *WM {
	if cfg.TransactionTimeout == 0 {
		cfg.TransactionTimeout = 200 * time.Millisecond
	}
	root := scene.NewTree()
	return &WM{
		cfg:           cfg,
		sink:          sink,
		events:        make(chan func(), 256),
		sceneRoot:     root,
		windowLayer:   root.NewChild(),
		windows:       make(map[uint32]*Window),
		outputs:       make(map[uint32]*Output),
		seatAnnounced: make(map[uint32]bool),
	}
}

// SetInput wires the input manager. Must happen before any event is
// processed.
func (w *WM) SetInput(m *input.Manager) {
	w.input = m
}

// SetSink wires the wm event sink once the protocol server exists.
func (w *WM) SetSink(sink wlproto.EventSink) {
	w.sink = sink
}

// SceneRoot exposes the scene tree root to the renderer and glue.
func (w *WM) SceneRoot() *scene.Node {
	return w.sceneRoot
}

// Post marshals fn onto the core event loop.
func (w *WM) Post(fn func()) {
	w.events <- fn
}

// Run drives the event loop until ctx is cancelled.
func (w *WM) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-w.events:
			fn()
		}
	}
}

// AnnounceSeat exposes a seat to the wm client.
func (w *WM) AnnounceSeat(s *input.Seat) {
	w.seats = append(w.seats, s)
	w.DirtyPending()
}

// CreateWindow starts managing a mapped toplevel surface.
func (w *WM) CreateWindow(client SurfaceClient, surface input.Surface) *Window {
	w.windowSerial++
	win := newWindow(w.windowSerial, client, surface, w.windowLayer, w.cfg.BorderWidth)
	w.windows[win.ID] = win
	w.order = append([]*Window{win}, w.order...)
	logger.Debugf("new window %d", win.ID)
	w.DirtyPending()
	return win
}

// Window resolves an id to a live window.
func (w *WM) Window(id uint32) (*Window, bool) {
	win, ok := w.windows[id]
	if !ok || win.Destroying {
		return nil, false
	}
	return win, ok
}

// Windows returns the live windows, topmost first.
func (w *WM) Windows() []*Window {
	return w.order
}

// DestroyWindow stops managing a window. Mid-transaction the window
// lingers with its saved frame until the transaction clears; its ack
// slot is satisfied immediately.
func (w *WM) DestroyWindow(id uint32) {
	win, ok := w.windows[id]
	if !ok {
		return
	}

	w.input.WindowClosed(id)
	w.removeFromOrder(win)

	if win.wmSent {
		w.closedWindows = append(w.closedWindows, id)
	}

	if win.inflightTransaction {
		win.Destroying = true
		if win.configureState == ConfigureInflight || win.configureState == ConfigureAcked {
			// The dead window can never finish its round trip; its
			// slot is satisfied.
			win.configureState = ConfigureIdle
			w.windowConfigured(win)
		}
		w.DirtyPending()
		return
	}

	delete(w.windows, id)
	win.Tree.Destroy()
	w.DirtyPending()
}

func (w *WM) removeFromOrder(win *Window) {
	for i, o := range w.order {
		if o == win {
			w.order = append(w.order[:i], w.order[i+1:]...)
			return
		}
	}
}

// RaiseWindow moves a window to the top of the hit-test order.
func (w *WM) RaiseWindow(id uint32) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	w.removeFromOrder(win)
	w.order = append([]*Window{win}, w.order...)
}

// AckConfigure handles a client's ack_configure.
func (w *WM) AckConfigure(id, serial uint32) {
	win, ok := w.windows[id]
	if !ok {
		logger.Debugf("ack_configure for unknown window %d", id)
		return
	}
	win.ackConfigure(serial)
}

// CommitSurface handles a client surface commit carrying a buffer of
// the given size.
func (w *WM) CommitSurface(id uint32, width, height int32) {
	win, ok := w.windows[id]
	if !ok {
		return
	}
	win.lastGeometry = geo.Box{Width: width, Height: height}

	switch win.configureState {
	case ConfigureAcked:
		win.configureState = ConfigureCommitted
		w.windowConfigured(win)
	case ConfigureIdle:
		if width != win.Current.Box.Width || height != win.Current.Box.Height {
			// Client committed a size nobody asked for. Accept it but
			// keep the borders consistent with what is on screen.
			logger.Warnf("window %d committed %dx%d, expected %dx%d",
				id, width, height, win.Current.Box.Width, win.Current.Box.Height)
			win.Current.Box.Width = width
			win.Current.Box.Height = height
			win.updateSceneLayout()
		}
	default:
		// Commits while inflight or timed out neither advance nor
		// break the machine; the ack is what moves it.
	}
}

// SetWindowTitle records a title change for the next wm update.
func (w *WM) SetWindowTitle(id uint32, title string) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.Title = title
	win.dirty.title = true
	w.DirtyPending()
}

// SetWindowAppID records an app id change.
func (w *WM) SetWindowAppID(id uint32, appID string) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.AppID = appID
	win.dirty.appID = true
	w.DirtyPending()
}

// SetWindowConstraints records the client's min/max size hints.
func (w *WM) SetWindowConstraints(id uint32, minW, minH, maxW, maxH int32) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.MinWidth, win.MinHeight = minW, minH
	win.MaxWidth, win.MaxHeight = maxW, maxH
	win.dirty.constraints = true
	w.DirtyPending()
}

// RequestFullscreen records the client's own fullscreen wish for the
// wm to arbitrate.
func (w *WM) RequestFullscreen(id uint32, fullscreen bool) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.fsRequested = fullscreen
	win.dirty.fsRequested = true
	w.DirtyPending()
}

// RequestInteraction records a client-initiated interactive op request
// (kind "move" or "resize"). Touch and tablet initiated requests reach
// here too and are forwarded; arbitration is the wm's.
func (w *WM) RequestInteraction(id uint32, kind string, edges geo.Edges) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.interactionKind = kind
	win.interactionEdges = edges
	win.dirty.interaction = true
	w.DirtyPending()
}

// SetUrgent flags a window urgent in pending state.
func (w *WM) SetUrgent(id uint32, urgent bool) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.Pending.Urgent = urgent
	w.DirtyPending()
}

func (w *WM) nextConfigureSerial() uint32 {
	w.configureSerial++
	return w.configureSerial
}
