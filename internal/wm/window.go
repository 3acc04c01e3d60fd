// Package wm implements the window management core: the per-window
// state triple with its configure sub-state machine, the transaction
// coordinator that reconfigures all windows atomically, the update
// cycle that keeps the external window manager client in sync, and the
// output lifecycle.
//
// Everything in this package runs on one event loop. External
// callbacks (client acks, timers, socket reads) are marshalled onto it
// with Post; there are no locks.
package wm

import (
	"github.com/bnema/tidal/internal/geo"
	"github.com/bnema/tidal/internal/input"
	"github.com/bnema/tidal/internal/logger"
	"github.com/bnema/tidal/internal/scene"
)

// ConfigureState is the per-window configure sub-state machine.
//
//	idle -> inflight(S) -> acked -> committed -> idle
//
// with timeout edges inflight->timedOut and acked->timedOutAcked. The
// timed-out states are left by the next configure.
type ConfigureState int

const (
	ConfigureIdle ConfigureState = iota
	ConfigureInflight
	ConfigureAcked
	ConfigureCommitted
	ConfigureTimedOut
	ConfigureTimedOutAcked
)

func (s ConfigureState) String() string {
	switch s {
	case ConfigureIdle:
		return "idle"
	case ConfigureInflight:
		return "inflight"
	case ConfigureAcked:
		return "acked"
	case ConfigureCommitted:
		return "committed"
	case ConfigureTimedOut:
		return "timed_out"
	case ConfigureTimedOutAcked:
		return "timed_out_acked"
	}
	return "unknown"
}

// WindowState is one snapshot of the triple.
type WindowState struct {
	Box        geo.Box
	FocusCount int
	Fullscreen bool
	Urgent     bool
	SSD        bool
	Resizing   bool
}

// ConfigureRequest is what a configure carries to the client.
type ConfigureRequest struct {
	Serial     uint32
	Box        geo.Box
	Activated  bool
	Fullscreen bool
	Resizing   bool
	SSD        bool
}

// SurfaceClient is the compositor-facing side of a client surface: the
// core sends configures through it and asks it to close. Real glue
// adapts display-server objects; tests use fakes.
type SurfaceClient interface {
	Configure(req ConfigureRequest)
	SendFrameDone()
	CloseRequested()
}

// wmIntent is the window manager's double-buffered per-window intent.
type wmIntent struct {
	box        geo.Box
	hasBox     bool
	fullscreen bool
	ssd        bool
}

// windowDirty flags which per-window properties must go out in the
// next wm update.
type windowDirty struct {
	title       bool
	appID       bool
	constraints bool
	fsRequested bool
	interaction bool
}

func (d windowDirty) any() bool {
	return d.title || d.appID || d.constraints || d.fsRequested || d.interaction
}

// Window is a managed toplevel surface with its three ordered state
// snapshots: Pending is freely mutated, Inflight is frozen while a
// transaction is running, Current is what the renderer reads.
type Window struct {
	ID uint32

	client  SurfaceClient
	surface input.Surface

	Pending  WindowState
	Inflight WindowState
	Current  WindowState

	configureState  ConfigureState
	configureSerial uint32

	// Participation in the running transaction. While true, Inflight
	// is immutable.
	inflightTransaction bool

	// lastGeometry is the size of the client's last committed buffer,
	// used to keep borders honest when a transaction times out.
	lastGeometry geo.Box

	uncommitted      wmIntent
	committed        wmIntent
	uncommittedDirty bool

	// wm client bookkeeping
	wmSent bool
	dirty  windowDirty

	Title string
	AppID string

	MinWidth, MinHeight int32
	MaxWidth, MaxHeight int32

	fsRequested      bool
	interactionKind  string
	interactionEdges geo.Edges

	// Destroying windows linger while their saved tree keeps the old
	// frame renderable; storage is freed when the transaction clears.
	Destroying bool

	// Scene ownership: the window's sub-tree, surface node, saved
	// surface node, and four border rects.
	Tree        *scene.Node
	surfaceNode *scene.Node
	savedNode   *scene.Node
	borders     [4]*scene.Rect

	borderWidth int32
}

func newWindow(id uint32, client SurfaceClient, surface input.Surface, parent *scene.Node, borderWidth int32) *Window {
	w := &Window{
		ID:          id,
		client:      client,
		surface:     surface,
		borderWidth: borderWidth,
	}
	w.Tree = parent.NewChild()
	w.surfaceNode = w.Tree.NewChild()
	w.savedNode = w.Tree.NewChild()
	w.savedNode.SetEnabled(false)
	for i := range w.borders {
		w.borders[i] = w.Tree.NewRect(0, 0)
	}
	return w
}

// ConfigState returns the configure sub-state, for observers.
func (w *Window) ConfigState() ConfigureState {
	return w.configureState
}

// ConfigSerial returns the serial of the last emitted configure.
func (w *Window) ConfigSerial() uint32 {
	return w.configureSerial
}

// SavedEnabled reports whether the saved-surface tree is rendering the
// previous frame.
func (w *Window) SavedEnabled() bool {
	return w.savedNode.Enabled
}

// InTransaction reports whether the window participates in the running
// transaction.
func (w *Window) InTransaction() bool {
	return w.inflightTransaction
}

// applyPending copies pending into inflight. The sole pending->inflight
// path; illegal while the window is in a transaction.
func (w *Window) applyPending() {
	if w.inflightTransaction {
		// Guarded by the coordinator; reaching this is a logic error.
		logger.Errorf("applyPending on window %d during transaction", w.ID)
		return
	}
	w.Inflight = w.Pending
}

// configure emits a configure carrying the inflight state and reports
// whether the coordinator must wait for an ack. A width or height
// change, or a configure following a timed-out one, forces a wait;
// orthogonal flag changes are sent without one.
func (w *Window) configure(serial uint32) bool {
	sizeChanged := !w.Inflight.Box.SameSize(w.Current.Box)
	timedOut := w.configureState == ConfigureTimedOut || w.configureState == ConfigureTimedOutAcked

	flagsChanged := w.Inflight.Fullscreen != w.Current.Fullscreen ||
		w.Inflight.SSD != w.Current.SSD ||
		w.Inflight.Resizing != w.Current.Resizing ||
		(w.Inflight.FocusCount > 0) != (w.Current.FocusCount > 0)

	if !sizeChanged && !timedOut {
		if flagsChanged {
			// Flags-only configure: inform the client but do not hold
			// the transaction for it.
			w.client.Configure(w.configureRequest(serial))
			w.configureSerial = serial
		}
		return false
	}

	w.configureSerial = serial
	w.configureState = ConfigureInflight
	w.client.Configure(w.configureRequest(serial))
	return true
}

func (w *Window) configureRequest(serial uint32) ConfigureRequest {
	return ConfigureRequest{
		Serial:     serial,
		Box:        w.Inflight.Box,
		Activated:  w.Inflight.FocusCount > 0,
		Fullscreen: w.Inflight.Fullscreen,
		Resizing:   w.Inflight.Resizing,
		SSD:        w.Inflight.SSD,
	}
}

// ackConfigure handles the client's ack. Stale serials change nothing.
func (w *Window) ackConfigure(serial uint32) {
	switch w.configureState {
	case ConfigureInflight:
		if serial != w.configureSerial {
			logger.Errorf("window %d acked stale serial %d (inflight %d)", w.ID, serial, w.configureSerial)
			return
		}
		w.configureState = ConfigureAcked
	case ConfigureTimedOut:
		if serial != w.configureSerial {
			logger.Debugf("window %d acked stale serial %d after timeout", w.ID, serial)
			return
		}
		w.configureState = ConfigureTimedOutAcked
	default:
		// Acks for flags-only configures land here; nothing to do.
		logger.Debugf("window %d ack serial %d in state %s ignored", w.ID, serial, w.configureState)
	}
}

// commitTransaction atomically transfers inflight to current, drops the
// saved-surface tree and recomputes scene positions and borders. For
// windows that never acked (or acked without committing) the serial is
// stashed in a timed-out state and the rendered size falls back to the
// client's last observed geometry.
func (w *Window) commitTransaction() {
	switch w.configureState {
	case ConfigureInflight, ConfigureAcked:
		if w.configureState == ConfigureInflight {
			w.configureState = ConfigureTimedOut
		} else {
			w.configureState = ConfigureTimedOutAcked
		}
		w.Current = w.Inflight
		// The client has not reached the new size; render borders for
		// what is actually on screen.
		if !w.lastGeometry.Empty() {
			w.Current.Box.Width = w.lastGeometry.Width
			w.Current.Box.Height = w.lastGeometry.Height
		}
	case ConfigureIdle, ConfigureCommitted:
		w.configureState = ConfigureIdle
		w.Current = w.Inflight
	case ConfigureTimedOut, ConfigureTimedOutAcked:
		// Unreachable: these are re-entered by the next configure
		// before another transaction can commit.
		logger.Errorf("window %d committed transaction in state %s", w.ID, w.configureState)
		w.Current = w.Inflight
	}

	w.inflightTransaction = false
	w.dropSaved()
	w.updateSceneLayout()
}

// saveSurface keeps the old frame renderable for the duration of a
// transaction.
func (w *Window) saveSurface() {
	w.savedNode.SetEnabled(true)
}

func (w *Window) dropSaved() {
	w.savedNode.SetEnabled(false)
}

// updateSceneLayout positions the window tree and rebuilds the border
// rects from Current.
func (w *Window) updateSceneLayout() {
	box := w.Current.Box
	bw := w.borderWidth
	w.Tree.SetPosition(box.X, box.Y)
	w.surfaceNode.SetPosition(0, 0)

	showBorders := w.Current.SSD && !w.Current.Fullscreen
	for _, b := range w.borders {
		b.Node.SetEnabled(showBorders)
	}
	if !showBorders {
		return
	}
	// top, bottom, left, right
	w.borders[0].Node.SetPosition(-bw, -bw)
	w.borders[0].SetSize(box.Width+2*bw, bw)
	w.borders[1].Node.SetPosition(-bw, box.Height)
	w.borders[1].SetSize(box.Width+2*bw, bw)
	w.borders[2].Node.SetPosition(-bw, 0)
	w.borders[2].SetSize(bw, box.Height)
	w.borders[3].Node.SetPosition(box.Width, 0)
	w.borders[3].SetSize(bw, box.Height)
}

// Borders exposes the border rects to the renderer.
func (w *Window) Borders() [4]*scene.Rect {
	return w.borders
}
