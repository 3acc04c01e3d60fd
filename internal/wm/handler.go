package wm

import (
	"github.com/bnema/tidal/internal/geo"
	"github.com/bnema/tidal/internal/logger"
)

// The WM implements wlproto.Handler. Requests between update and
// commit mutate only the uncommitted side of the double-buffered
// configuration; commit promotes everything at once so input and
// layout code never observe a half-applied reply.

// HandleAckUpdate acknowledges the outstanding update.
func (w *WM) HandleAckUpdate(serial uint32) {
	if !w.updateInflight || serial != w.updateSerial {
		logger.Errorf("wm acked stale update serial %d (inflight %d)", serial, w.updateSerial)
		return
	}
	w.updateAcked = true
}

// HandleCommit seals the wm's reply: promote uncommitted state, apply
// focus directives, then reconcile the window set in one transaction.
func (w *WM) HandleCommit() {
	// A commit replying to a sealed update must ack it first.
	// Spontaneous commits between updates are fine.
	if w.updateInflight && !w.updateAcked {
		logger.Error("wm commit without ack_update, ignoring")
		return
	}

	for _, win := range w.windows {
		if win.Destroying {
			continue
		}
		if win.uncommittedDirty {
			win.committed = win.uncommitted
			win.uncommittedDirty = false
		}
		if win.committed.hasBox {
			win.Pending.Box = win.committed.box
		}
		win.Pending.Fullscreen = win.committed.fullscreen
		win.Pending.SSD = win.committed.ssd
	}

	if w.input != nil {
		w.input.CommitBindings()
	}

	focus := w.pendingFocus
	w.pendingFocus = nil
	for _, req := range focus {
		w.input.FocusWindow(req.seat, req.window)
	}

	w.updateInflight = false
	w.updateAcked = false

	w.applyPendingAll()
	w.flushUpdates()
}

// HandleWindowPropose buffers the wm's intended box for a window.
func (w *WM) HandleWindowPropose(id uint32, box geo.Box) {
	win, ok := w.Window(id)
	if !ok {
		logger.Errorf("propose for unknown window %d", id)
		return
	}
	win.uncommitted.box = box
	win.uncommitted.hasBox = true
	win.uncommittedDirty = true
}

// HandleWindowFullscreen buffers the wm's fullscreen intent.
func (w *WM) HandleWindowFullscreen(id uint32, fullscreen bool) {
	win, ok := w.Window(id)
	if !ok {
		logger.Errorf("fullscreen for unknown window %d", id)
		return
	}
	win.uncommitted.fullscreen = fullscreen
	win.uncommittedDirty = true
}

// HandleWindowDecorations buffers the decoration mode.
func (w *WM) HandleWindowDecorations(id uint32, ssd bool) {
	win, ok := w.Window(id)
	if !ok {
		logger.Errorf("decorations for unknown window %d", id)
		return
	}
	win.uncommitted.ssd = ssd
	win.uncommittedDirty = true
}

// HandleWindowFocus buffers a focus directive, applied on commit.
func (w *WM) HandleWindowFocus(seat, id uint32) {
	w.pendingFocus = append(w.pendingFocus, focusReq{seat: seat, window: id})
}

// HandleWindowClose forwards a close request to the client.
func (w *WM) HandleWindowClose(id uint32) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.client.CloseRequested()
}

// HandleSeatOpMove starts the interactive move op.
func (w *WM) HandleSeatOpMove(seat, window uint32) {
	w.input.StartMove(seat, window)
}

// HandleSeatOpResize starts the interactive resize op.
func (w *WM) HandleSeatOpResize(seat, window, edges uint32) {
	w.input.StartResize(seat, window, edges)
}

// Binding requests forward to the input manager; enable/disable and
// layout overrides stay buffered there until commit.

func (w *WM) HandlePointerBindingCreate(id, seat, button, mods uint32) {
	w.input.CreatePointerBinding(id, seat, button, mods)
}

func (w *WM) HandleXkbBindingCreate(id, seat, keysym, mods uint32) {
	w.input.CreateXkbBinding(id, seat, keysym, mods)
}

func (w *WM) HandleBindingEnable(id uint32) {
	w.input.SetBindingEnabled(id, true)
}

func (w *WM) HandleBindingDisable(id uint32) {
	w.input.SetBindingEnabled(id, false)
}

func (w *WM) HandleBindingLayoutOverride(id uint32, layout int) {
	w.input.SetBindingLayoutOverride(id, layout)
}

func (w *WM) HandleBindingDestroy(id uint32) {
	w.input.DestroyBinding(id)
}
