package wm

import (
	"github.com/bnema/tidal/internal/geo"
	"github.com/bnema/tidal/internal/input"
)

// The WM implements input.Core: the input pipeline mutates pending
// window state through these methods and the transaction machinery
// reconciles it with the clients.

// TargetAt returns the topmost live window surface under a layout
// point. Under a session lock normal content is not a valid target.
func (w *WM) TargetAt(lx, ly float64) (input.Target, bool) {
	if w.Locked() {
		return input.Target{}, false
	}
	for _, win := range w.order {
		if win.Destroying {
			continue
		}
		if win.Current.Box.Contains(lx, ly) {
			return input.Target{
				Window:  win.ID,
				Surface: win.surface,
				SX:      lx - float64(win.Current.Box.X),
				SY:      ly - float64(win.Current.Box.Y),
			}, true
		}
	}
	return input.Target{}, false
}

// WindowSurface resolves a window id to its surface, the validation
// point for every weak focus reference.
func (w *WM) WindowSurface(id uint32) (input.Surface, bool) {
	win, ok := w.Window(id)
	if !ok {
		return nil, false
	}
	return win.surface, true
}

// AdjustFocus changes a window's pending focus count. The activation
// flag rides out with the next transaction's configures.
func (w *WM) AdjustFocus(id uint32, delta int) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.Pending.FocusCount += delta
	if win.Pending.FocusCount < 0 {
		win.Pending.FocusCount = 0
	}
	w.applyPendingAll()
}

// ResizeWindowBy grows or shrinks the pending box along the given
// edges. Interactive ops go through the same transaction path as
// wm-driven layout.
func (w *WM) ResizeWindowBy(id uint32, edges geo.Edges, dx, dy int32) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	min := int32(1)
	if win.MinWidth > min {
		min = win.MinWidth
	}
	win.Pending.Box = win.Pending.Box.Resize(edges, dx, dy, min)
	w.applyPendingAll()
}

// MoveWindowBy translates the pending box.
func (w *WM) MoveWindowBy(id uint32, dx, dy int32) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	win.Pending.Box.X += dx
	win.Pending.Box.Y += dy
	w.applyPendingAll()
}

// SetResizing toggles the resizing hint carried by configures.
func (w *WM) SetResizing(id uint32, resizing bool) {
	win, ok := w.Window(id)
	if !ok {
		return
	}
	if win.Pending.Resizing == resizing {
		return
	}
	win.Pending.Resizing = resizing
	w.applyPendingAll()
}
