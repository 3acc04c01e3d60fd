package wm

import (
	"github.com/bnema/tidal/internal/logger"
)

// LockState is the compositor-wide session lock state.
type LockState int

const (
	// LockStateUnlocked renders normal content.
	LockStateUnlocked LockState = iota
	// LockStateWaiting hides normal content but not every output has
	// presented a blank or lock-surface frame yet.
	LockStateWaiting
	// LockStateLocked means every output is observably blanked or
	// showing a lock surface.
	LockStateLocked
)

// Locked reports whether a session lock is in effect. Input routing
// and hit testing consult this.
func (w *WM) Locked() bool {
	return w.lockState != LockStateUnlocked
}

// SessionLockState returns the lock state, for observers.
func (w *WM) SessionLockState() LockState {
	return w.lockState
}

// LockSession starts a session lock. Normal content is hidden and Locked
// reports true at once; the state reaches LockStateLocked only after
// every output has presented a blank or lock-surface frame.
func (w *WM) LockSession() {
	if w.lockState != LockStateUnlocked {
		return
	}
	w.lockState = LockStateWaiting
	for _, out := range w.outputOrder {
		out.LockRender = LockRenderPendingBlank
	}
	w.checkFullyLocked()
	logger.Info("session locking")
}

// UnlockSession lifts the lock. Outputs transition back through
// pending_unlock as they present normal content again.
func (w *WM) UnlockSession() {
	if w.lockState == LockStateUnlocked {
		return
	}
	w.lockState = LockStateUnlocked
	for _, out := range w.outputOrder {
		out.LockRender = LockRenderPendingUnlock
	}
	logger.Info("session unlocked")
}

// SetLockSurface records that a lock surface was committed for the
// output; the next presentation shows it instead of the blank frame.
func (w *WM) SetLockSurface(outputID uint32) {
	out, ok := w.outputs[outputID]
	if !ok || w.lockState == LockStateUnlocked {
		return
	}
	out.LockRender = LockRenderPendingLockSurface
}

// NotifyOutputPresent records a successful presentation event and
// advances the output's lock render state.
func (w *WM) NotifyOutputPresent(outputID uint32) {
	out, ok := w.outputs[outputID]
	if !ok {
		return
	}
	switch out.LockRender {
	case LockRenderPendingBlank:
		out.LockRender = LockRenderBlanked
		w.checkFullyLocked()
	case LockRenderPendingLockSurface:
		out.LockRender = LockRenderLockSurface
		w.checkFullyLocked()
	case LockRenderPendingUnlock:
		out.LockRender = LockRenderUnlocked
	}
}

// checkFullyLocked flips waiting to locked once every output shows
// hidden content.
func (w *WM) checkFullyLocked() {
	if w.lockState != LockStateWaiting {
		return
	}
	for _, out := range w.outputOrder {
		if out.Op == OpDestroying {
			continue
		}
		if out.LockRender != LockRenderBlanked && out.LockRender != LockRenderLockSurface {
			return
		}
	}
	w.lockState = LockStateLocked
	logger.Info("session fully locked")
}
