package wm

import (
	"github.com/bnema/tidal/internal/logger"
	"github.com/bnema/tidal/internal/wlproto"
)

// Mode is an output video mode.
type Mode struct {
	Width   int32
	Height  int32
	Refresh int32 // mHz
}

// OutputState is one snapshot of an output's triple. Pending is
// mutated by modeset glue and wm intent, Sent is what the wm client
// has been told, Current is what the backend last committed.
type OutputState struct {
	Mode         Mode
	Scale        float64
	Transform    int32
	AdaptiveSync bool
	X, Y         int32
	Enabled      bool
}

// OpState is the output's lifecycle state.
type OpState int

const (
	OpEnabled OpState = iota
	OpDisabledSoft
	OpDisabledHard
	OpDestroying
)

// LockRenderState tracks what the output is actually showing with
// respect to the session lock, driven by presentation events.
type LockRenderState int

const (
	LockRenderUnlocked LockRenderState = iota
	LockRenderPendingUnlock
	LockRenderPendingBlank
	LockRenderBlanked
	LockRenderPendingLockSurface
	LockRenderLockSurface
)

// Output is a logical screen.
type Output struct {
	ID   uint32
	Name string

	Pending OutputState
	Sent    OutputState
	Current OutputState

	Op         OpState
	LockRender LockRenderState

	wmSent     bool
	gammaDirty bool
}

// AddOutput starts managing an output and exposes it to the wm client.
func (w *WM) AddOutput(name string, mode Mode, scale float64, x, y int32) *Output {
	w.outputSerial++
	out := &Output{
		ID:   w.outputSerial,
		Name: name,
	}
	out.Pending = OutputState{
		Mode:    mode,
		Scale:   scale,
		X:       x,
		Y:       y,
		Enabled: true,
	}
	out.Current = out.Pending
	if w.lockState != LockStateUnlocked {
		// An output plugged in under a lock starts blank.
		out.LockRender = LockRenderPendingBlank
	}
	w.outputs[out.ID] = out
	w.outputOrder = append(w.outputOrder, out)
	logger.Infof("new output %q (id %d) %dx%d", name, out.ID, mode.Width, mode.Height)
	w.DirtyPending()
	return out
}

// Output resolves an output id.
func (w *WM) Output(id uint32) (*Output, bool) {
	out, ok := w.outputs[id]
	if !ok || out.Op == OpDestroying {
		return nil, false
	}
	return out, ok
}

// Outputs returns all managed outputs in creation order.
func (w *WM) Outputs() []*Output {
	return w.outputOrder
}

// SetOutputMode records a modeset into pending state.
func (w *WM) SetOutputMode(id uint32, mode Mode) {
	out, ok := w.Output(id)
	if !ok {
		return
	}
	out.Pending.Mode = mode
	w.DirtyPending()
}

// SetOutputPosition moves the output in layout space.
func (w *WM) SetOutputPosition(id uint32, x, y int32) {
	out, ok := w.Output(id)
	if !ok {
		return
	}
	out.Pending.X, out.Pending.Y = x, y
	w.DirtyPending()
}

// SetOutputScale records a scale change.
func (w *WM) SetOutputScale(id uint32, scale float64) {
	out, ok := w.Output(id)
	if !ok {
		return
	}
	out.Pending.Scale = scale
	w.DirtyPending()
}

// SetOutputAdaptiveSync toggles adaptive sync in pending state.
func (w *WM) SetOutputAdaptiveSync(id uint32, enabled bool) {
	out, ok := w.Output(id)
	if !ok {
		return
	}
	out.Pending.AdaptiveSync = enabled
	w.DirtyPending()
}

// EnableOutput re-enables a soft or hard disabled output.
func (w *WM) EnableOutput(id uint32) {
	out, ok := w.outputs[id]
	if !ok || out.Op == OpDestroying {
		return
	}
	if out.Op == OpDisabledHard {
		// Coming back from hard disable is a fresh exposure.
		out.wmSent = false
	}
	out.Op = OpEnabled
	out.Pending.Enabled = true
	w.DirtyPending()
}

// DisableOutput disables an output. A hard disable detaches it from
// the wm client's view; a soft disable keeps it visible.
func (w *WM) DisableOutput(id uint32, hard bool) {
	out, ok := w.outputs[id]
	if !ok || out.Op == OpDestroying {
		return
	}
	out.Pending.Enabled = false
	if hard {
		out.Op = OpDisabledHard
		if out.wmSent {
			out.wmSent = false
			w.removedOutputs = append(w.removedOutputs, id)
		}
	} else {
		out.Op = OpDisabledSoft
	}
	w.DirtyPending()
}

// RemoveOutput destroys an output. With a transaction inflight the
// storage lingers until its references drain; the wm sees the removal
// in the next update either way.
func (w *WM) RemoveOutput(id uint32) {
	out, ok := w.outputs[id]
	if !ok || out.Op == OpDestroying {
		return
	}
	out.Op = OpDestroying
	if out.wmSent {
		out.wmSent = false
		w.removedOutputs = append(w.removedOutputs, id)
	}
	if !w.txn.inflight {
		w.reapOutput(out)
	}
	w.DirtyPending()
}

func (w *WM) reapOutput(out *Output) {
	delete(w.outputs, out.ID)
	for i, o := range w.outputOrder {
		if o == out {
			w.outputOrder = append(w.outputOrder[:i], w.outputOrder[i+1:]...)
			break
		}
	}
}

// sendDirty appends the output's protocol deltas: creation on first
// exposure, then dimension and position changes. Sent snapshots
// pending afterwards.
func (o *Output) sendDirty(batch []wlproto.Envelope) []wlproto.Envelope {
	if o.Op == OpDisabledHard || o.Op == OpDestroying {
		return batch
	}
	if !o.wmSent {
		o.wmSent = true
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeOutputNew, wlproto.OutputNew{ID: o.ID, Name: o.Name}))
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeOutputDimensions, wlproto.OutputDimensions{
			ID: o.ID, Width: o.Pending.Mode.Width, Height: o.Pending.Mode.Height,
		}))
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeOutputPosition, wlproto.OutputPosition{
			ID: o.ID, X: o.Pending.X, Y: o.Pending.Y,
		}))
		o.Sent = o.Pending
		return batch
	}
	if o.Pending.Mode.Width != o.Sent.Mode.Width || o.Pending.Mode.Height != o.Sent.Mode.Height {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeOutputDimensions, wlproto.OutputDimensions{
			ID: o.ID, Width: o.Pending.Mode.Width, Height: o.Pending.Mode.Height,
		}))
	}
	if o.Pending.X != o.Sent.X || o.Pending.Y != o.Sent.Y {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeOutputPosition, wlproto.OutputPosition{
			ID: o.ID, X: o.Pending.X, Y: o.Pending.Y,
		}))
	}
	o.Sent = o.Pending
	return batch
}

// SetGammaDirty flags a pending gamma LUT update for the next frame.
func (w *WM) SetGammaDirty(id uint32) {
	if out, ok := w.Output(id); ok {
		out.gammaDirty = true
	}
}

// NotifyOutputCommit records a successful backend frame commit:
// pending output state becomes current.
func (w *WM) NotifyOutputCommit(id uint32) {
	out, ok := w.outputs[id]
	if !ok {
		return
	}
	out.Current = out.Pending
	out.gammaDirty = false
}

// HandleOutputCommitFailure handles a backend commit error: the frame
// is skipped and the gamma dirty flag cleared so the next frame does
// not retry a LUT the backend rejected.
func (w *WM) HandleOutputCommitFailure(id uint32, err error) {
	out, ok := w.outputs[id]
	if !ok {
		return
	}
	logger.Errorf("output %q commit failed: %v", out.Name, err)
	out.gammaDirty = false
}
