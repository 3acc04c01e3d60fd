package wm

import (
	"github.com/bnema/tidal/internal/logger"
	"github.com/bnema/tidal/internal/wlproto"
)

// DirtyPending notes that pending compositor state changed and, when
// the wm client is ready for another update, sends one. Calls are
// debounced: while an update is inflight nothing is sent and the dirt
// accumulates.
func (w *WM) DirtyPending() {
	w.pendingDirty = true
	w.flushUpdates()
}

func (w *WM) flushUpdates() {
	if !w.pendingDirty || w.updateInflight || w.sink == nil || !w.sink.Connected() {
		return
	}

	batch := w.collectDeltas()
	w.pendingDirty = false

	w.updateSerial++
	batch = append(batch, wlproto.MustEnvelope(wlproto.TypeUpdate, wlproto.Update{Serial: w.updateSerial}))
	w.updateInflight = true
	w.updateAcked = false

	if err := w.sink.SendBatch(batch); err != nil {
		logger.Errorf("failed to send wm update %d: %v", w.updateSerial, err)
		w.updateInflight = false
		w.pendingDirty = true
	}
}

// collectDeltas builds the batched delta since the last update: output
// removals and window closures first, then each output's and each
// window's creation and property deltas, new seats, and finally binding
// press/release events.
func (w *WM) collectDeltas() []wlproto.Envelope {
	var batch []wlproto.Envelope

	for _, id := range w.removedOutputs {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeOutputRemoved, wlproto.OutputRemoved{ID: id}))
	}
	w.removedOutputs = nil

	for _, id := range w.closedWindows {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeWindowClosed, wlproto.WindowClosed{ID: id}))
	}
	w.closedWindows = nil

	for _, out := range w.outputOrder {
		batch = out.sendDirty(batch)
	}

	// Iterate bottom-up so the wm sees windows in stacking order.
	for i := len(w.order) - 1; i >= 0; i-- {
		batch = w.collectWindowDeltas(w.order[i], batch)
	}

	for _, s := range w.seats {
		if !w.seatAnnounced[s.ID] {
			w.seatAnnounced[s.ID] = true
			batch = append(batch, wlproto.MustEnvelope(wlproto.TypeSeatNew, wlproto.SeatNew{ID: s.ID, Name: s.Name}))
		}
	}

	if w.input != nil {
		for _, d := range w.input.CollectDeltas() {
			t := wlproto.TypeBindingPressed
			if !d.Pressed {
				t = wlproto.TypeBindingReleased
			}
			batch = append(batch, wlproto.MustEnvelope(t, wlproto.BindingEvent{ID: d.ID}))
		}
	}

	return batch
}

func (w *WM) collectWindowDeltas(win *Window, batch []wlproto.Envelope) []wlproto.Envelope {
	if !win.wmSent {
		win.wmSent = true
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeWindowNew, wlproto.WindowNew{ID: win.ID}))
		// First exposure carries the full property set.
		win.dirty = windowDirty{
			title:       win.Title != "",
			appID:       win.AppID != "",
			constraints: win.MinWidth != 0 || win.MinHeight != 0 || win.MaxWidth != 0 || win.MaxHeight != 0,
			fsRequested: win.fsRequested,
			interaction: false,
		}
	}
	if !win.dirty.any() {
		return batch
	}

	if win.dirty.title {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeWindowTitle, wlproto.WindowTitle{ID: win.ID, Title: win.Title}))
	}
	if win.dirty.appID {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeWindowAppID, wlproto.WindowAppID{ID: win.ID, AppID: win.AppID}))
	}
	if win.dirty.constraints {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeWindowConstraints, wlproto.WindowConstraints{
			ID:        win.ID,
			MinWidth:  win.MinWidth,
			MinHeight: win.MinHeight,
			MaxWidth:  win.MaxWidth,
			MaxHeight: win.MaxHeight,
		}))
	}
	if win.dirty.fsRequested {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeWindowFSRequested, wlproto.WindowFSRequested{
			ID:         win.ID,
			Fullscreen: win.fsRequested,
		}))
	}
	if win.dirty.interaction {
		batch = append(batch, wlproto.MustEnvelope(wlproto.TypeWindowInteraction, wlproto.WindowInteraction{
			ID:    win.ID,
			Kind:  win.interactionKind,
			Edges: uint32(win.interactionEdges),
		}))
	}
	win.dirty = windowDirty{}
	return batch
}

// HandleWmConnect replays the full compositor state to a freshly
// attached wm client.
func (w *WM) HandleWmConnect() {
	w.updateInflight = false
	w.updateAcked = false
	for _, win := range w.windows {
		win.wmSent = false
	}
	for _, out := range w.outputs {
		out.wmSent = false
	}
	w.seatAnnounced = make(map[uint32]bool)
	w.pendingDirty = true
	w.flushUpdates()
	logger.Info("wm client attached, state replayed")
}

// HandleWmDisconnect tears down everything the wm client owned. Its
// protocol objects die with it, bindings included.
func (w *WM) HandleWmDisconnect() {
	w.updateInflight = false
	w.updateAcked = false
	w.pendingFocus = nil
	if w.input != nil {
		w.input.DestroyAllBindings()
	}
	logger.Warn("wm client detached")
}
