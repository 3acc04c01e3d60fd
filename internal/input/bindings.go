package input

import (
	"github.com/bnema/tidal/internal/logger"
)

// Binding is a pointer button or keysym trigger owned by the window
// manager client. Enabled state and the layout override are double
// buffered: requests mutate the uncommitted side, and only a wm commit
// promotes them to the committed side the dispatcher reads.
type Binding struct {
	ID   uint32
	Seat uint32

	// Trigger: exactly one of the two is meaningful.
	Pointer bool
	Button  uint32
	Keysym  uint32

	Mods uint32

	uncommittedEnabled bool
	committedEnabled   bool

	// Layout override pins keysym resolution to a layout index. -1
	// means no override.
	uncommittedLayout int
	committedLayout   int

	// holds counts how many physical trackers (per-keyboard eaten
	// entries, per-seat pressed buttons) currently hold the binding
	// down. sentPressed suppresses duplicate pressed events while the
	// first hold is still live.
	holds       int
	sentPressed bool
}

// Enabled reports the committed enabled state.
func (b *Binding) Enabled() bool {
	return b.committedEnabled
}

// Layout returns the committed layout override, or -1.
func (b *Binding) Layout() int {
	return b.committedLayout
}

// BindingDelta is a press or release waiting to be sent to the wm
// client in the next update batch.
type BindingDelta struct {
	ID      uint32
	Pressed bool
}

// CreatePointerBinding registers a pointer button binding. Bindings
// start enabled; subsequent enable/disable is buffered.
func (m *Manager) CreatePointerBinding(id, seatID, button, mods uint32) {
	m.createBinding(&Binding{
		ID:      id,
		Seat:    seatID,
		Pointer: true,
		Button:  button,
		Mods:    mods,
	})
}

// CreateXkbBinding registers a keysym binding.
func (m *Manager) CreateXkbBinding(id, seatID, keysym, mods uint32) {
	m.createBinding(&Binding{
		ID:     id,
		Seat:   seatID,
		Keysym: keysym,
		Mods:   mods,
	})
}

func (m *Manager) createBinding(b *Binding) {
	if _, ok := m.bindings[b.ID]; ok {
		logger.Errorf("wm client reused binding id %d, ignoring", b.ID)
		return
	}
	if _, ok := m.seats[b.Seat]; !ok {
		logger.Errorf("binding %d references unknown seat %d, ignoring", b.ID, b.Seat)
		return
	}
	b.uncommittedEnabled = true
	b.committedEnabled = true
	b.uncommittedLayout = -1
	b.committedLayout = -1
	m.bindings[b.ID] = b
}

// SetBindingEnabled buffers an enable/disable request.
func (m *Manager) SetBindingEnabled(id uint32, enabled bool) {
	b, ok := m.bindings[id]
	if !ok {
		logger.Errorf("enable/disable for unknown binding %d", id)
		return
	}
	b.uncommittedEnabled = enabled
}

// SetBindingLayoutOverride buffers a layout override request.
func (m *Manager) SetBindingLayoutOverride(id uint32, layout int) {
	b, ok := m.bindings[id]
	if !ok {
		logger.Errorf("layout override for unknown binding %d", id)
		return
	}
	b.uncommittedLayout = layout
}

// CommitBindings promotes all uncommitted binding state. Called by the
// core when the wm commits an update reply.
func (m *Manager) CommitBindings() {
	for _, b := range m.bindings {
		b.committedEnabled = b.uncommittedEnabled
		b.committedLayout = b.uncommittedLayout
	}
}

// DestroyBinding drops a binding. Slots it holds in pressed tables are
// cleared so a later release becomes a no-op for the dead binding.
func (m *Manager) DestroyBinding(id uint32) {
	b, ok := m.bindings[id]
	if !ok {
		logger.Errorf("destroy for unknown binding %d", id)
		return
	}
	delete(m.bindings, id)
	for _, seat := range m.seats {
		seat.clearBinding(b)
	}
}

// DestroyAllBindings drops every binding, for wm client disconnect.
func (m *Manager) DestroyAllBindings() {
	for id := range m.bindings {
		m.DestroyBinding(id)
	}
}

// CollectDeltas drains the queued binding press/release events in
// order. The caller seals them into the outgoing update batch.
func (m *Manager) CollectDeltas() []BindingDelta {
	deltas := m.deltas
	m.deltas = nil
	return deltas
}

// bindingPress records one more hold on the binding and queues a
// pressed event unless one is already outstanding.
func (m *Manager) bindingPress(b *Binding) {
	b.holds++
	if b.sentPressed {
		// A second device fired the binding while it is down; the wm
		// already knows.
		return
	}
	b.sentPressed = true
	m.deltas = append(m.deltas, BindingDelta{ID: b.ID, Pressed: true})
	m.core.DirtyPending()
}

// bindingRelease drops one hold and queues the released event once the
// final holder lets go.
func (m *Manager) bindingRelease(b *Binding) {
	if b.holds > 0 {
		b.holds--
	}
	if b.holds > 0 || !b.sentPressed {
		return
	}
	b.sentPressed = false
	m.deltas = append(m.deltas, BindingDelta{ID: b.ID, Pressed: false})
	m.core.DirtyPending()
}

// matchPointerBinding finds an enabled pointer binding for the seat
// matching button and exact modifier state.
func (s *Seat) matchPointerBinding(button, mods uint32) *Binding {
	for _, b := range s.manager.bindings {
		if !b.Pointer || b.Seat != s.ID || !b.Enabled() {
			continue
		}
		if b.Button == button && b.Mods == mods {
			return b
		}
	}
	return nil
}

// matchXkbBinding runs one matching pass over the seat's keysym
// bindings. With translate false the keycode's base-layer keysym is
// matched against the raw modifier state; with translate true the
// effective keysyms are matched with consumed modifiers removed.
func (s *Seat) matchXkbBinding(xkb KeymapState, keycode, mods uint32, translate bool) *Binding {
	for _, b := range s.manager.bindings {
		if b.Pointer || b.Seat != s.ID || !b.Enabled() {
			continue
		}
		layout := xkb.ActiveLayout()
		if b.Layout() >= 0 {
			layout = b.Layout()
		}
		if translate {
			effMods := mods &^ xkb.ConsumedModifiers(keycode)
			if b.Mods != effMods {
				continue
			}
			for _, sym := range xkb.Keysyms(keycode, layout) {
				if sym == b.Keysym {
					return b
				}
			}
		} else {
			if b.Mods == mods && xkb.BaseLayerKeysym(keycode, layout) == b.Keysym {
				return b
			}
		}
	}
	return nil
}
