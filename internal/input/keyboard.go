package input

import (
	"github.com/bnema/tidal/internal/logger"
)

// eatenNoBinding marks a keycode whose press was consumed by something
// other than a live binding (VT switch, or a binding destroyed while
// held). The release is still eaten; there is just no action to run.
const eatenNoBinding uint32 = 0

// Keyboard is one physical keyboard on a seat, carrying its own XKB
// state and its own eaten-keycode tracker.
type Keyboard struct {
	seat *Seat
	xkb  KeymapState

	// eaten maps keycodes whose press activated a binding (or built-in)
	// to the binding id. Releases of eaten keycodes never reach a
	// surface.
	eaten map[uint32]uint32
}

// HandleKey processes a raw key event. The libinput keycode is
// translated to XKB keycode space (+8) before resolution.
func (k *Keyboard) HandleKey(time uint32, libinputCode uint32, pressed bool) {
	keycode := libinputCode + 8
	k.seat.mods = k.xkb.Modifiers()

	if pressed {
		k.handlePress(time, keycode)
	} else {
		k.handleRelease(time, keycode)
	}
}

func (k *Keyboard) handlePress(time uint32, keycode uint32) {
	// Built-in VT switch mappings run before user bindings.
	if k.switchVT(keycode) {
		k.eaten[keycode] = eatenNoBinding
		return
	}

	// Bindings do not fire under a session lock; only the VT mappings
	// above stay live there.
	if !k.seat.manager.core.Locked() {
		if b := k.matchBinding(keycode); b != nil {
			k.eaten[keycode] = b.ID
			k.seat.manager.bindingPress(b)
			return
		}
	}

	if surf, ok := k.seat.focusedSurface(); ok {
		surf.KeyboardKey(time, keycode, true)
	}
}

func (k *Keyboard) handleRelease(time uint32, keycode uint32) {
	if id, ok := k.eaten[keycode]; ok {
		delete(k.eaten, keycode)
		if id != eatenNoBinding {
			if b, live := k.seat.manager.bindings[id]; live {
				k.seat.manager.bindingRelease(b)
			}
			// A destroyed binding's release is a no-op, but the
			// keycode stays eaten: the press never reached a surface,
			// so neither may the release.
		}
		return
	}

	if surf, ok := k.seat.focusedSurface(); ok {
		surf.KeyboardKey(time, keycode, false)
	}
}

// matchBinding runs the two matching passes: first against the base
// layer keysym with raw modifiers, then against the effective keysym
// with consumed modifiers removed.
func (k *Keyboard) matchBinding(keycode uint32) *Binding {
	mods := k.xkb.Modifiers()
	if b := k.seat.matchXkbBinding(k.xkb, keycode, mods, false); b != nil {
		return b
	}
	return k.seat.matchXkbBinding(k.xkb, keycode, mods, true)
}

// switchVT consumes XF86Switch_VT_N keysyms, calling into the session
// backend. The key is consumed only when the switch succeeds.
func (k *Keyboard) switchVT(keycode uint32) bool {
	for _, sym := range k.xkb.Keysyms(keycode, k.xkb.ActiveLayout()) {
		if sym < keysymSwitchVT1 || sym > keysymSwitchVT12 {
			continue
		}
		vt := uint(sym - keysymSwitchVT1 + 1)
		if err := k.seat.manager.session.ChangeVT(vt); err != nil {
			logger.Errorf("VT switch to %d failed: %v", vt, err)
			return false
		}
		logger.Debugf("switched to VT %d", vt)
		return true
	}
	return false
}
