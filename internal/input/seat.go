package input

import (
	"github.com/bnema/tidal/internal/scene"
)

// Seat is a logical input focus domain: one cursor, any number of
// keyboards, a touch table, and the keyboard focus target.
type Seat struct {
	ID   uint32
	Name string

	manager *Manager
	Cursor  *Cursor

	keyboards []*Keyboard

	// pressedButtons maps held button codes to the binding that ate the
	// press, or nil when the press was forwarded.
	pressedButtons map[uint32]*Binding

	touchPoints map[int32]*touchPoint

	// mods mirrors the modifier mask of the last keyboard event, for
	// pointer binding matching.
	mods uint32

	// focusedWindow is a weak reference, validated on dereference.
	focusedWindow uint32

	// constraint is the seat's armed pointer constraint, if any.
	constraint *Constraint

	dragIcons []*scene.DragIcon
}

// NewKeyboard attaches a keyboard with its XKB state to the seat.
func (s *Seat) NewKeyboard(xkb KeymapState) *Keyboard {
	k := &Keyboard{
		seat:  s,
		xkb:   xkb,
		eaten: make(map[uint32]uint32),
	}
	s.keyboards = append(s.keyboards, k)
	return k
}

// Modifiers returns the seat's current modifier mask.
func (s *Seat) Modifiers() uint32 {
	return s.mods
}

// FocusedWindow returns the seat's keyboard focus target, or zero.
func (s *Seat) FocusedWindow() uint32 {
	return s.focusedWindow
}

// FocusWindow moves keyboard focus to the given window, zero clearing
// it. Stale targets resolve to nothing and clear focus.
func (s *Seat) FocusWindow(windowID uint32) {
	if windowID == s.focusedWindow {
		return
	}

	if old := s.focusedWindow; old != 0 {
		s.manager.core.AdjustFocus(old, -1)
		if surf, ok := s.manager.core.WindowSurface(old); ok {
			surf.KeyboardLeave()
		}
	}

	s.focusedWindow = 0
	if windowID != 0 {
		surf, ok := s.manager.core.WindowSurface(windowID)
		if !ok {
			s.manager.core.DirtyPending()
			return
		}
		s.focusedWindow = windowID
		s.manager.core.AdjustFocus(windowID, 1)
		surf.KeyboardEnter()
	}
	s.manager.core.DirtyPending()
}

// focusedSurface dereferences the focus target, validating it.
func (s *Seat) focusedSurface() (Surface, bool) {
	if s.focusedWindow == 0 {
		return nil, false
	}
	surf, ok := s.manager.core.WindowSurface(s.focusedWindow)
	if !ok {
		s.focusedWindow = 0
		return nil, false
	}
	return surf, ok
}

// clearBinding removes a dead binding from the pressed-button table and
// every keyboard's eaten tracker. The slots stay occupied so releases
// still balance; only the action is gone.
func (s *Seat) clearBinding(b *Binding) {
	for button, held := range s.pressedButtons {
		if held == b {
			s.pressedButtons[button] = nil
		}
	}
	for _, k := range s.keyboards {
		for keycode, id := range k.eaten {
			if id == b.ID {
				k.eaten[keycode] = eatenNoBinding
			}
		}
	}
}

// AddDragIcon registers a drag icon node that follows this seat's
// cursor.
func (s *Seat) AddDragIcon(icon *scene.DragIcon) {
	s.dragIcons = append(s.dragIcons, icon)
}

// RemoveDragIcon drops a drag icon.
func (s *Seat) RemoveDragIcon(icon *scene.DragIcon) {
	for i, di := range s.dragIcons {
		if di == icon {
			s.dragIcons = append(s.dragIcons[:i], s.dragIcons[i+1:]...)
			return
		}
	}
}

// positionDragIcons repositions every drag icon sourced from this seat.
func (s *Seat) positionDragIcons(lx, ly float64) {
	for _, di := range s.dragIcons {
		if di.Seat == s.ID {
			di.Node.SetPosition(int32(lx), int32(ly))
		}
	}
}
