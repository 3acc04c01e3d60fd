// Package input implements the compositor's input pipeline: seats,
// cursors and their mode machine, the binding dispatcher that arbitrates
// between the window manager client and focused surfaces, pointer
// constraints, and touch tracking.
//
// The package is a leaf: it talks to the window management core only
// through the Core interface, and to client surfaces only through the
// Surface interface. Everything runs on the core event loop; there is no
// locking here.
package input

import "github.com/bnema/tidal/internal/geo"

// Modifier masks, matching the wire protocol.
const (
	ModShift uint32 = 1 << 0
	ModCaps  uint32 = 1 << 1
	ModCtrl  uint32 = 1 << 2
	ModAlt   uint32 = 1 << 3
	ModSuper uint32 = 1 << 6
)

// Surface receives input events for a client surface. The display
// server glue implements this on top of real protocol objects; tests
// use recorders.
type Surface interface {
	PointerEnter(sx, sy float64)
	PointerLeave()
	PointerMotion(time uint32, sx, sy float64)
	PointerButton(time uint32, button uint32, pressed bool)
	PointerAxis(time uint32, horizontal bool, delta float64)

	KeyboardEnter()
	KeyboardLeave()
	KeyboardKey(time uint32, keycode uint32, pressed bool)

	TouchDown(time uint32, id int32, sx, sy float64)
	TouchMotion(time uint32, id int32, sx, sy float64)
	TouchUp(time uint32, id int32)
	TouchCancel()
}

// Target is a surface hit by a layout-space point, with surface-local
// coordinates.
type Target struct {
	Window  uint32
	Surface Surface
	SX, SY  float64
}

// Core is what the input pipeline needs from the window management
// core. Interactive ops mutate pending window state through it and are
// reconciled by the transaction machinery on the other side.
type Core interface {
	// DirtyPending schedules a wm update for accumulated pending state.
	DirtyPending()
	// TargetAt returns the topmost mapped surface at a layout point.
	TargetAt(lx, ly float64) (Target, bool)
	// WindowSurface resolves a window id to its surface. Focus targets
	// are weak references; this is the validation point.
	WindowSurface(id uint32) (Surface, bool)
	// AdjustFocus changes a window's pending focus count.
	AdjustFocus(id uint32, delta int)
	// ResizeWindowBy grows or shrinks a window's pending box.
	ResizeWindowBy(id uint32, edges geo.Edges, dx, dy int32)
	// MoveWindowBy translates a window's pending box.
	MoveWindowBy(id uint32, dx, dy int32)
	// SetResizing toggles the window's resizing hint for configures.
	SetResizing(id uint32, resizing bool)
	// Locked reports whether a session lock is in effect.
	Locked() bool
}

// KeymapState is what the dispatcher consumes from the active
// keyboard's XKB state.
type KeymapState interface {
	// Keysyms returns the effective (translated) keysyms for a keycode
	// on the given layout.
	Keysyms(keycode uint32, layout int) []uint32
	// BaseLayerKeysym returns the base-layer keysym for a keycode on
	// the given layout, ignoring active modifiers.
	BaseLayerKeysym(keycode uint32, layout int) uint32
	// Modifiers returns the current effective modifier mask.
	Modifiers() uint32
	// ConsumedModifiers returns the modifiers consumed translating the
	// given keycode.
	ConsumedModifiers(keycode uint32) uint32
	// ActiveLayout returns the active layout index.
	ActiveLayout() int
}

// XF86Switch_VT_1 through _12. Hard-coded VT switch mappings are
// dispatched before any user binding.
const (
	keysymSwitchVT1  = 0x1008FE01
	keysymSwitchVT12 = 0x1008FE0C
)
