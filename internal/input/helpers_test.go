package input

import (
	"fmt"

	"github.com/bnema/tidal/internal/geo"
)

func boxAt(x, y, w, h int32) geo.Box {
	return geo.Box{X: x, Y: y, Width: w, Height: h}
}

// recordSurface records every event delivered to it.
type recordSurface struct {
	events []string
}

func (r *recordSurface) record(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordSurface) PointerEnter(sx, sy float64) { r.record("enter %.1f,%.1f", sx, sy) }
func (r *recordSurface) PointerLeave()               { r.record("leave") }
func (r *recordSurface) PointerMotion(t uint32, sx, sy float64) {
	r.record("motion %.1f,%.1f", sx, sy)
}
func (r *recordSurface) PointerButton(t uint32, button uint32, pressed bool) {
	r.record("button %d %v", button, pressed)
}
func (r *recordSurface) PointerAxis(t uint32, horiz bool, delta float64) {
	r.record("axis %.1f", delta)
}
func (r *recordSurface) KeyboardEnter() { r.record("kb-enter") }
func (r *recordSurface) KeyboardLeave() { r.record("kb-leave") }
func (r *recordSurface) KeyboardKey(t uint32, keycode uint32, pressed bool) {
	r.record("key %d %v", keycode, pressed)
}
func (r *recordSurface) TouchDown(t uint32, id int32, sx, sy float64) {
	r.record("touch-down %d %.1f,%.1f", id, sx, sy)
}
func (r *recordSurface) TouchMotion(t uint32, id int32, sx, sy float64) {
	r.record("touch-motion %d", id)
}
func (r *recordSurface) TouchUp(t uint32, id int32) { r.record("touch-up %d", id) }
func (r *recordSurface) TouchCancel()               { r.record("touch-cancel") }

func (r *recordSurface) last() string {
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1]
}

func (r *recordSurface) has(event string) bool {
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

// fakeWindow is one window in the fake core's layout.
type fakeWindow struct {
	id      uint32
	box     geo.Box
	surface *recordSurface
}

// fakeCore is a minimal window management core: a flat window list
// with real pending-box math, so interactive ops can be asserted.
type fakeCore struct {
	windows  []*fakeWindow
	locked   bool
	dirty    int
	resizing map[uint32]bool
}

func newFakeCore() *fakeCore {
	return &fakeCore{resizing: make(map[uint32]bool)}
}

func (c *fakeCore) addWindow(id uint32, box geo.Box) *fakeWindow {
	fw := &fakeWindow{id: id, box: box, surface: &recordSurface{}}
	c.windows = append(c.windows, fw)
	return fw
}

func (c *fakeCore) removeWindow(id uint32) {
	for i, fw := range c.windows {
		if fw.id == id {
			c.windows = append(c.windows[:i], c.windows[i+1:]...)
			return
		}
	}
}

func (c *fakeCore) DirtyPending() { c.dirty++ }

func (c *fakeCore) TargetAt(lx, ly float64) (Target, bool) {
	if c.locked {
		return Target{}, false
	}
	for _, fw := range c.windows {
		if fw.box.Contains(lx, ly) {
			return Target{
				Window:  fw.id,
				Surface: fw.surface,
				SX:      lx - float64(fw.box.X),
				SY:      ly - float64(fw.box.Y),
			}, true
		}
	}
	return Target{}, false
}

func (c *fakeCore) WindowSurface(id uint32) (Surface, bool) {
	for _, fw := range c.windows {
		if fw.id == id {
			return fw.surface, true
		}
	}
	return nil, false
}

func (c *fakeCore) AdjustFocus(id uint32, delta int) {}

func (c *fakeCore) ResizeWindowBy(id uint32, edges geo.Edges, dx, dy int32) {
	for _, fw := range c.windows {
		if fw.id == id {
			fw.box = fw.box.Resize(edges, dx, dy, 1)
		}
	}
}

func (c *fakeCore) MoveWindowBy(id uint32, dx, dy int32) {
	for _, fw := range c.windows {
		if fw.id == id {
			fw.box.X += dx
			fw.box.Y += dy
		}
	}
}

func (c *fakeCore) SetResizing(id uint32, resizing bool) {
	c.resizing[id] = resizing
}

func (c *fakeCore) Locked() bool { return c.locked }

// fakeXkb is a static keymap: keycode -> keysym per layout, with a
// fixed modifier state.
type fakeXkb struct {
	layouts  map[int]map[uint32]uint32 // layout -> keycode -> keysym
	mods     uint32
	consumed map[uint32]uint32
	active   int
}

func newFakeXkb() *fakeXkb {
	return &fakeXkb{
		layouts:  map[int]map[uint32]uint32{0: {}},
		consumed: make(map[uint32]uint32),
	}
}

func (x *fakeXkb) mapKey(layout int, keycode, keysym uint32) {
	if x.layouts[layout] == nil {
		x.layouts[layout] = make(map[uint32]uint32)
	}
	x.layouts[layout][keycode] = keysym
}

func (x *fakeXkb) Keysyms(keycode uint32, layout int) []uint32 {
	if sym, ok := x.layouts[layout][keycode]; ok {
		return []uint32{sym}
	}
	return nil
}

func (x *fakeXkb) BaseLayerKeysym(keycode uint32, layout int) uint32 {
	return x.layouts[layout][keycode]
}

func (x *fakeXkb) Modifiers() uint32 { return x.mods }

func (x *fakeXkb) ConsumedModifiers(keycode uint32) uint32 {
	return x.consumed[keycode]
}

func (x *fakeXkb) ActiveLayout() int { return x.active }

// recordBackend records VT switches.
type recordBackend struct {
	vts  []uint
	fail bool
}

func (b *recordBackend) ChangeVT(vt uint) error {
	if b.fail {
		return fmt.Errorf("no session")
	}
	b.vts = append(b.vts, vt)
	return nil
}
