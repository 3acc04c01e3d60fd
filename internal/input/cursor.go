package input

import (
	"math"

	"github.com/bnema/tidal/internal/geo"
)

// CursorMode selects how motion and button events are routed.
type CursorMode int

const (
	// ModePassthrough routes events to the surface under the cursor.
	ModePassthrough CursorMode = iota
	// ModeDown pins pointer focus to the surface that saw the first
	// press until the final release.
	ModeDown
	// ModeIgnore moves the hardware cursor but forwards nothing.
	ModeIgnore
	// ModeMove is the interactive move op.
	ModeMove
	// ModeResize is the interactive resize op.
	ModeResize
)

func (m CursorMode) String() string {
	switch m {
	case ModePassthrough:
		return "passthrough"
	case ModeDown:
		return "down"
	case ModeIgnore:
		return "ignore"
	case ModeMove:
		return "move"
	case ModeResize:
		return "resize"
	}
	return "unknown"
}

// Cursor is a seat's pointer state: position in layout coordinates, the
// mode machine, pointer focus, and the op accumulators.
type Cursor struct {
	seat *Seat

	X, Y float64

	mode CursorMode

	// down mode anchor: layout and surface-local coordinates at press.
	downLX, downLY float64
	downSX, downSY float64

	// op mode: fractional carry so slow high-DPI motion is not
	// truncated away, and the window being operated on.
	carryX, carryY float64
	opWindow       uint32
	resizeEdges    geo.Edges

	// pointer focus, a weak reference validated on use.
	focusSurface Surface
	focusWindow  uint32
	lastSX       float64
	lastSY       float64
}

func newCursor(s *Seat) *Cursor {
	return &Cursor{seat: s}
}

// Mode returns the current cursor mode.
func (c *Cursor) Mode() CursorMode {
	return c.mode
}

// FocusedSurface returns the current pointer focus, or nil.
func (c *Cursor) FocusedSurface() Surface {
	return c.focusSurface
}

// WarpTo places the cursor without delivering motion, for initial
// placement and output hotplug.
func (c *Cursor) WarpTo(lx, ly float64) {
	c.X, c.Y = lx, ly
}

// Motion processes a relative pointer motion.
func (c *Cursor) Motion(time uint32, dx, dy float64) {
	switch c.mode {
	case ModePassthrough:
		if con := c.seat.constraint; con != nil && con.holds(c.focusSurface) {
			con.activateIfInside(c.X, c.Y)
			if con.active && con.Kind == ConstraintLocked {
				// Locked pointer: relative motion is swallowed.
				return
			}
			if con.active && con.Kind == ConstraintConfined {
				nx, ny := con.Region.ClampPoint(c.X+dx, c.Y+dy)
				dx, dy = nx-c.X, ny-c.Y
			}
		}
		c.X += dx
		c.Y += dy
		c.seat.positionDragIcons(c.X, c.Y)
		c.updateFocus(time)

	case ModeDown:
		c.X += dx
		c.Y += dy
		c.seat.positionDragIcons(c.X, c.Y)
		if c.focusSurface != nil {
			sx := c.downSX + (c.X - c.downLX)
			sy := c.downSY + (c.Y - c.downLY)
			c.focusSurface.PointerMotion(time, sx, sy)
		}

	case ModeIgnore:
		c.X += dx
		c.Y += dy
		c.seat.positionDragIcons(c.X, c.Y)

	case ModeMove, ModeResize:
		c.carryX += dx
		c.carryY += dy
		ix := int32(math.Trunc(c.carryX))
		iy := int32(math.Trunc(c.carryY))
		c.carryX -= float64(ix)
		c.carryY -= float64(iy)
		if ix == 0 && iy == 0 {
			return
		}
		c.X += float64(ix)
		c.Y += float64(iy)
		c.seat.positionDragIcons(c.X, c.Y)
		if c.mode == ModeMove {
			c.seat.manager.core.MoveWindowBy(c.opWindow, ix, iy)
		} else {
			c.seat.manager.core.ResizeWindowBy(c.opWindow, c.resizeEdges, ix, iy)
		}
	}
}

// Button processes a pointer button event.
func (c *Cursor) Button(time uint32, button uint32, pressed bool) {
	if pressed {
		c.press(time, button)
	} else {
		c.release(time, button)
	}
}

func (c *Cursor) press(time uint32, button uint32) {
	if _, dup := c.seat.pressedButtons[button]; dup {
		// Duplicate press from a confused client or device; ignore.
		return
	}

	if !c.seat.manager.core.Locked() {
		if b := c.seat.matchPointerBinding(button, c.seat.Modifiers()); b != nil {
			c.seat.pressedButtons[button] = b
			c.seat.manager.bindingPress(b)
			c.enterIgnore()
			return
		}
	}

	c.seat.pressedButtons[button] = nil

	switch c.mode {
	case ModePassthrough:
		if target, ok := c.seat.manager.core.TargetAt(c.X, c.Y); ok {
			c.setFocus(target)
			target.Surface.PointerButton(time, button, true)
			c.enterDown(target)
		} else {
			c.enterIgnore()
		}
	case ModeDown:
		if c.focusSurface != nil {
			c.focusSurface.PointerButton(time, button, true)
		}
	case ModeIgnore, ModeMove, ModeResize:
		// No surface sees presses in these modes.
	}
}

func (c *Cursor) release(time uint32, button uint32) {
	b, held := c.seat.pressedButtons[button]
	if !held {
		// Press predates us or was dropped; deliver the release where
		// focus points so clients do not see a stuck button.
		if (c.mode == ModePassthrough || c.mode == ModeDown) && c.focusSurface != nil {
			c.focusSurface.PointerButton(time, button, false)
		}
		return
	}
	delete(c.seat.pressedButtons, button)

	if b != nil {
		c.seat.manager.bindingRelease(b)
	} else if (c.mode == ModePassthrough || c.mode == ModeDown) && c.focusSurface != nil {
		c.focusSurface.PointerButton(time, button, false)
	}

	if len(c.seat.pressedButtons) > 0 {
		return
	}

	switch c.mode {
	case ModeDown:
		c.mode = ModePassthrough
		c.updateFocus(time)
	case ModeIgnore:
		c.maybeExitIgnore(time)
	case ModeMove, ModeResize:
		c.endOp(time)
	}
}

// Axis forwards a scroll event along the same route a button would
// take.
func (c *Cursor) Axis(time uint32, horizontal bool, delta float64) {
	switch c.mode {
	case ModePassthrough, ModeDown:
		if c.focusSurface != nil {
			c.focusSurface.PointerAxis(time, horizontal, delta)
		}
	default:
	}
}

// maybeExitIgnore leaves ignore mode once nothing sustains it. Safe to
// call repeatedly.
func (c *Cursor) maybeExitIgnore(time uint32) {
	if c.mode != ModeIgnore || len(c.seat.pressedButtons) > 0 {
		return
	}
	c.mode = ModePassthrough
	c.updateFocus(time)
}

func (c *Cursor) enterDown(target Target) {
	c.mode = ModeDown
	c.downLX, c.downLY = c.X, c.Y
	c.downSX, c.downSY = target.SX, target.SY
}

func (c *Cursor) enterIgnore() {
	c.deactivateConstraint()
	c.clearFocus()
	c.mode = ModeIgnore
}

// startMove enters the interactive move op, a wm-initiated transition.
func (c *Cursor) startMove(windowID uint32) {
	if _, ok := c.seat.manager.core.WindowSurface(windowID); !ok {
		return
	}
	c.beginOp(ModeMove, windowID)
}

// startResize enters the interactive resize op.
func (c *Cursor) startResize(windowID uint32, edges uint32) {
	if _, ok := c.seat.manager.core.WindowSurface(windowID); !ok {
		return
	}
	c.resizeEdges = geo.Edges(edges)
	if c.resizeEdges == 0 {
		c.resizeEdges = geo.EdgeRight | geo.EdgeBottom
	}
	c.beginOp(ModeResize, windowID)
	c.seat.manager.core.SetResizing(windowID, true)
}

func (c *Cursor) beginOp(mode CursorMode, windowID uint32) {
	c.deactivateConstraint()
	c.clearFocus()
	c.mode = mode
	c.opWindow = windowID
	c.carryX, c.carryY = 0, 0
}

// endOp leaves an op mode: back to passthrough, or to ignore while
// buttons are still held.
func (c *Cursor) endOp(time uint32) {
	if c.mode == ModeResize {
		c.seat.manager.core.SetResizing(c.opWindow, false)
	}
	c.opWindow = 0
	if len(c.seat.pressedButtons) > 0 {
		c.mode = ModeIgnore
		return
	}
	c.mode = ModePassthrough
	c.updateFocus(time)
}

// windowClosed drops references the cursor holds on a dead window.
func (c *Cursor) windowClosed(windowID uint32) {
	if c.focusWindow == windowID {
		c.focusSurface = nil
		c.focusWindow = 0
		if c.mode == ModeDown {
			c.mode = ModePassthrough
		}
	}
	if c.opWindow == windowID && (c.mode == ModeMove || c.mode == ModeResize) {
		c.opWindow = 0
		if len(c.seat.pressedButtons) > 0 {
			c.mode = ModeIgnore
		} else {
			c.mode = ModePassthrough
		}
	}
}

// updateFocus re-resolves the surface under the cursor and delivers
// enter/leave/motion accordingly. Only meaningful in passthrough.
func (c *Cursor) updateFocus(time uint32) {
	target, ok := c.seat.manager.core.TargetAt(c.X, c.Y)
	if !ok {
		c.clearFocus()
		return
	}
	if target.Surface != c.focusSurface {
		c.setFocus(target)
		return
	}
	c.lastSX, c.lastSY = target.SX, target.SY
	target.Surface.PointerMotion(time, target.SX, target.SY)
}

func (c *Cursor) setFocus(target Target) {
	if c.focusSurface == target.Surface {
		return
	}
	if c.focusSurface != nil {
		c.focusSurface.PointerLeave()
	}
	c.focusSurface = target.Surface
	c.focusWindow = target.Window
	c.lastSX, c.lastSY = target.SX, target.SY
	target.Surface.PointerEnter(target.SX, target.SY)
}

func (c *Cursor) clearFocus() {
	if c.focusSurface != nil {
		c.focusSurface.PointerLeave()
	}
	c.focusSurface = nil
	c.focusWindow = 0
}

func (c *Cursor) deactivateConstraint() {
	if con := c.seat.constraint; con != nil {
		con.active = false
	}
}
