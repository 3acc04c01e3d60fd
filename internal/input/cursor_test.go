package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tidal/internal/geo"
)

const buttonLeft = 0x110

func newCursorFixture() (*Manager, *fakeCore, *Seat) {
	core := newFakeCore()
	m := NewManager(core, &recordBackend{})
	seat := m.NewSeat("seat0")
	return m, core, seat
}

func TestCursorModeMachine(t *testing.T) {
	t.Run("press over a surface enters down and pins focus", func(t *testing.T) {
		_, core, seat := newCursorFixture()
		fw := core.addWindow(1, boxAt(100, 100, 400, 300))
		c := seat.Cursor

		c.WarpTo(150, 150)
		c.Motion(1, 0, 0)
		require.Equal(t, ModePassthrough, c.Mode())
		assert.True(t, fw.surface.has("enter 50.0,50.0"))

		c.Button(2, buttonLeft, true)
		assert.Equal(t, ModeDown, c.Mode())
		assert.True(t, fw.surface.has("button 272 true"))

		// Motion in down mode keeps delivering to the pinned surface
		// with press-anchored coordinates, even outside the box.
		c.Motion(3, -100, 0)
		assert.Equal(t, "motion -50.0,50.0", fw.surface.last())

		c.Button(4, buttonLeft, false)
		assert.True(t, fw.surface.has("button 272 false"))
		assert.Equal(t, ModePassthrough, c.Mode())
	})

	t.Run("press over nothing enters ignore and clears focus", func(t *testing.T) {
		_, core, seat := newCursorFixture()
		fw := core.addWindow(1, boxAt(100, 100, 400, 300))
		c := seat.Cursor

		c.WarpTo(150, 150)
		c.Motion(1, 0, 0)
		require.NotNil(t, c.FocusedSurface())

		c.WarpTo(10, 10)
		c.Motion(2, 0, 0)
		require.Nil(t, c.FocusedSurface())

		events := len(fw.surface.events)
		c.Button(3, buttonLeft, true)
		assert.Equal(t, ModeIgnore, c.Mode())
		// No button event reached any client.
		assert.Len(t, fw.surface.events, events)

		c.Button(4, buttonLeft, false)
		assert.Equal(t, ModePassthrough, c.Mode())
	})

	t.Run("exit ignore is idempotent", func(t *testing.T) {
		_, _, seat := newCursorFixture()
		c := seat.Cursor
		c.enterIgnore()

		c.maybeExitIgnore(1)
		assert.Equal(t, ModePassthrough, c.Mode())
		c.maybeExitIgnore(2)
		c.maybeExitIgnore(3)
		assert.Equal(t, ModePassthrough, c.Mode())
	})

	t.Run("pointer binding eats the press and enters ignore", func(t *testing.T) {
		m, core, seat := newCursorFixture()
		fw := core.addWindow(1, boxAt(0, 0, 400, 300))
		c := seat.Cursor
		m.CreatePointerBinding(50, seat.ID, buttonLeft, ModSuper)
		seat.mods = ModSuper

		c.WarpTo(50, 50)
		c.Motion(1, 0, 0)

		c.Button(2, buttonLeft, true)
		assert.Equal(t, ModeIgnore, c.Mode())
		assert.False(t, fw.surface.has("button 272 true"))
		deltas := m.CollectDeltas()
		require.Len(t, deltas, 1)
		assert.Equal(t, BindingDelta{ID: 50, Pressed: true}, deltas[0])

		c.Button(3, buttonLeft, false)
		assert.Equal(t, ModePassthrough, c.Mode())
		deltas = m.CollectDeltas()
		require.Len(t, deltas, 1)
		assert.False(t, deltas[0].Pressed)
		assert.False(t, fw.surface.has("button 272 false"))
	})
}

func TestInteractiveResize(t *testing.T) {
	m, core, seat := newCursorFixture()
	fw := core.addWindow(1, boxAt(0, 0, 400, 300))
	c := seat.Cursor

	m.StartResize(seat.ID, 1, uint32(geo.EdgeRight|geo.EdgeBottom))
	require.Equal(t, ModeResize, c.Mode())
	assert.True(t, core.resizing[1])

	// Slow high-DPI drags: fractional deltas accumulate with a carry
	// instead of truncating to zero.
	for i := 0; i < 11; i++ {
		c.Motion(uint32(i), 3.4, 1.7)
	}
	assert.Equal(t, int32(437), fw.box.Width)
	assert.Equal(t, int32(318), fw.box.Height)

	// Final release ends the op.
	seat.pressedButtons[buttonLeft] = nil
	c.Button(99, buttonLeft, false)
	assert.Equal(t, ModePassthrough, c.Mode())
	assert.False(t, core.resizing[1])
}

func TestCursorDeltaAccumulation(t *testing.T) {
	m, core, seat := newCursorFixture()
	fw := core.addWindow(1, boxAt(0, 0, 100, 100))
	c := seat.Cursor

	m.StartMove(seat.ID, 1)
	require.Equal(t, ModeMove, c.Mode())

	// 24 motions of 0.25 units: the integer displacement is the floor
	// of the sum, with the fractional remainder carried, not lost.
	for i := 0; i < 24; i++ {
		c.Motion(uint32(i), 0.25, 0.25)
	}
	assert.Equal(t, int32(6), fw.box.X)
	assert.Equal(t, int32(6), fw.box.Y)
}

func TestOpEndsInIgnoreWhileButtonsHeld(t *testing.T) {
	m, core, seat := newCursorFixture()
	core.addWindow(1, boxAt(0, 0, 400, 300))
	c := seat.Cursor

	// A wm-initiated end while a button is still held lands in
	// ignore; the final release returns to passthrough.
	seat.pressedButtons[buttonLeft] = nil
	m.StartMove(seat.ID, 1)

	m.EndOp(seat.ID)
	assert.Equal(t, ModeIgnore, c.Mode())
	c.Button(1, buttonLeft, false)
	assert.Equal(t, ModePassthrough, c.Mode())
}

func TestOpWindowDeath(t *testing.T) {
	m, core, seat := newCursorFixture()
	core.addWindow(1, boxAt(0, 0, 400, 300))
	c := seat.Cursor

	m.StartResize(seat.ID, 1, uint32(geo.EdgeRight))
	core.removeWindow(1)
	m.WindowClosed(1)

	assert.Equal(t, ModePassthrough, c.Mode())
	// Motion after the window died must not blow up.
	c.Motion(1, 5, 5)
}

func TestPointerConstraints(t *testing.T) {
	t.Run("locked constraint swallows motion once active", func(t *testing.T) {
		m, core, seat := newCursorFixture()
		fw := core.addWindow(1, boxAt(0, 0, 400, 300))
		c := seat.Cursor

		c.WarpTo(50, 50)
		c.Motion(1, 0, 0)
		require.Equal(t, fw.surface, c.FocusedSurface().(*recordSurface))

		m.AttachConstraint(seat.ID, &Constraint{
			Surface: fw.surface,
			Window:  1,
			Kind:    ConstraintLocked,
			Region:  boxAt(0, 0, 400, 300),
		})

		c.Motion(2, 25, 0)
		// First motion activated the constraint; position is frozen.
		assert.Equal(t, float64(50), c.X)
		c.Motion(3, 25, 0)
		assert.Equal(t, float64(50), c.X)
	})

	t.Run("confined constraint clips to the region", func(t *testing.T) {
		m, core, seat := newCursorFixture()
		fw := core.addWindow(1, boxAt(0, 0, 400, 300))
		c := seat.Cursor

		c.WarpTo(390, 150)
		c.Motion(1, 0, 0)
		m.AttachConstraint(seat.ID, &Constraint{
			Surface: fw.surface,
			Window:  1,
			Kind:    ConstraintConfined,
			Region:  boxAt(0, 0, 400, 300),
		})

		c.Motion(2, 100, 0)
		assert.Equal(t, float64(399), c.X)
	})

	t.Run("constraint deactivates on focus-clearing mode change", func(t *testing.T) {
		m, core, seat := newCursorFixture()
		fw := core.addWindow(1, boxAt(0, 0, 400, 300))
		c := seat.Cursor

		c.WarpTo(50, 50)
		c.Motion(1, 0, 0)
		con := &Constraint{Surface: fw.surface, Window: 1, Kind: ConstraintLocked}
		m.AttachConstraint(seat.ID, con)
		c.Motion(2, 1, 0)
		require.True(t, con.Active())

		c.enterIgnore()
		assert.False(t, con.Active())
	})
}

func TestTouch(t *testing.T) {
	_, core, seat := newCursorFixture()
	fw := core.addWindow(1, boxAt(100, 100, 400, 300))

	seat.TouchDown(1, 0, 150, 150)
	assert.True(t, fw.surface.has("touch-down 0 50.0,50.0"))
	assert.Equal(t, 1, seat.TouchPoints())

	seat.TouchMotion(2, 0, 160, 160)
	assert.True(t, fw.surface.has("touch-motion 0"))

	seat.TouchUp(3, 0)
	assert.True(t, fw.surface.has("touch-up 0"))
	assert.Equal(t, 0, seat.TouchPoints())

	// Cancel clears every point and notifies each holder once.
	seat.TouchDown(4, 1, 150, 150)
	seat.TouchDown(5, 2, 160, 160)
	seat.TouchCancel()
	assert.Equal(t, 0, seat.TouchPoints())
	count := 0
	for _, e := range fw.surface.events {
		if e == "touch-cancel" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
