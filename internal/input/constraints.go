package input

import (
	"github.com/bnema/tidal/internal/geo"
	"github.com/bnema/tidal/internal/logger"
)

// ConstraintKind distinguishes locked from confined pointers.
type ConstraintKind int

const (
	// ConstraintLocked swallows relative motion entirely.
	ConstraintLocked ConstraintKind = iota
	// ConstraintConfined clips motion to the region.
	ConstraintConfined
)

// Constraint is a pointer constraint attached to a surface. It is
// armed while its surface holds pointer focus and becomes active once
// the cursor enters the region.
type Constraint struct {
	Surface Surface
	Window  uint32
	Kind    ConstraintKind
	// Region in layout coordinates. An empty region means the whole
	// surface; the cursor module treats it as always-inside.
	Region geo.Box

	active bool
}

// Active reports whether the constraint is currently in effect.
func (c *Constraint) Active() bool {
	return c.active
}

// holds reports whether the constraint is armed for the given focus.
func (c *Constraint) holds(focus Surface) bool {
	return focus != nil && c.Surface == focus
}

// activateIfInside arms-to-active once the cursor is inside the region.
func (c *Constraint) activateIfInside(lx, ly float64) {
	if c.active {
		return
	}
	if c.Region.Empty() || c.Region.Contains(lx, ly) {
		c.active = true
	}
}

// AttachConstraint associates a constraint with a seat. Only one
// constraint per seat at a time; a newer one replaces the older, which
// matches protocol semantics where the previous object is destroyed.
func (m *Manager) AttachConstraint(seatID uint32, con *Constraint) {
	s, ok := m.seats[seatID]
	if !ok {
		logger.Errorf("constraint for unknown seat %d", seatID)
		return
	}
	s.constraint = con
}

// DetachConstraint removes the seat's constraint if it is the given
// one.
func (m *Manager) DetachConstraint(seatID uint32, con *Constraint) {
	s, ok := m.seats[seatID]
	if !ok {
		return
	}
	if s.constraint == con {
		s.constraint = nil
	}
}
