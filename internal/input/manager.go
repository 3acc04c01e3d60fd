package input

import (
	"github.com/bnema/tidal/internal/logger"
	"github.com/bnema/tidal/internal/session"
)

// Manager owns the seats and the binding registry. One instance per
// compositor.
type Manager struct {
	core    Core
	session session.Backend

	seats      map[uint32]*Seat
	seatSerial uint32

	bindings map[uint32]*Binding
	deltas   []BindingDelta
}

// NewManager creates the input manager. The session backend handles VT
// switching for the built-in mappings.
func NewManager(core Core, backend session.Backend) *Manager {
	return &Manager{
		core:     core,
		session:  backend,
		seats:    make(map[uint32]*Seat),
		bindings: make(map[uint32]*Binding),
	}
}

// NewSeat creates a seat with a fresh cursor.
func (m *Manager) NewSeat(name string) *Seat {
	m.seatSerial++
	s := &Seat{
		ID:             m.seatSerial,
		Name:           name,
		manager:        m,
		pressedButtons: make(map[uint32]*Binding),
		touchPoints:    make(map[int32]*touchPoint),
	}
	s.Cursor = newCursor(s)
	m.seats[s.ID] = s
	logger.Infof("new seat %q (id %d)", name, s.ID)
	return s
}

// Seat resolves a seat id.
func (m *Manager) Seat(id uint32) (*Seat, bool) {
	s, ok := m.seats[id]
	return s, ok
}

// Seats returns all seats.
func (m *Manager) Seats() []*Seat {
	out := make([]*Seat, 0, len(m.seats))
	for _, s := range m.seats {
		out = append(out, s)
	}
	return out
}

// FocusWindow directs a seat's keyboard focus, id zero clearing it.
// Unknown seats are protocol misuse and ignored.
func (m *Manager) FocusWindow(seatID, windowID uint32) {
	s, ok := m.seats[seatID]
	if !ok {
		logger.Errorf("focus request for unknown seat %d", seatID)
		return
	}
	s.FocusWindow(windowID)
}

// WindowClosed drops any focus or op references the seats hold on a
// window that went away.
func (m *Manager) WindowClosed(windowID uint32) {
	for _, s := range m.seats {
		if s.focusedWindow == windowID {
			s.focusedWindow = 0
		}
		s.Cursor.windowClosed(windowID)
	}
}

// StartMove puts the seat's cursor into the move op for a window.
func (m *Manager) StartMove(seatID, windowID uint32) {
	s, ok := m.seats[seatID]
	if !ok {
		logger.Errorf("move op for unknown seat %d", seatID)
		return
	}
	s.Cursor.startMove(windowID)
}

// EndOp leaves a running op on the seat's cursor: a wm-initiated end,
// which lands in ignore while buttons are still held.
func (m *Manager) EndOp(seatID uint32) {
	s, ok := m.seats[seatID]
	if !ok {
		return
	}
	if s.Cursor.mode == ModeMove || s.Cursor.mode == ModeResize {
		s.Cursor.endOp(0)
	}
}

// StartResize puts the seat's cursor into the resize op for a window.
func (m *Manager) StartResize(seatID, windowID uint32, edges uint32) {
	s, ok := m.seats[seatID]
	if !ok {
		logger.Errorf("resize op for unknown seat %d", seatID)
		return
	}
	s.Cursor.startResize(windowID, edges)
}
