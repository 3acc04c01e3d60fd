package wm

import (
	"github.com/bnema/tidal/internal/geo"
)

// Snapshot types expose read-only core state to the control socket.
// Only Current (rendered) state and coarse machine states go out;
// pending and inflight stay internal.

// WindowSnapshot is one window's observable state.
type WindowSnapshot struct {
	ID             uint32  `json:"id"`
	Title          string  `json:"title,omitempty"`
	AppID          string  `json:"app_id,omitempty"`
	Box            geo.Box `json:"box"`
	Fullscreen     bool    `json:"fullscreen"`
	SSD            bool    `json:"ssd"`
	Urgent         bool    `json:"urgent"`
	Focused        bool    `json:"focused"`
	ConfigureState string  `json:"configure_state"`
}

// OutputSnapshot is one output's observable state.
type OutputSnapshot struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	Width   int32  `json:"width"`
	Height  int32  `json:"height"`
	X       int32  `json:"x"`
	Y       int32  `json:"y"`
	Enabled bool   `json:"enabled"`
}

// SeatSnapshot is one seat's observable state.
type SeatSnapshot struct {
	ID            uint32 `json:"id"`
	Name          string `json:"name"`
	CursorMode    string `json:"cursor_mode"`
	FocusedWindow uint32 `json:"focused_window,omitempty"`
}

// StateSnapshot is the full control-socket dump.
type StateSnapshot struct {
	Windows             []WindowSnapshot `json:"windows"`
	Outputs             []OutputSnapshot `json:"outputs"`
	Seats               []SeatSnapshot   `json:"seats"`
	Locked              bool             `json:"locked"`
	TransactionInflight bool             `json:"transaction_inflight"`
	UpdateSerial        uint32           `json:"update_serial"`
	WMConnected         bool             `json:"wm_connected"`
}

// Snapshot captures the core state. Must run on the core loop.
func (w *WM) Snapshot() StateSnapshot {
	snap := StateSnapshot{
		Windows:             make([]WindowSnapshot, 0, len(w.order)),
		Outputs:             make([]OutputSnapshot, 0, len(w.outputOrder)),
		Locked:              w.Locked(),
		TransactionInflight: w.txn.inflight,
		UpdateSerial:        w.updateSerial,
		WMConnected:         w.sink != nil && w.sink.Connected(),
	}
	for _, win := range w.order {
		snap.Windows = append(snap.Windows, WindowSnapshot{
			ID:             win.ID,
			Title:          win.Title,
			AppID:          win.AppID,
			Box:            win.Current.Box,
			Fullscreen:     win.Current.Fullscreen,
			SSD:            win.Current.SSD,
			Urgent:         win.Current.Urgent,
			Focused:        win.Current.FocusCount > 0,
			ConfigureState: win.configureState.String(),
		})
	}
	for _, out := range w.outputOrder {
		snap.Outputs = append(snap.Outputs, OutputSnapshot{
			ID:      out.ID,
			Name:    out.Name,
			Width:   out.Current.Mode.Width,
			Height:  out.Current.Mode.Height,
			X:       out.Current.X,
			Y:       out.Current.Y,
			Enabled: out.Current.Enabled,
		})
	}
	for _, s := range w.seats {
		snap.Seats = append(snap.Seats, SeatSnapshot{
			ID:            s.ID,
			Name:          s.Name,
			CursorMode:    s.Cursor.Mode().String(),
			FocusedWindow: s.FocusedWindow(),
		})
	}
	return snap
}
