// Package wlproto implements the compositor-private window management
// protocol. A single external window manager process connects over a
// unix socket and acts as the layout authority: the compositor batches
// state deltas into updates sealed by an update(serial) event, and the
// window manager replies with configuration requests sealed by
// ack_update(serial) and commit.
package wlproto

import "github.com/bnema/tidal/internal/geo"

// Message type tags. Events flow compositor -> wm, requests wm -> compositor.
const (
	// Events
	TypeUpdate            = "update"
	TypeWindowNew         = "window_new"
	TypeWindowClosed      = "window_closed"
	TypeWindowTitle       = "window_title"
	TypeWindowAppID       = "window_app_id"
	TypeWindowConstraints = "window_constraints"
	TypeWindowFSRequested = "window_fullscreen_requested"
	TypeWindowInteraction = "window_interaction"
	TypeOutputNew         = "output_new"
	TypeOutputRemoved     = "output_removed"
	TypeOutputDimensions  = "output_dimensions"
	TypeOutputPosition    = "output_position"
	TypeSeatNew           = "seat_new"
	TypeBindingPressed    = "binding_pressed"
	TypeBindingReleased   = "binding_released"

	// Requests
	TypeAckUpdate             = "ack_update"
	TypeCommit                = "commit"
	TypeWindowPropose         = "window_propose"
	TypeWindowFullscreen      = "window_fullscreen"
	TypeWindowDecorations     = "window_decorations"
	TypeWindowFocus           = "window_focus"
	TypeWindowClose           = "window_close"
	TypePointerBindingCreate  = "pointer_binding_create"
	TypeXkbBindingCreate      = "xkb_binding_create"
	TypeSeatOpMove            = "seat_op_move"
	TypeSeatOpResize          = "seat_op_resize"
	TypeBindingEnable         = "binding_enable"
	TypeBindingDisable        = "binding_disable"
	TypeBindingLayoutOverride = "binding_layout_override"
	TypeBindingDestroy        = "binding_destroy"
)

// Update seals a batch of deltas. The wm must reply with AckUpdate
// carrying the same serial, then Commit.
type Update struct {
	Serial uint32 `json:"serial"`
}

// WindowNew announces a managed window.
type WindowNew struct {
	ID uint32 `json:"id"`
}

// WindowClosed announces that a window went away.
type WindowClosed struct {
	ID uint32 `json:"id"`
}

// WindowTitle carries a title change.
type WindowTitle struct {
	ID    uint32 `json:"id"`
	Title string `json:"title"`
}

// WindowAppID carries an app id change.
type WindowAppID struct {
	ID    uint32 `json:"id"`
	AppID string `json:"app_id"`
}

// WindowConstraints carries the client's min/max size hints.
type WindowConstraints struct {
	ID        uint32 `json:"id"`
	MinWidth  int32  `json:"min_width"`
	MinHeight int32  `json:"min_height"`
	MaxWidth  int32  `json:"max_width"`
	MaxHeight int32  `json:"max_height"`
}

// WindowFSRequested signals that the client itself asked for fullscreen.
type WindowFSRequested struct {
	ID         uint32 `json:"id"`
	Fullscreen bool   `json:"fullscreen"`
}

// WindowInteraction signals a client-initiated interactive op request
// (move or resize) for the wm to arbitrate.
type WindowInteraction struct {
	ID    uint32 `json:"id"`
	Kind  string `json:"kind"` // "move" or "resize"
	Edges uint32 `json:"edges,omitempty"`
}

// OutputNew announces an output.
type OutputNew struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// OutputRemoved announces output removal.
type OutputRemoved struct {
	ID uint32 `json:"id"`
}

// OutputDimensions carries an output's logical size.
type OutputDimensions struct {
	ID     uint32 `json:"id"`
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
}

// OutputPosition carries an output's position in layout space.
type OutputPosition struct {
	ID uint32 `json:"id"`
	X  int32  `json:"x"`
	Y  int32  `json:"y"`
}

// SeatNew announces a seat.
type SeatNew struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// BindingEvent carries a binding press or release.
type BindingEvent struct {
	ID uint32 `json:"id"`
}

// AckUpdate acknowledges the update with the given serial.
type AckUpdate struct {
	Serial uint32 `json:"serial"`
}

// WindowPropose sets the wm's intended box for a window.
type WindowPropose struct {
	ID  uint32  `json:"id"`
	Box geo.Box `json:"box"`
}

// WindowFullscreen sets the wm's fullscreen intent for a window.
type WindowFullscreen struct {
	ID         uint32 `json:"id"`
	Fullscreen bool   `json:"fullscreen"`
}

// WindowDecorations selects server side decorations for a window.
type WindowDecorations struct {
	ID  uint32 `json:"id"`
	SSD bool   `json:"ssd"`
}

// WindowFocus directs a seat's keyboard focus to a window. ID zero
// clears focus.
type WindowFocus struct {
	Seat uint32 `json:"seat"`
	ID   uint32 `json:"id"`
}

// WindowClose asks the client behind the window to close.
type WindowClose struct {
	ID uint32 `json:"id"`
}

// SeatOpMove starts the interactive move op on a seat's cursor.
type SeatOpMove struct {
	Seat   uint32 `json:"seat"`
	Window uint32 `json:"window"`
}

// SeatOpResize starts the interactive resize op on a seat's cursor.
type SeatOpResize struct {
	Seat   uint32 `json:"seat"`
	Window uint32 `json:"window"`
	Edges  uint32 `json:"edges"`
}

// PointerBindingCreate registers a pointer button binding. The wm
// allocates the id.
type PointerBindingCreate struct {
	ID     uint32 `json:"id"`
	Seat   uint32 `json:"seat"`
	Button uint32 `json:"button"`
	Mods   uint32 `json:"mods"`
}

// XkbBindingCreate registers a keysym binding. The wm allocates the id.
type XkbBindingCreate struct {
	ID     uint32 `json:"id"`
	Seat   uint32 `json:"seat"`
	Keysym uint32 `json:"keysym"`
	Mods   uint32 `json:"mods"`
}

// BindingRef names an existing binding.
type BindingRef struct {
	ID uint32 `json:"id"`
}

// BindingLayoutOverride pins keysym resolution for a binding to a
// specific XKB layout index. Layout -1 clears the override.
type BindingLayoutOverride struct {
	ID     uint32 `json:"id"`
	Layout int    `json:"layout"`
}
