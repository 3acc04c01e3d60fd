package wlproto

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/tidal/internal/geo"
)

// Handler receives decoded wm requests. The window management core
// implements this; all methods are invoked on the core event loop.
type Handler interface {
	HandleAckUpdate(serial uint32)
	HandleCommit()
	HandleWindowPropose(id uint32, box geo.Box)
	HandleWindowFullscreen(id uint32, fullscreen bool)
	HandleWindowDecorations(id uint32, ssd bool)
	HandleWindowFocus(seat, id uint32)
	HandleWindowClose(id uint32)
	HandleSeatOpMove(seat, window uint32)
	HandleSeatOpResize(seat, window, edges uint32)
	HandlePointerBindingCreate(id, seat, button, mods uint32)
	HandleXkbBindingCreate(id, seat, keysym, mods uint32)
	HandleBindingEnable(id uint32)
	HandleBindingDisable(id uint32)
	HandleBindingLayoutOverride(id uint32, layout int)
	HandleBindingDestroy(id uint32)
}

// Dispatch decodes a request envelope and invokes the matching handler
// method. Unknown types and malformed payloads are protocol misuse and
// reported to the caller.
func Dispatch(h Handler, env Envelope) error {
	decode := func(v interface{}) error {
		if err := json.Unmarshal(env.Payload, v); err != nil {
			return fmt.Errorf("invalid %s payload: %w", env.Type, err)
		}
		return nil
	}

	switch env.Type {
	case TypeAckUpdate:
		var msg AckUpdate
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleAckUpdate(msg.Serial)
	case TypeCommit:
		h.HandleCommit()
	case TypeWindowPropose:
		var msg WindowPropose
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleWindowPropose(msg.ID, msg.Box)
	case TypeWindowFullscreen:
		var msg WindowFullscreen
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleWindowFullscreen(msg.ID, msg.Fullscreen)
	case TypeWindowDecorations:
		var msg WindowDecorations
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleWindowDecorations(msg.ID, msg.SSD)
	case TypeWindowFocus:
		var msg WindowFocus
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleWindowFocus(msg.Seat, msg.ID)
	case TypeWindowClose:
		var msg WindowClose
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleWindowClose(msg.ID)
	case TypeSeatOpMove:
		var msg SeatOpMove
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleSeatOpMove(msg.Seat, msg.Window)
	case TypeSeatOpResize:
		var msg SeatOpResize
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleSeatOpResize(msg.Seat, msg.Window, msg.Edges)
	case TypePointerBindingCreate:
		var msg PointerBindingCreate
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandlePointerBindingCreate(msg.ID, msg.Seat, msg.Button, msg.Mods)
	case TypeXkbBindingCreate:
		var msg XkbBindingCreate
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleXkbBindingCreate(msg.ID, msg.Seat, msg.Keysym, msg.Mods)
	case TypeBindingEnable:
		var msg BindingRef
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleBindingEnable(msg.ID)
	case TypeBindingDisable:
		var msg BindingRef
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleBindingDisable(msg.ID)
	case TypeBindingLayoutOverride:
		var msg BindingLayoutOverride
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleBindingLayoutOverride(msg.ID, msg.Layout)
	case TypeBindingDestroy:
		var msg BindingRef
		if err := decode(&msg); err != nil {
			return err
		}
		h.HandleBindingDestroy(msg.ID)
	default:
		return fmt.Errorf("unknown request type: %s", env.Type)
	}

	return nil
}
