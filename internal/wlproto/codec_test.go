package wlproto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tidal/internal/geo"
)

func TestCodecRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	env := MustEnvelope(TypeWindowPropose, WindowPropose{
		ID:  7,
		Box: geo.Box{X: 10, Y: 20, Width: 640, Height: 480},
	})
	require.NoError(t, WriteMessage(&buf, env))

	out, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, TypeWindowPropose, out.Type)
	assert.JSONEq(t, string(env.Payload), string(out.Payload))
}

func TestCodecRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	// Length prefix larger than the limit, no body needed.
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	_, err := ReadMessage(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

// recordHandler records dispatched calls as strings.
type recordHandler struct {
	calls []string
}

func (h *recordHandler) rec(s string) { h.calls = append(h.calls, s) }

func (h *recordHandler) HandleAckUpdate(serial uint32) { h.rec("ack_update") }
func (h *recordHandler) HandleCommit()                 { h.rec("commit") }
func (h *recordHandler) HandleWindowPropose(id uint32, box geo.Box) {
	h.rec("propose")
}
func (h *recordHandler) HandleWindowFullscreen(id uint32, fs bool)   { h.rec("fullscreen") }
func (h *recordHandler) HandleWindowDecorations(id uint32, ssd bool) { h.rec("decorations") }
func (h *recordHandler) HandleWindowFocus(seat, id uint32)           { h.rec("focus") }
func (h *recordHandler) HandleWindowClose(id uint32)                 { h.rec("close") }
func (h *recordHandler) HandleSeatOpMove(seat, window uint32)        { h.rec("op_move") }
func (h *recordHandler) HandleSeatOpResize(seat, window, edges uint32) {
	h.rec("op_resize")
}
func (h *recordHandler) HandlePointerBindingCreate(id, seat, button, mods uint32) {
	h.rec("pointer_binding_create")
}
func (h *recordHandler) HandleXkbBindingCreate(id, seat, keysym, mods uint32) {
	h.rec("xkb_binding_create")
}
func (h *recordHandler) HandleBindingEnable(id uint32)  { h.rec("enable") }
func (h *recordHandler) HandleBindingDisable(id uint32) { h.rec("disable") }
func (h *recordHandler) HandleBindingLayoutOverride(id uint32, layout int) {
	h.rec("layout_override")
}
func (h *recordHandler) HandleBindingDestroy(id uint32) { h.rec("destroy") }

func TestDispatch(t *testing.T) {
	t.Run("routes requests to handler methods", func(t *testing.T) {
		h := &recordHandler{}
		envs := []Envelope{
			MustEnvelope(TypeAckUpdate, AckUpdate{Serial: 3}),
			{Type: TypeCommit},
			MustEnvelope(TypeWindowPropose, WindowPropose{ID: 1}),
			MustEnvelope(TypeXkbBindingCreate, XkbBindingCreate{ID: 2, Seat: 1}),
			MustEnvelope(TypeSeatOpResize, SeatOpResize{Seat: 1, Window: 1, Edges: 10}),
		}
		for _, env := range envs {
			require.NoError(t, Dispatch(h, env))
		}
		assert.Equal(t, []string{"ack_update", "commit", "propose", "xkb_binding_create", "op_resize"}, h.calls)
	})

	t.Run("unknown type is an error", func(t *testing.T) {
		h := &recordHandler{}
		err := Dispatch(h, Envelope{Type: "frobnicate"})
		require.Error(t, err)
		assert.Empty(t, h.calls)
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		h := &recordHandler{}
		err := Dispatch(h, Envelope{Type: TypeAckUpdate, Payload: []byte(`"nope"`)})
		require.Error(t, err)
		assert.Empty(t, h.calls)
	})
}
