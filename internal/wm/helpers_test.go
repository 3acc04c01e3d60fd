package wm

import (
	"time"

	"github.com/bnema/tidal/internal/input"
	"github.com/bnema/tidal/internal/session"
	"github.com/bnema/tidal/internal/wlproto"
)

// fakeSink records update batches instead of writing to a socket.
type fakeSink struct {
	connected bool
	batches   [][]wlproto.Envelope
}

func (s *fakeSink) SendBatch(envs []wlproto.Envelope) error {
	s.batches = append(s.batches, envs)
	return nil
}

func (s *fakeSink) Connected() bool {
	return s.connected
}

func (s *fakeSink) lastBatch() []wlproto.Envelope {
	if len(s.batches) == 0 {
		return nil
	}
	return s.batches[len(s.batches)-1]
}

func (s *fakeSink) types(batch []wlproto.Envelope) []string {
	out := make([]string, 0, len(batch))
	for _, env := range batch {
		out = append(out, env.Type)
	}
	return out
}

// fakeClient records configures for one test window.
type fakeClient struct {
	configures []ConfigureRequest
	frameDones int
	closed     bool
}

func (c *fakeClient) Configure(req ConfigureRequest) {
	c.configures = append(c.configures, req)
}

func (c *fakeClient) SendFrameDone() {
	c.frameDones++
}

func (c *fakeClient) CloseRequested() {
	c.closed = true
}

func (c *fakeClient) lastConfigure() ConfigureRequest {
	if len(c.configures) == 0 {
		return ConfigureRequest{}
	}
	return c.configures[len(c.configures)-1]
}

// nullSurface is an input.Surface that swallows everything.
type nullSurface struct{}

func (nullSurface) PointerEnter(sx, sy float64)                        {}
func (nullSurface) PointerLeave()                                      {}
func (nullSurface) PointerMotion(time uint32, sx, sy float64)          {}
func (nullSurface) PointerButton(time uint32, button uint32, p bool)   {}
func (nullSurface) PointerAxis(time uint32, horiz bool, delta float64) {}
func (nullSurface) KeyboardEnter()                                     {}
func (nullSurface) KeyboardLeave()                                     {}
func (nullSurface) KeyboardKey(time uint32, keycode uint32, p bool)    {}
func (nullSurface) TouchDown(time uint32, id int32, sx, sy float64)    {}
func (nullSurface) TouchMotion(time uint32, id int32, sx, sy float64)  {}
func (nullSurface) TouchUp(time uint32, id int32)                      {}
func (nullSurface) TouchCancel()                                       {}

// newTestWM assembles a core with a recording sink and a real input
// manager, the way the server does.
func newTestWM() (*WM, *fakeSink) {
	sink := &fakeSink{connected: true}
	w := New(Config{
		TransactionTimeout: 50 * time.Millisecond,
		BorderWidth:        2,
	}, sink)
	m := input.NewManager(w, session.Noop{})
	w.SetInput(m)
	return w, sink
}

// ackUpdate replies to the outstanding update the way a well-behaved
// wm client would.
func ackUpdate(w *WM) {
	if w.updateInflight {
		w.HandleAckUpdate(w.updateSerial)
	}
	w.HandleCommit()
}
