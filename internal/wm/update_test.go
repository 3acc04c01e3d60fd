package wm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tidal/internal/geo"
	"github.com/bnema/tidal/internal/wlproto"
)

func findEnvelope(batch []wlproto.Envelope, msgType string) (wlproto.Envelope, bool) {
	for _, env := range batch {
		if env.Type == msgType {
			return env, true
		}
	}
	return wlproto.Envelope{}, false
}

func TestUpdateCycle(t *testing.T) {
	t.Run("new window announced and batch sealed by update", func(t *testing.T) {
		w, sink := newTestWM()
		client := &fakeClient{}
		w.CreateWindow(client, nullSurface{})

		require.Len(t, sink.batches, 1)
		batch := sink.batches[0]
		_, ok := findEnvelope(batch, wlproto.TypeWindowNew)
		assert.True(t, ok)

		// The update event comes last and carries serial 1.
		last := batch[len(batch)-1]
		require.Equal(t, wlproto.TypeUpdate, last.Type)
		var upd wlproto.Update
		require.NoError(t, json.Unmarshal(last.Payload, &upd))
		assert.Equal(t, uint32(1), upd.Serial)
	})

	t.Run("dirt accumulates while an update is inflight", func(t *testing.T) {
		w, sink := newTestWM()
		client := &fakeClient{}
		win := w.CreateWindow(client, nullSurface{})
		require.Len(t, sink.batches, 1)

		// Title and app id changes while the wm has not replied yet:
		// no extra update goes out.
		w.SetWindowTitle(win.ID, "editor")
		w.SetWindowAppID(win.ID, "org.example.editor")
		assert.Len(t, sink.batches, 1)

		// The reply releases the accumulated dirt as one batch.
		ackUpdate(w)
		require.Len(t, sink.batches, 2)
		batch := sink.lastBatch()
		title, ok := findEnvelope(batch, wlproto.TypeWindowTitle)
		require.True(t, ok)
		var msg wlproto.WindowTitle
		require.NoError(t, json.Unmarshal(title.Payload, &msg))
		assert.Equal(t, "editor", msg.Title)
		_, ok = findEnvelope(batch, wlproto.TypeWindowAppID)
		assert.True(t, ok)
	})

	t.Run("stale ack_update is rejected", func(t *testing.T) {
		w, sink := newTestWM()
		w.CreateWindow(&fakeClient{}, nullSurface{})
		require.Len(t, sink.batches, 1)

		w.HandleAckUpdate(99)
		w.HandleCommit()
		// The inflight update was never acked, so the commit was
		// ignored and the cycle is still open.
		assert.True(t, w.updateInflight)
		assert.False(t, w.updateAcked)
	})

	t.Run("proposals are double buffered until commit", func(t *testing.T) {
		w, _ := newTestWM()
		client := &fakeClient{}
		win := w.CreateWindow(client, nullSurface{})

		w.HandleWindowPropose(win.ID, geo.Box{Width: 800, Height: 600})
		// Not yet observable by layout state.
		assert.Equal(t, int32(0), win.Pending.Box.Width)

		ackUpdate(w)
		assert.Equal(t, int32(800), win.Pending.Box.Width)
	})

	t.Run("window closed delta reaches the wm", func(t *testing.T) {
		w, sink := newTestWM()
		client := &fakeClient{}
		win := w.CreateWindow(client, nullSurface{})
		ackUpdate(w)

		w.DestroyWindow(win.ID)
		require.True(t, len(sink.batches) >= 2)
		_, ok := findEnvelope(sink.lastBatch(), wlproto.TypeWindowClosed)
		assert.True(t, ok)
	})

	t.Run("reconnect replays full state", func(t *testing.T) {
		w, sink := newTestWM()
		w.CreateWindow(&fakeClient{}, nullSurface{})
		w.AddOutput("DP-1", Mode{Width: 1920, Height: 1080, Refresh: 60000}, 1.0, 0, 0)
		ackUpdate(w)

		w.HandleWmDisconnect()
		w.HandleWmConnect()

		batch := sink.lastBatch()
		_, hasWin := findEnvelope(batch, wlproto.TypeWindowNew)
		_, hasOut := findEnvelope(batch, wlproto.TypeOutputNew)
		assert.True(t, hasWin)
		assert.True(t, hasOut)
	})
}

func TestOutputLifecycle(t *testing.T) {
	t.Run("first exposure sends dimensions and position", func(t *testing.T) {
		w, sink := newTestWM()
		w.AddOutput("DP-1", Mode{Width: 2560, Height: 1440, Refresh: 144000}, 1.0, 100, 0)

		batch := sink.lastBatch()
		dims, ok := findEnvelope(batch, wlproto.TypeOutputDimensions)
		require.True(t, ok)
		var msg wlproto.OutputDimensions
		require.NoError(t, json.Unmarshal(dims.Payload, &msg))
		assert.Equal(t, int32(2560), msg.Width)

		pos, ok := findEnvelope(batch, wlproto.TypeOutputPosition)
		require.True(t, ok)
		var pmsg wlproto.OutputPosition
		require.NoError(t, json.Unmarshal(pos.Payload, &pmsg))
		assert.Equal(t, int32(100), pmsg.X)
	})

	t.Run("only deltas after exposure", func(t *testing.T) {
		w, sink := newTestWM()
		out := w.AddOutput("DP-1", Mode{Width: 1920, Height: 1080, Refresh: 60000}, 1.0, 0, 0)
		ackUpdate(w)

		w.SetOutputPosition(out.ID, 1920, 0)
		batch := sink.lastBatch()
		_, hasDims := findEnvelope(batch, wlproto.TypeOutputDimensions)
		_, hasPos := findEnvelope(batch, wlproto.TypeOutputPosition)
		assert.False(t, hasDims)
		assert.True(t, hasPos)
	})

	t.Run("hard disable detaches from the wm view", func(t *testing.T) {
		w, sink := newTestWM()
		out := w.AddOutput("DP-1", Mode{Width: 1920, Height: 1080, Refresh: 60000}, 1.0, 0, 0)
		ackUpdate(w)

		w.DisableOutput(out.ID, true)
		_, removed := findEnvelope(sink.lastBatch(), wlproto.TypeOutputRemoved)
		assert.True(t, removed)
		// The wm replies to the removal update before the next one goes out.
		ackUpdate(w)

		// Re-enabling is a fresh exposure.
		w.EnableOutput(out.ID)
		_, added := findEnvelope(sink.lastBatch(), wlproto.TypeOutputNew)
		assert.True(t, added)
	})

	t.Run("destroy removes and frees", func(t *testing.T) {
		w, sink := newTestWM()
		out := w.AddOutput("DP-1", Mode{Width: 1920, Height: 1080, Refresh: 60000}, 1.0, 0, 0)
		ackUpdate(w)

		w.RemoveOutput(out.ID)
		_, removed := findEnvelope(sink.lastBatch(), wlproto.TypeOutputRemoved)
		assert.True(t, removed)
		assert.Empty(t, w.Outputs())
	})
}

func TestSessionLock(t *testing.T) {
	w, _ := newTestWM()
	o1 := w.AddOutput("DP-1", Mode{Width: 1920, Height: 1080, Refresh: 60000}, 1.0, 0, 0)
	o2 := w.AddOutput("DP-2", Mode{Width: 1920, Height: 1080, Refresh: 60000}, 1.0, 1920, 0)

	w.LockSession()
	assert.True(t, w.Locked())
	assert.Equal(t, LockStateWaiting, w.SessionLockState())
	assert.Equal(t, LockRenderPendingBlank, o1.LockRender)

	// Hit testing returns nothing while locked.
	client := &fakeClient{}
	w.CreateWindow(client, nullSurface{})
	_, ok := w.TargetAt(10, 10)
	assert.False(t, ok)

	// The lock takes effect only once every output presented hidden
	// content.
	w.NotifyOutputPresent(o1.ID)
	assert.Equal(t, LockStateWaiting, w.SessionLockState())
	assert.Equal(t, LockRenderBlanked, o1.LockRender)

	w.SetLockSurface(o2.ID)
	w.NotifyOutputPresent(o2.ID)
	assert.Equal(t, LockStateLocked, w.SessionLockState())
	assert.Equal(t, LockRenderLockSurface, o2.LockRender)

	w.UnlockSession()
	assert.False(t, w.Locked())
	assert.Equal(t, LockRenderPendingUnlock, o1.LockRender)
	w.NotifyOutputPresent(o1.ID)
	assert.Equal(t, LockRenderUnlocked, o1.LockRender)
}
