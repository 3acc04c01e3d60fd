package wm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tidal/internal/geo"
)

func TestConfigureStateMachine(t *testing.T) {
	t.Run("happy path idle to idle", func(t *testing.T) {
		w, _ := newTestWM()
		client := &fakeClient{}
		win := w.CreateWindow(client, nullSurface{})

		w.HandleWindowPropose(win.ID, geo.Box{X: 100, Y: 100, Width: 800, Height: 600})
		ackUpdate(w)

		require.Equal(t, ConfigureInflight, win.ConfigState())
		serial := win.ConfigSerial()
		require.Equal(t, uint32(1), serial)

		w.AckConfigure(win.ID, serial)
		assert.Equal(t, ConfigureAcked, win.ConfigState())

		w.CommitSurface(win.ID, 800, 600)
		assert.Equal(t, ConfigureIdle, win.ConfigState())
	})

	t.Run("stale ack is ignored without state change", func(t *testing.T) {
		w, _ := newTestWM()
		client := &fakeClient{}
		win := w.CreateWindow(client, nullSurface{})

		w.HandleWindowPropose(win.ID, geo.Box{Width: 640, Height: 480})
		ackUpdate(w)

		require.Equal(t, ConfigureInflight, win.ConfigState())
		w.AckConfigure(win.ID, win.ConfigSerial()+7)
		assert.Equal(t, ConfigureInflight, win.ConfigState())

		w.AckConfigure(win.ID, win.ConfigSerial())
		assert.Equal(t, ConfigureAcked, win.ConfigState())
	})

	t.Run("no spurious configure when nothing changed", func(t *testing.T) {
		w, _ := newTestWM()
		client := &fakeClient{}
		win := w.CreateWindow(client, nullSurface{})

		w.HandleWindowPropose(win.ID, geo.Box{Width: 640, Height: 480})
		ackUpdate(w)
		w.AckConfigure(win.ID, win.ConfigSerial())
		w.CommitSurface(win.ID, 640, 480)
		configures := len(client.configures)

		// Same box again: nothing to wait for, nothing to send.
		w.HandleWindowPropose(win.ID, geo.Box{Width: 640, Height: 480})
		ackUpdate(w)

		assert.False(t, w.TransactionInflight())
		assert.Len(t, client.configures, configures)
		assert.Equal(t, ConfigureIdle, win.ConfigState())
	})

	t.Run("flags only change configures without waiting", func(t *testing.T) {
		w, _ := newTestWM()
		client := &fakeClient{}
		win := w.CreateWindow(client, nullSurface{})

		w.HandleWindowPropose(win.ID, geo.Box{Width: 640, Height: 480})
		ackUpdate(w)
		w.AckConfigure(win.ID, win.ConfigSerial())
		w.CommitSurface(win.ID, 640, 480)

		w.HandleWindowDecorations(win.ID, true)
		ackUpdate(w)

		// Configure went out but the transaction did not wait for it.
		assert.False(t, w.TransactionInflight())
		assert.True(t, client.lastConfigure().SSD)
		assert.Equal(t, ConfigureIdle, win.ConfigState())
		assert.True(t, win.Current.SSD)
	})
}

func TestScenarioOpenOneWindow(t *testing.T) {
	w, _ := newTestWM()
	client := &fakeClient{}
	win := w.CreateWindow(client, nullSurface{})

	w.HandleWindowPropose(win.ID, geo.Box{X: 100, Y: 100, Width: 800, Height: 600})
	ackUpdate(w)

	// One transaction: configure serial 1 with the proposed size, the
	// saved frame kept and an early frame_done delivered.
	require.Len(t, client.configures, 1)
	cfg := client.configures[0]
	assert.Equal(t, uint32(1), cfg.Serial)
	assert.Equal(t, int32(800), cfg.Box.Width)
	assert.Equal(t, int32(600), cfg.Box.Height)
	assert.True(t, win.SavedEnabled())
	assert.Equal(t, 1, client.frameDones)
	assert.True(t, w.TransactionInflight())

	w.AckConfigure(win.ID, 1)
	w.CommitSurface(win.ID, 800, 600)

	assert.Equal(t, geo.Box{X: 100, Y: 100, Width: 800, Height: 600}, win.Current.Box)
	assert.False(t, win.SavedEnabled())
	assert.False(t, w.TransactionInflight())
}

func TestBuggyClientSizeOverride(t *testing.T) {
	w, _ := newTestWM()
	client := &fakeClient{}
	win := w.CreateWindow(client, nullSurface{})

	w.HandleWindowPropose(win.ID, geo.Box{Width: 640, Height: 480})
	ackUpdate(w)
	w.AckConfigure(win.ID, win.ConfigSerial())
	w.CommitSurface(win.ID, 640, 480)

	// Client commits a size nobody configured. Accepted, and current
	// follows the buffer so borders stay honest.
	w.CommitSurface(win.ID, 700, 500)
	assert.Equal(t, int32(700), win.Current.Box.Width)
	assert.Equal(t, int32(500), win.Current.Box.Height)
}

func TestBorderLayout(t *testing.T) {
	w, _ := newTestWM()
	client := &fakeClient{}
	win := w.CreateWindow(client, nullSurface{})

	w.HandleWindowPropose(win.ID, geo.Box{X: 10, Y: 20, Width: 300, Height: 200})
	w.HandleWindowDecorations(win.ID, true)
	ackUpdate(w)
	w.AckConfigure(win.ID, win.ConfigSerial())
	w.CommitSurface(win.ID, 300, 200)

	borders := win.Borders()
	for _, b := range borders {
		assert.True(t, b.Node.Enabled)
	}
	// top spans the box plus both corners
	assert.Equal(t, int32(304), borders[0].Width)
	assert.Equal(t, int32(2), borders[0].Height)
	// left hugs the box height
	assert.Equal(t, int32(2), borders[2].Width)
	assert.Equal(t, int32(200), borders[2].Height)

	x, y := win.Tree.AbsolutePosition()
	assert.Equal(t, int32(10), x)
	assert.Equal(t, int32(20), y)
}
