package wm

import (
	"time"

	"github.com/bnema/tidal/internal/logger"
)

// applyPendingAll promotes pending to inflight for every live window
// and starts a transaction. While one is already running the request
// coalesces: pending keeps accumulating and is re-applied right after
// the running transaction commits.
func (w *WM) applyPendingAll() {
	if w.txn.inflight {
		w.txn.queued = true
		return
	}

	// Iterate in stacking order, bottom first, so configure serials
	// are deterministic.
	participants := make([]*Window, 0, len(w.order))
	for i := len(w.order) - 1; i >= 0; i-- {
		win := w.order[i]
		win.applyPending()
		participants = append(participants, win)
	}

	w.startTransaction(participants)
}

func (w *WM) startTransaction(participants []*Window) {
	w.txn.serial++
	w.txn.windows = participants
	w.txn.pendingAcks = 0

	for _, win := range participants {
		if win.Destroying {
			continue
		}
		win.inflightTransaction = true
		if win.configure(w.nextConfigureSerial()) {
			w.txn.pendingAcks++
			// Keep the old frame on screen and get the client drawing
			// the new size right away.
			win.saveSurface()
			win.client.SendFrameDone()
		}
	}

	if w.txn.pendingAcks == 0 {
		w.commitTransactionAll()
		return
	}

	w.txn.inflight = true
	serial := w.txn.serial
	w.txn.timer = time.AfterFunc(w.cfg.TransactionTimeout, func() {
		w.Post(func() { w.transactionTimeout(serial) })
	})
	logger.Debugf("transaction %d started, awaiting %d acks", w.txn.serial, w.txn.pendingAcks)
}

// windowConfigured is called when one window finishes its configure
// round trip (ack then commit), or when a dying window's slot is
// satisfied.
func (w *WM) windowConfigured(win *Window) {
	if !win.inflightTransaction || !w.txn.inflight {
		return
	}
	if w.txn.pendingAcks > 0 {
		w.txn.pendingAcks--
	}
	if w.txn.pendingAcks == 0 {
		w.commitTransactionAll()
	}
}

// transactionTimeout force-commits with whatever state is available.
// Not an error by contract; the un-acked windows move to their
// timed-out states.
func (w *WM) transactionTimeout(serial uint32) {
	if !w.txn.inflight || w.txn.serial != serial {
		return
	}
	logger.Warnf("transaction %d timed out with %d configures outstanding", serial, w.txn.pendingAcks)
	w.commitTransactionAll()
}

// commitTransactionAll transfers inflight to current for every
// participant in a single turn, so the renderer only ever observes a
// consistent cross-window snapshot.
func (w *WM) commitTransactionAll() {
	if w.txn.timer != nil {
		w.txn.timer.Stop()
		w.txn.timer = nil
	}
	w.txn.inflight = false
	w.txn.pendingAcks = 0

	for _, win := range w.txn.windows {
		if win.Destroying {
			win.dropSaved()
			win.Tree.Destroy()
			delete(w.windows, win.ID)
			continue
		}
		win.commitTransaction()
	}
	w.txn.windows = nil

	// Outputs removed mid-transaction were kept alive for its
	// references; reap them now.
	var destroying []*Output
	for _, out := range w.outputOrder {
		if out.Op == OpDestroying {
			destroying = append(destroying, out)
		}
	}
	for _, out := range destroying {
		w.reapOutput(out)
	}

	if w.txn.queued {
		w.txn.queued = false
		w.applyPendingAll()
	}
}

// TransactionInflight reports whether a transaction is awaiting acks.
func (w *WM) TransactionInflight() bool {
	return w.txn.inflight
}

// PendingAcks returns the outstanding configure count, for observers.
func (w *WM) PendingAcks() int {
	return w.txn.pendingAcks
}
