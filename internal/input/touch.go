package input

// touchPoint is one active touch, keyed by protocol id, carrying its
// layout coordinate and the surface that saw the down.
type touchPoint struct {
	lx, ly  float64
	surface Surface
	window  uint32
}

// TouchDown records a new touch point and delivers touch_down to the
// surface under it, if any.
func (s *Seat) TouchDown(time uint32, id int32, lx, ly float64) {
	if _, dup := s.touchPoints[id]; dup {
		// Duplicate id without an up first: protocol misuse, drop it.
		return
	}
	tp := &touchPoint{lx: lx, ly: ly}
	if target, ok := s.manager.core.TargetAt(lx, ly); ok {
		tp.surface = target.Surface
		tp.window = target.Window
		target.Surface.TouchDown(time, id, target.SX, target.SY)
	}
	s.touchPoints[id] = tp
}

// TouchMotion updates the stored coordinate and delivers the motion.
func (s *Seat) TouchMotion(time uint32, id int32, lx, ly float64) {
	tp, ok := s.touchPoints[id]
	if !ok {
		return
	}
	tp.lx, tp.ly = lx, ly
	if tp.surface == nil {
		return
	}
	if surf, alive := s.manager.core.WindowSurface(tp.window); !alive || surf != tp.surface {
		tp.surface = nil
		return
	}
	if target, ok := s.manager.core.TargetAt(lx, ly); ok && target.Surface == tp.surface {
		tp.surface.TouchMotion(time, id, target.SX, target.SY)
	} else {
		tp.surface.TouchMotion(time, id, lx, ly)
	}
}

// TouchUp removes the point and delivers the up.
func (s *Seat) TouchUp(time uint32, id int32) {
	tp, ok := s.touchPoints[id]
	if !ok {
		return
	}
	delete(s.touchPoints, id)
	if tp.surface != nil {
		if surf, alive := s.manager.core.WindowSurface(tp.window); alive && surf == tp.surface {
			tp.surface.TouchUp(time, id)
		}
	}
}

// TouchCancel clears the whole table and broadcasts cancel to every
// client that held a point.
func (s *Seat) TouchCancel() {
	notified := make(map[Surface]bool)
	for id, tp := range s.touchPoints {
		delete(s.touchPoints, id)
		if tp.surface == nil || notified[tp.surface] {
			continue
		}
		if surf, alive := s.manager.core.WindowSurface(tp.window); alive && surf == tp.surface {
			tp.surface.TouchCancel()
			notified[tp.surface] = true
		}
	}
}

// TouchPoints returns the number of active touch points.
func (s *Seat) TouchPoints() int {
	return len(s.touchPoints)
}
