// Package session abstracts the session backend the compositor runs
// under. The only operation the core needs from it is VT switching,
// triggered by the built-in XF86Switch_VT keysym mappings.
package session

import "fmt"

// Backend is the session backend interface.
type Backend interface {
	// ChangeVT switches the active virtual terminal. vt is 1-based.
	ChangeVT(vt uint) error
}

// Noop is the backend used when the compositor runs nested or headless;
// VT switching is not available there.
type Noop struct{}

// ChangeVT always fails: there is no VT to switch.
func (Noop) ChangeVT(vt uint) error {
	return fmt.Errorf("session: no VT available (nested or headless backend)")
}

// Func adapts a function to the Backend interface.
type Func func(vt uint) error

func (f Func) ChangeVT(vt uint) error { return f(vt) }
