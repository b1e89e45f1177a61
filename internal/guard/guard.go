// Package guard provides the process-wide reentrancy token held across
// operations that call out to the token ledger mid-flight.
package guard

import (
	"errors"
	"sync/atomic"
)

var ErrReentrant = errors.New("reentrant call")

// Guard is a single critical-section token, deliberately not per-group:
// unrelated groups serialize through it too, trading throughput for a
// simpler invariant.
type Guard struct {
	entered atomic.Bool
}

func New() *Guard { return &Guard{} }

// Enter fails immediately if the guard is already held. Callers must pair
// it with a deferred Exit so every return path releases the token.
func (g *Guard) Enter() error {
	if !g.entered.CompareAndSwap(false, true) {
		return ErrReentrant
	}
	return nil
}

func (g *Guard) Exit() { g.entered.Store(false) }
