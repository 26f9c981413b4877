package channel

import (
	"sync"
	"time"
)

// waitUntilLocked blocks on cond until ready reports true or deadline
// passes, returning ready's final value. The caller must hold cond.L on
// entry; it is held again on return. sync.Cond has no built-in timed wait,
// so a one-shot timer stands in for it, broadcasting to unblock the wait
// once the deadline arrives — the same technique a select over a
// time.Timer's channel achieves for plain goroutines.
func waitUntilLocked(cond *sync.Cond, deadline time.Time, ready func() bool) bool {
	for !ready() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.AfterFunc(remaining, func() {
			cond.L.Lock()
			cond.Broadcast()
			cond.L.Unlock()
		})
		cond.Wait()
		timer.Stop()
	}
	return true
}
