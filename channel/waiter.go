package channel

import "time"

// Waiter is satisfied by anything that can report readiness either
// instantly (Poll) or by blocking, with or without a bound on how long to
// block. A type embedding baseWaiter overrides WaitFor or WaitUntil, and
// baseWaiter supplies the other three in terms of it.
type Waiter interface {
	// Poll reports whether the waiter is ready right now, without blocking.
	Poll() bool
	// Wait blocks until the waiter is ready.
	Wait()
	// WaitFor blocks until ready or until d elapses, reporting which.
	WaitFor(d time.Duration) bool
	// WaitUntil blocks until ready or until t is reached, reporting which.
	WaitUntil(t time.Time) bool
}

// baseWaiter implements Waiter's three derived methods in terms of a single
// primitive supplied by the embedding type, which must be WaitFor or
// WaitUntil. Poll calls WaitFor(0), Wait calls WaitFor(time.Second) in a
// loop, and WaitFor and WaitUntil call each other, so an embedder that
// overrides only Poll or Wait leaves WaitFor and WaitUntil recursing into
// each other without end.
type baseWaiter struct {
	self Waiter
}

// newBaseWaiter binds the mixin to the concrete Waiter it's embedded in, so
// its fallback methods dispatch back through the overridden primitive.
func newBaseWaiter(self Waiter) baseWaiter { return baseWaiter{self: self} }

func (w baseWaiter) Poll() bool { return w.self.WaitFor(0) }

func (w baseWaiter) Wait() {
	for !w.self.WaitFor(time.Second) {
	}
}

func (w baseWaiter) WaitFor(d time.Duration) bool {
	return w.self.WaitUntil(time.Now().Add(d))
}

func (w baseWaiter) WaitUntil(t time.Time) bool {
	return w.self.WaitFor(time.Until(t))
}
