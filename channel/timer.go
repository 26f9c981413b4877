package channel

import "time"

// TimerChannel becomes ready once per tick interval. Each ready WaitFor
// consumes one tick, so if the caller falls behind, the missed ticks are
// reported one per call until the timer has caught up; Flush discards them
// instead.
type TimerChannel struct {
	*baseChannel
	baseWaiter
	delta    time.Duration
	nextTick time.Time
}

var _ Channel = (*TimerChannel)(nil)

// NewTimerChannel creates a timer that first becomes ready after d, and
// every d thereafter. A non-positive d is treated as zero (fires
// immediately, every poll).
func NewTimerChannel(d time.Duration) *TimerChannel {
	if d < 0 {
		d = 0
	}
	t := &TimerChannel{
		baseChannel: newBaseChannel(),
		delta:       d,
	}
	t.baseWaiter = newBaseWaiter(t)
	t.nextTick = time.Now().Add(d)
	return t
}

func (t *TimerChannel) Synchronous() bool { return false }

func (t *TimerChannel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
	return nil
}

// WaitFor overrides baseWaiter's fallback: it is the channel's one
// primitive operation, implementing tick arithmetic directly against the
// wall clock rather than delegating to WaitUntil, since the deadline here
// is a moving target (next_tick_ advances on every successful wait).
func (t *TimerChannel) WaitFor(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return true
	}
	now := time.Now()
	if !t.nextTick.After(now) {
		t.nextTick = t.nextTick.Add(t.delta)
		return true
	}
	if d <= 0 {
		return false
	}
	remaining := t.nextTick.Sub(now)
	if d < remaining {
		waitUntilLocked(t.cond, now.Add(d), func() bool { return t.closed })
		return t.closed
	}
	waitUntilLocked(t.cond, t.nextTick, func() bool { return t.closed })
	if !t.closed {
		t.nextTick = t.nextTick.Add(t.delta)
	}
	return true
}

func (t *TimerChannel) WaitUntil(at time.Time) bool {
	return t.WaitFor(time.Until(at))
}

// Flush skips over any ticks already missed, moving the next tick strictly
// into the future, so the next WaitFor waits for that tick instead of
// replaying the backlog.
func (t *TimerChannel) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	now := time.Now()
	if now.Before(t.nextTick) {
		return
	}
	if t.delta <= 0 {
		t.nextTick = now
		return
	}
	skip := now.Sub(t.nextTick) / t.delta
	t.nextTick = t.nextTick.Add(t.delta * (skip + 1))
}
