package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stepWaiter overrides only WaitFor, so baseWaiter must derive Poll, Wait,
// and WaitUntil from it.
type stepWaiter struct {
	baseWaiter
	ready bool
}

func newStepWaiter() *stepWaiter {
	w := &stepWaiter{}
	w.baseWaiter = newBaseWaiter(w)
	return w
}

func (w *stepWaiter) WaitFor(d time.Duration) bool { return w.ready }

func TestBaseWaiterDerivesPollFromWaitFor(t *testing.T) {
	w := newStepWaiter()
	assert.False(t, w.Poll())
	w.ready = true
	assert.True(t, w.Poll())
}

func TestBaseWaiterDerivesWaitUntilFromWaitFor(t *testing.T) {
	w := newStepWaiter()
	w.ready = true
	assert.True(t, w.WaitUntil(time.Now().Add(time.Hour)))
}

func TestBaseWaiterWaitLoopsUntilReady(t *testing.T) {
	w := newStepWaiter()
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	w.ready = true
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not observe readiness")
	}
}
