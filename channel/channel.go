package channel

import "sync"

// Channel is a closeable, waitable event source. Concrete channel types
// additionally satisfy MessageReader[T] or StreamReader depending on what
// they carry.
type Channel interface {
	Waiter
	Owned
	// Close marks the channel closed. Idempotent.
	Close() error
	// Closed reports whether Close has been called.
	Closed() bool
	// Synchronous reports whether the channel uses the polling discipline
	// (true) or requires a dedicated goroutine to wait on its behalf
	// (false).
	Synchronous() bool
}

// MessageReader is satisfied by channels that deliver discrete values one
// ready event at a time.
type MessageReader[T any] interface {
	// Read returns the next available value. ok is false if none is
	// available (the channel is empty, or closed with nothing pending).
	Read() (value T, ok bool)
}

// StreamReader is satisfied by channels that carry an unstructured byte
// stream rather than discrete messages.
type StreamReader interface {
	Read(p []byte) (int, error)
	// Append reads everything currently available, appending it to dst.
	Append(dst []byte) ([]byte, error)
	// ReadAll reads until the stream is closed.
	ReadAll() ([]byte, error)
}

// Owned is satisfied by every concrete channel via the embedded
// baseChannel, letting a Dispatch in another package claim and release
// ownership without this package needing to know what a Dispatch is. The
// owner key is an opaque comparable value (in practice, the *Dispatch
// pointer itself).
type Owned interface {
	// TryClaim claims the channel for owner key, refusing if it is
	// already claimed by a different key. Re-claiming with the same key
	// succeeds.
	TryClaim(key any) bool
	// Release clears ownership if currently held by key; a mismatched
	// release is a no-op.
	Release(key any)
	// OwnedBy reports whether key currently owns the channel.
	OwnedBy(key any) bool
}

// baseChannel holds the state common to every concrete channel in this
// package: the lock guarding it, the condition variable Wait/WaitFor block
// on, whether it has been closed, and which Dispatch (if any) currently
// owns it.
type baseChannel struct {
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
	owner  any
}

func newBaseChannel() *baseChannel {
	b := &baseChannel{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *baseChannel) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// closeLocked marks the channel closed and wakes every waiter. Caller must
// hold b.mu.
func (b *baseChannel) closeLocked() {
	if !b.closed {
		b.closed = true
		b.cond.Broadcast()
	}
}

func (b *baseChannel) TryClaim(key any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owner != nil && b.owner != key {
		return false
	}
	b.owner = key
	return true
}

func (b *baseChannel) Release(key any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owner == key {
		b.owner = nil
	}
}

func (b *baseChannel) OwnedBy(key any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner == key
}

var _ Owned = (*baseChannel)(nil)
