package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsio/chancore/channel"
)

// syncTimer forces TimerChannel into the synchronous (polled) discipline,
// the same trick the original test suite used to get deterministic,
// thread-free coverage of Dispatch's poll loop.
type syncTimer struct {
	*channel.TimerChannel
}

func newSyncTimer(d time.Duration) *syncTimer {
	return &syncTimer{TimerChannel: channel.NewTimerChannel(d)}
}

func (syncTimer) Synchronous() bool { return true }

func TestDispatchRunEmpty(t *testing.T) {
	d := New()
	res := d.Run()
	assert.True(t, res.Empty())
	d.Stop()
}

func TestDispatchTimerCycles(t *testing.T) {
	chan1 := newSyncTimer(time.Millisecond)
	d := New()
	n := 0
	require.NoError(t, d.Add(chan1, func() error {
		n++
		if n == 100 {
			return chan1.Close()
		}
		return nil
	}))

	res := d.Run()
	require.Equal(t, channel.Channel(chan1), res.Channel)
	assert.NoError(t, res.Err)
	assert.Equal(t, 100, n)
	d.Stop()
}

func TestDispatchQueueDrain(t *testing.T) {
	q := channel.NewQueueChannel[int]()
	for i := 1; i <= 10; i++ {
		require.NoError(t, q.Write(i))
	}

	d := New()
	var got []int
	require.NoError(t, d.Add(q, func() error {
		v, ok := q.Read()
		if !ok {
			return nil
		}
		got = append(got, v)
		if v == 5 {
			return q.Close()
		}
		return nil
	}))

	res := d.Run()
	assert.Equal(t, channel.Channel(q), res.Channel)
	assert.NoError(t, res.Err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
	d.Stop()
}

func TestDispatchHandlerError(t *testing.T) {
	chan1 := newSyncTimer(time.Millisecond)
	d := New()
	n := 0
	boom := errors.New("boom")
	require.NoError(t, d.Add(chan1, func() error {
		n++
		if n == 100 {
			return boom
		}
		return nil
	}))

	res := d.Run()
	require.Equal(t, channel.Channel(chan1), res.Channel)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, 100, n)
	assert.True(t, chan1.Closed())
	d.Stop()
}

func TestDispatchFirstFaultWins(t *testing.T) {
	a := newSyncTimer(time.Millisecond)
	b := newSyncTimer(time.Millisecond)
	d := New()

	require.NoError(t, d.Add(a, func() error { return a.Close() }))
	require.NoError(t, d.Add(b, func() error { return b.Close() }))

	first := d.Run()
	require.NotNil(t, first.Channel)
	assert.NoError(t, first.Err)

	d.Stop()
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
}

func TestDispatchHeterogeneousFault(t *testing.T) {
	a := newSyncTimer(time.Millisecond)
	bAsync := channel.NewTimerChannel(time.Millisecond)

	d := New()
	na, nb := 0, 0
	require.NoError(t, d.Add(a, func() error {
		na++
		if na == 100 {
			return errors.New("A failed")
		}
		return nil
	}))
	require.NoError(t, d.Add(bAsync, func() error {
		nb++
		return nil
	}))

	res := d.Run()
	require.Equal(t, channel.Channel(a), res.Channel)
	require.Error(t, res.Err)

	d.Stop()
	assert.True(t, bAsync.Closed())
	observedAtStop := nb
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, observedAtStop, nb)
}

func TestDispatchAddDuplicateRejected(t *testing.T) {
	q := channel.NewQueueChannel[int]()
	d1 := New()
	d2 := New()
	require.NoError(t, d1.Add(q, func() error { return nil }))
	err := d2.Add(q, func() error { return nil })
	assert.ErrorIs(t, err, ErrDuplicateChannel)
	d1.Stop()
}
