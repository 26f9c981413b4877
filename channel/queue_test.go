package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueChannelOrder(t *testing.T) {
	q := NewQueueChannel[int]()
	for i := 1; i <= 10; i++ {
		require.NoError(t, q.Write(i))
	}

	var got []int
	for {
		require.True(t, q.WaitFor(time.Second))
		v, ok := q.Read()
		require.True(t, ok)
		got = append(got, v)
		if v == 5 {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestQueueChannelEmptyReadNotOK(t *testing.T) {
	q := NewQueueChannel[string]()
	_, ok := q.Read()
	assert.False(t, ok)
}

func TestQueueChannelWriteAfterClose(t *testing.T) {
	q := NewQueueChannel[int]()
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Write(1), ErrClosed)
	assert.True(t, q.WaitFor(0))
}
