package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorChannelAlwaysReady(t *testing.T) {
	n := 0
	g := NewGeneratorChannel(func() int {
		n++
		return n
	})
	assert.True(t, g.Poll())
	v, ok := g.Read()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.NoError(t, g.Close())
	assert.True(t, g.Poll())
	_, ok = g.Read()
	assert.False(t, ok)
}

func TestFuncChannelStopsOnSentinel(t *testing.T) {
	i := 0
	f := NewFuncChannel(func() (int, error) {
		i++
		if i > 3 {
			return 0, ErrGeneratorDone
		}
		return i, nil
	})

	var got []int
	for {
		v, ok := f.Read()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.True(t, f.Closed())
	assert.NoError(t, f.Err())
}

func TestFuncChannelRecordsError(t *testing.T) {
	boom := assert.AnError
	f := NewFuncChannel(func() (int, error) { return 0, boom })
	_, ok := f.Read()
	assert.False(t, ok)
	assert.ErrorIs(t, f.Err(), boom)
}
