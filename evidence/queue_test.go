package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteQueueOrdering(t *testing.T) {

	q := NewWriteQueue(64)

	var got []int

	for i := 0; i < 20; i++ {
		i := i
		ok := q.Submit(func() {
			got = append(got, i)
		})
		require.True(t, ok, "submit %d", i)
	}

	q.Close()

	require.Len(t, got, 20)

	for i, v := range got {
		assert.Equal(t, i, v, "jobs must run in submission order")
	}
}

func TestWriteQueueDropsWhenFull(t *testing.T) {

	q := NewWriteQueue(1)

	block := make(chan struct{})
	started := make(chan struct{})

	// occupy the worker
	require.True(t, q.Submit(func() {
		close(started)
		<-block
	}))

	<-started

	// fill the single buffer slot
	require.True(t, q.Submit(func() {}))

	// queue is now full, further submits drop
	assert.False(t, q.Submit(func() {}))

	close(block)
	q.Close()
}

func TestWriteQueueSubmitAfterClose(t *testing.T) {

	q := NewWriteQueue(4)
	q.Close()

	assert.False(t, q.Submit(func() {}), "submit after close must drop")

	// closing again is safe
	q.Close()
}
