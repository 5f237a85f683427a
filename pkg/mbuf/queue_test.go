package mbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkbufs allocates n standalone buffers and destroys them when the test
// ends, draining any queue membership first.
func mkbufs(t *testing.T, n int) []*Buffer {
	t.Helper()
	bufs := make([]*Buffer, n)
	for i := range bufs {
		bufs[i] = mkbuf(t, 64)
	}
	t.Cleanup(func() {
		for _, b := range bufs {
			if b.owner != nil {
				b.owner.Remove(b)
			}
			b.Destroy()
		}
	})
	return bufs
}

func TestQueueZeroValue(t *testing.T) {
	var q Queue

	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.First())
	assert.Nil(t, q.Pop())
}

func TestQueueFIFO(t *testing.T) {
	bufs := mkbufs(t, 3)
	var q Queue

	for _, b := range bufs {
		q.Push(b)
	}
	require.Equal(t, 3, q.Len())
	require.False(t, q.Empty())

	for i := 0; i < 3; i++ {
		b := q.Pop()
		require.Same(t, bufs[i], b)
		// Popped buffers leave with clean links
		assert.Nil(t, b.Next())
		assert.Nil(t, b.owner)
	}
	assert.True(t, q.Empty())
	assert.Nil(t, q.Pop())
}

func TestQueueTraversal(t *testing.T) {
	bufs := mkbufs(t, 3)
	var q Queue

	for _, b := range bufs {
		q.Push(b)
	}

	var seen []*Buffer
	for b := q.First(); b != nil; b = b.Next() {
		seen = append(seen, b)
	}
	assert.Equal(t, bufs, seen)
}

func TestQueueRemove(t *testing.T) {
	t.Run("head", func(t *testing.T) {
		bufs := mkbufs(t, 3)
		var q Queue
		for _, b := range bufs {
			q.Push(b)
		}

		q.Remove(bufs[0])
		assert.Equal(t, 2, q.Len())
		assert.Same(t, bufs[1], q.First())
		assert.Nil(t, bufs[0].owner)
	})

	t.Run("middle", func(t *testing.T) {
		bufs := mkbufs(t, 3)
		var q Queue
		for _, b := range bufs {
			q.Push(b)
		}

		q.Remove(bufs[1])
		assert.Equal(t, 2, q.Len())
		assert.Same(t, bufs[2], bufs[0].Next())
		assert.Nil(t, bufs[1].Next())
	})

	t.Run("tail", func(t *testing.T) {
		bufs := mkbufs(t, 3)
		var q Queue
		for _, b := range bufs {
			q.Push(b)
		}

		q.Remove(bufs[2])
		assert.Equal(t, 2, q.Len())

		// The tail pointer must follow, or the next push corrupts the chain
		q.Push(bufs[2])
		assert.Same(t, bufs[2], bufs[1].Next())
		assert.Equal(t, 3, q.Len())
	})

	t.Run("only member", func(t *testing.T) {
		bufs := mkbufs(t, 1)
		var q Queue
		q.Push(bufs[0])

		q.Remove(bufs[0])
		assert.True(t, q.Empty())

		// An emptied queue accepts new members
		q.Push(bufs[0])
		assert.Same(t, bufs[0], q.First())
	})
}

func TestQueueExclusiveMembership(t *testing.T) {
	bufs := mkbufs(t, 1)
	var q1, q2 Queue

	q1.Push(bufs[0])

	requireViolation(t, func() { q1.Push(bufs[0]) })
	requireViolation(t, func() { q2.Push(bufs[0]) })
	requireViolation(t, func() { q2.Remove(bufs[0]) })

	// Once released, the buffer may join another queue
	q1.Remove(bufs[0])
	assert.NotPanics(t, func() { q2.Push(bufs[0]) })
}

func TestQueueRemoveUnqueuedPanics(t *testing.T) {
	bufs := mkbufs(t, 1)
	var q Queue

	requireViolation(t, func() { q.Remove(bufs[0]) })
}

func TestQueueTotalLen(t *testing.T) {
	bufs := mkbufs(t, 3)
	var q Queue

	bufs[0].Copy(seq(10))
	bufs[1].Copy(seq(25))
	bufs[1].Discard(5)
	// bufs[2] stays empty

	for _, b := range bufs {
		q.Push(b)
	}
	assert.Equal(t, 30, q.TotalLen())

	q.Pop()
	assert.Equal(t, 20, q.TotalLen())
}
