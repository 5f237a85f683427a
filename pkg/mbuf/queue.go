package mbuf

import (
	"github.com/ajitpratap0/netbuf/internal/assert"
)

// Queue is a FIFO chain of buffers threaded through their intrusive links.
// Connections use one queue per direction to order pending buffers without
// allocating list nodes. A buffer is a member of at most one queue; every
// insert asserts the buffer is free and every removal clears its link.
//
// The zero value is an empty queue ready for use. A Queue is not safe for
// concurrent use.
type Queue struct {
	head *Buffer
	tail *Buffer
	size int
}

// Push appends b at the tail of the queue. The buffer must not already be
// a member of any queue.
func (q *Queue) Push(b *Buffer) {
	if assert.Enabled() {
		assert.That(b.owner == nil && b.next == nil, "buffer already queued")
	}
	b.owner = q
	if q.tail == nil {
		q.head = b
	} else {
		q.tail.next = b
	}
	q.tail = b
	q.size++
}

// Pop detaches and returns the head buffer, or nil when the queue is
// empty. The returned buffer leaves with its link cleared.
func (q *Queue) Pop() *Buffer {
	b := q.head
	if b == nil {
		return nil
	}
	q.head = b.next
	if q.head == nil {
		q.tail = nil
	}
	q.size--
	b.next = nil
	b.owner = nil
	return b
}

// Remove detaches b from any position in the queue. The buffer must be a
// member of this queue.
func (q *Queue) Remove(b *Buffer) {
	if assert.Enabled() {
		assert.That(b.owner == q, "buffer not a member of this queue")
	}
	if q.head == b {
		q.Pop()
		return
	}
	for cur := q.head; cur != nil; cur = cur.next {
		if cur.next != b {
			continue
		}
		cur.next = b.next
		if q.tail == b {
			q.tail = cur
		}
		q.size--
		b.next = nil
		b.owner = nil
		return
	}
	if assert.Enabled() {
		assert.Fail("queued buffer missing from owner chain")
	}
}

// First returns the head buffer without detaching it, or nil when empty.
// Together with Buffer.Next it supports in-order traversal.
func (q *Queue) First() *Buffer {
	return q.head
}

// Len returns the number of queued buffers.
func (q *Queue) Len() int {
	return q.size
}

// Empty reports whether the queue holds no buffers.
func (q *Queue) Empty() bool {
	return q.head == nil
}

// TotalLen sums the unread bytes across all queued buffers, which is the
// payload a connection still has pending.
func (q *Queue) TotalLen() int {
	total := 0
	for b := q.head; b != nil; b = b.next {
		total += b.Len()
	}
	return total
}
