package mbuf

import (
	"encoding/binary"
	"unsafe"

	"github.com/ajitpratap0/netbuf/internal/assert"
	"github.com/ajitpratap0/netbuf/pkg/alloc"
	"github.com/ajitpratap0/netbuf/pkg/byteview"
)

const (
	// Overhead is the size of the tail record appended to every chunk.
	Overhead = 16

	// MinChunkSize is the smallest chunk that leaves room for at least one
	// payload byte beside the tail record.
	MinChunkSize = Overhead + 1

	// DefaultChunkSize matches four pages on common systems and comfortably
	// holds a cache protocol frame.
	DefaultChunkSize = 16 * 1024

	// DefaultMaxIdle bounds how many returned buffers a pool retains.
	DefaultMaxIdle = 128
)

// tailMagic is stamped into every chunk's tail record at allocation and
// verified at each recycling point. A mismatch means payload bytes ran past
// the data region.
const tailMagic uint64 = 0xdeadbeefcafef00d

// Buffer is a fixed-capacity byte buffer backed by a single chunk. The data
// region is partitioned by a read cursor and a write cursor; bytes between
// the cursors are staged and unread, bytes past the write cursor are
// writable. Buffers come from a Pool and go back to it, and may sit in at
// most one Queue in between.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	chunk []byte // full allocation, tail record included
	data  []byte // chunk[:Capacity()], the payload region
	rpos  int    // read cursor, first unread byte
	wpos  int    // write cursor, first writable byte

	next  *Buffer // successor within owner
	owner *Queue  // queue holding this buffer, nil when unqueued
	idle  bool    // parked on a pool's idle stack

	alloc alloc.Allocator
}

// newBuffer allocates one chunk of chunkSize bytes and stamps its tail
// record. Pool validates chunkSize before ever calling this.
func newBuffer(a alloc.Allocator, chunkSize int) (*Buffer, error) {
	assert.That(chunkSize >= MinChunkSize, "chunk smaller than tail record")

	chunk, err := a.Allocate(chunkSize)
	if err != nil {
		return nil, err
	}

	b := &Buffer{
		chunk: chunk,
		data:  chunk[:chunkSize-Overhead],
		alloc: a,
	}
	b.stampTail()
	return b, nil
}

// stampTail writes the sentinel and the data region size into the chunk's
// final bytes.
func (b *Buffer) stampTail() {
	tail := b.chunk[len(b.data):]
	binary.LittleEndian.PutUint64(tail[0:8], tailMagic)
	binary.LittleEndian.PutUint64(tail[8:16], uint64(len(b.data)))
}

// tailIntact reports whether the tail record still carries the values
// stamped at allocation.
func (b *Buffer) tailIntact() bool {
	tail := b.chunk[len(b.data):]
	return binary.LittleEndian.Uint64(tail[0:8]) == tailMagic &&
		binary.LittleEndian.Uint64(tail[8:16]) == uint64(len(b.data))
}

// check validates the buffer's full invariant set. Called at recycling
// points, where corruption must not propagate into the next borrower.
func (b *Buffer) check() {
	assert.That(b.chunk != nil, "use of destroyed buffer")
	assert.That(b.owner == nil && b.next == nil, "buffer still queued")
	assert.That(0 <= b.rpos && b.rpos <= b.wpos && b.wpos <= len(b.data),
		"cursor ordering broken")
	assert.That(b.tailIntact(), "tail sentinel damaged")
}

// Destroy releases the buffer's chunk back to its allocator. The buffer
// must be unqueued and its tail record intact; afterwards the buffer must
// not be used again.
func (b *Buffer) Destroy() {
	if assert.Enabled() {
		b.check()
	}
	chunk := b.chunk
	b.chunk = nil
	b.data = nil
	b.alloc.Free(chunk)
}

// Reset rewinds both cursors, discarding any staged content. The payload
// bytes themselves are not cleared.
func (b *Buffer) Reset() {
	b.rpos = 0
	b.wpos = 0
}

// Capacity returns the size of the data region.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Len returns the number of staged, unread bytes.
func (b *Buffer) Len() int {
	return b.wpos - b.rpos
}

// Available returns the number of writable bytes past the write cursor.
func (b *Buffer) Available() int {
	return len(b.data) - b.wpos
}

// Empty reports whether no unread bytes remain.
func (b *Buffer) Empty() bool {
	return b.rpos == b.wpos
}

// Full reports whether no writable space remains.
func (b *Buffer) Full() bool {
	return b.wpos == len(b.data)
}

// Bytes returns the unread region. The slice aliases the buffer's storage
// and is valid until the next operation that moves a cursor.
func (b *Buffer) Bytes() []byte {
	return b.data[b.rpos:b.wpos]
}

// Writable returns the writable region past the write cursor. Callers fill
// some prefix of it (a socket read, an encoder) and then account for the
// bytes with Advance.
func (b *Buffer) Writable() []byte {
	return b.data[b.wpos:]
}

// Advance moves the write cursor forward by n bytes previously filled
// through Writable.
func (b *Buffer) Advance(n int) {
	if assert.Enabled() && (n < 0 || n > b.Available()) {
		assert.Failf("advance of %d bytes with %d writable", n, b.Available())
	}
	b.wpos += n
}

// Discard moves the read cursor forward by n consumed bytes.
func (b *Buffer) Discard(n int) {
	if assert.Enabled() && (n < 0 || n > b.Len()) {
		assert.Failf("discard of %d bytes with %d unread", n, b.Len())
	}
	b.rpos += n
}

// Copy stages the bytes of src after the write cursor and advances it. The
// source must fit in the writable region and must come from outside this
// buffer's own storage; staging a buffer's unread bytes again goes through
// a pool Split instead. Copying zero bytes is a no-op.
func (b *Buffer) Copy(src []byte) {
	n := len(src)
	if n == 0 {
		return
	}
	if assert.Enabled() {
		if n > b.Available() {
			assert.Failf("copy of %d bytes with %d writable", n, b.Available())
		}
		if overlaps(src, b.chunk) {
			assert.Fail("copy source aliases the buffer's own chunk")
		}
	}
	copy(b.data[b.wpos:], src)
	b.wpos += n
}

// CopyView stages the bytes of a read-only view, exactly like Copy.
func (b *Buffer) CopyView(v byteview.View) {
	b.Copy(v.Data())
}

// ShiftLeft moves the unread region to the start of the data region,
// reclaiming consumed bytes as writable space. Shifting an empty buffer
// just rewinds the cursors.
func (b *Buffer) ShiftLeft() {
	n := b.Len()
	copy(b.data, b.data[b.rpos:b.wpos])
	b.rpos = 0
	b.wpos = n
}

// ShiftRight moves the unread region against the end of the data region,
// opening the maximum contiguous gap in front of the read cursor.
func (b *Buffer) ShiftRight() {
	n := b.Len()
	copy(b.data[len(b.data)-n:], b.data[b.rpos:b.wpos])
	b.rpos = len(b.data) - n
	b.wpos = len(b.data)
}

// Next returns the successor buffer in the queue currently holding this
// buffer, or nil at the queue's tail or when unqueued.
func (b *Buffer) Next() *Buffer {
	return b.next
}

// overlaps reports whether two slices share any backing bytes.
func overlaps(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	a0 := uintptr(unsafe.Pointer(&a[0]))
	b0 := uintptr(unsafe.Pointer(&b[0]))
	return a0 < b0+uintptr(len(b)) && b0 < a0+uintptr(len(a))
}
