// Package alloc defines the chunk allocator contract behind buffer pools
// and provides the standard implementations: plain heap allocation, arena
// bump allocation for run-scoped workloads, and anonymous memory mappings
// for deployments that want buffer chunks off the Go heap.
//
// Allocators hand out whole chunks. A chunk is allocated once, cycled
// through a pool many times, and freed once, so allocator throughput is a
// setup cost rather than a steady-state one.
package alloc

import (
	"sync/atomic"
)

// Allocator allocates and releases raw chunks. Allocate returns a slice of
// exactly n bytes or an error when the request cannot be satisfied. Free
// must be called with a slice previously returned by Allocate on the same
// allocator; implementations may use the slice's base pointer to locate the
// underlying region.
type Allocator interface {
	Allocate(n int) ([]byte, error)
	Free(b []byte)
}

// Heap is the default allocator. Chunks come from the Go heap and Free is a
// no-op; the garbage collector reclaims chunks once no buffer references
// them.
var Heap Allocator = heapAllocator{}

type heapAllocator struct{}

func (heapAllocator) Allocate(n int) ([]byte, error) {
	return make([]byte, n), nil
}

func (heapAllocator) Free(b []byte) {}

// Counting wraps another allocator and keeps atomic counters of its
// activity. It is used by the benchmark harness and by tests that need to
// prove chunks are freed exactly once.
type Counting struct {
	inner Allocator

	allocs    int64
	frees     int64
	failed    int64
	liveBytes int64
}

// NewCounting wraps inner with activity counters.
func NewCounting(inner Allocator) *Counting {
	return &Counting{inner: inner}
}

// Allocate delegates to the wrapped allocator and records the outcome.
func (c *Counting) Allocate(n int) ([]byte, error) {
	b, err := c.inner.Allocate(n)
	if err != nil {
		atomic.AddInt64(&c.failed, 1)
		return nil, err
	}
	atomic.AddInt64(&c.allocs, 1)
	atomic.AddInt64(&c.liveBytes, int64(len(b)))
	return b, nil
}

// Free delegates to the wrapped allocator and records the release.
func (c *Counting) Free(b []byte) {
	atomic.AddInt64(&c.frees, 1)
	atomic.AddInt64(&c.liveBytes, -int64(len(b)))
	c.inner.Free(b)
}

// CountingStats is a snapshot of a Counting allocator's activity.
type CountingStats struct {
	Allocs    int64 `json:"allocs"`     // successful allocations
	Frees     int64 `json:"frees"`      // releases
	Failed    int64 `json:"failed"`     // allocation failures
	LiveBytes int64 `json:"live_bytes"` // bytes allocated and not yet freed
}

// Stats returns a snapshot of the allocator's counters.
func (c *Counting) Stats() CountingStats {
	return CountingStats{
		Allocs:    atomic.LoadInt64(&c.allocs),
		Frees:     atomic.LoadInt64(&c.frees),
		Failed:    atomic.LoadInt64(&c.failed),
		LiveBytes: atomic.LoadInt64(&c.liveBytes),
	}
}
