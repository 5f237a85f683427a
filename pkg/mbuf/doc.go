// Package mbuf implements the fixed-size, pool-recycled message buffers
// that back a cache server's network I/O path. Every buffer owns one
// contiguous chunk of a uniform, pool-configured size, so buffer turnover
// never fragments memory and a buffer's storage cost is known the moment
// the pool is sized.
//
// # Chunk Layout
//
// A chunk is a single allocation. The leading bytes form the data region
// where payload is staged; the final bytes hold a tail record with a magic
// sentinel and the data region's size:
//
//	<------------------- chunk -------------------->
//	+----------------------------------+------------+
//	|            data region           |    tail    |
//	|            (Capacity)            |   record   |
//	+----------------------------------+------------+
//	^          ^            ^          ^
//	|          |            |          |
//	0          rpos         wpos       Capacity()
//	           <-- Len() -->
//	                        <-- Available() -->
//
// The read cursor (rpos) and write cursor (wpos) partition the data region
// into consumed bytes, unread bytes, and writable space. The tail record is
// stamped at allocation and verified whenever the buffer is returned or
// destroyed; a payload write that runs past the data region lands on the
// sentinel and is caught at the next recycling point instead of silently
// corrupting a neighbor.
//
// # Pooling
//
// Buffers are expensive to allocate and cheap to recycle. A Pool keeps up
// to MaxIdle returned buffers on an idle stack and serves Borrow from it
// in LIFO order, so the hottest chunk (the one most likely still in cache)
// is reused first:
//
//	p, err := mbuf.NewPool(mbuf.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	b, err := p.Borrow()
//	if err != nil {
//	    return err
//	}
//	n, _ := conn.Read(b.Writable())
//	b.Advance(n)
//	process(b.Bytes())
//	p.Return(b)
//
// # Queues
//
// Buffers carry an intrusive link so a connection can chain its pending
// buffers into a Queue without allocating list nodes. A buffer belongs to
// at most one queue at a time.
//
// # Errors and Invariants
//
// Only resource exhaustion is reported as an error: Borrow and Split fail
// when the underlying allocator cannot produce a chunk, and the caller may
// retry once buffers come back. Everything else that can go wrong here is
// caller misuse over raw memory. Those conditions (cursor overruns,
// overlapping copies, damaged sentinels, double-queued buffers) are checked
// and raised as panics carrying an invariant violation; see
// SetInvariantChecks for disabling the checks in trusted builds.
//
// # Concurrency
//
// A Buffer, a Pool, and a Queue are each owned by one goroutine at a time;
// none of them lock internally. Deployments that shard work across
// goroutines give each worker its own pool, which is how the benchmark
// harness in this repository runs.
package mbuf
