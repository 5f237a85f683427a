// Package netbuf provides fixed-capacity, pool-recycled byte buffers for
// the network I/O path of cache and proxy servers.
//
// Every buffer wraps one uniformly sized chunk whose payload region is
// tracked by a read cursor and a write cursor, so the common socket cycle
// of read, parse, compact, and write touches no allocator at all. A
// sixteen byte tail record stamped with a magic sentinel sits past the
// payload and is verified whenever a buffer returns to its pool, catching
// code that wrote beyond the region it was given.
//
// # Quick Start
//
// Borrow buffers from a pool, stage network bytes through them, and
// return them when the frame is done:
//
//	import (
//	    "github.com/ajitpratap0/netbuf/pkg/mbuf"
//	)
//
//	pool, err := mbuf.NewPool(mbuf.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	buf, err := pool.Borrow()
//	if err != nil {
//	    return err // allocation exhausted, retryable
//	}
//	n, _ := conn.Read(buf.Writable())
//	buf.Advance(n)
//	handle(buf.Bytes())
//	pool.Return(buf)
//
// # Key Packages
//
//	pkg/mbuf      - Buffer, Pool, and Queue primitives
//	pkg/alloc     - Chunk allocators: heap, arena, and anonymous mmap
//	pkg/byteview  - Read-only views over borrowed byte regions
//	pkg/config    - YAML configuration with environment substitution
//	pkg/errors    - Structured error handling
//	pkg/logger    - High-performance structured logging
//	pkg/testutil  - Test helpers shared across packages
//
// # Recycling
//
// Pools retain up to MaxIdle returned buffers on a LIFO idle stack and
// serve Borrow from it, preferring the chunk touched most recently.
// Setting MaxIdle to zero disables retention and every return destroys
// its buffer. Pools are single-owner by design: workers that share
// nothing run one pool each, and only the allocator behind them is
// shared.
//
// # Integrity
//
// Exhaustion is an error: Borrow reports allocation failure as a
// retryable error and leaves every structure untouched. Misuse is a
// panic: cursor overruns, double returns, tail record damage, and queue
// membership violations raise a typed invariant violation. The checks
// are on by default and can be disabled process-wide for latency-bound
// builds with mbuf.SetInvariantChecks(false).
//
// # Benchmarking
//
// The netbuf-bench command drives pools through a synthetic cache-server
// workload and reports throughput, recycling behavior, and process
// memory:
//
//	netbuf-bench run --workers 8 --iterations 500000 --report bench.json
//	netbuf-bench run --config bench.yaml --duration 30s --iterations 0
package netbuf
