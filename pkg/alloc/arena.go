package alloc

import (
	"sync"
)

// Arena provides arena-style allocation for run-scoped buffer workloads.
// It pre-allocates large blocks of memory and serves chunk allocations from
// these blocks, reducing the number of system allocations. Chunks cannot be
// individually freed; use Reset to reclaim all arena memory at once.
//
// Pair an Arena only with pools whose buffers live no longer than the arena
// itself (a benchmark run, a connection's lifetime). After Reset, every
// chunk previously handed out aliases reusable memory and must not be
// touched.
type Arena struct {
	mu        sync.Mutex
	blocks    []*arenaBlock
	blockSize int
	maxBlocks int
}

// arenaBlock is a large pre-allocated region from which chunk allocations
// are served.
type arenaBlock struct {
	data   []byte
	offset int
}

// NewArena creates an arena serving allocations from blocks of blockSize
// bytes, growing up to maxBlocks blocks. When all blocks are full, or a
// request exceeds blockSize, allocation falls back to the heap.
//
// Example:
//
//	// 16MB blocks, at most 8 blocks (128MB resident)
//	a := alloc.NewArena(16*1024*1024, 8)
func NewArena(blockSize, maxBlocks int) *Arena {
	return &Arena{
		blockSize: blockSize,
		maxBlocks: maxBlocks,
		blocks:    make([]*arenaBlock, 0, maxBlocks),
	}
}

// Allocate serves n bytes from the first block with sufficient space,
// opening a new block if needed. The method is thread-safe.
func (a *Arena) Allocate(n int) ([]byte, error) {
	if n > a.blockSize {
		// Too large for a block, allocate directly
		return make([]byte, n), nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Find a block with enough space
	for _, blk := range a.blocks {
		if blk.offset+n <= len(blk.data) {
			start := blk.offset
			blk.offset += n
			return blk.data[start:blk.offset:blk.offset], nil
		}
	}

	// Need a new block
	if len(a.blocks) < a.maxBlocks {
		blk := &arenaBlock{
			data: make([]byte, a.blockSize),
		}
		a.blocks = append(a.blocks, blk)
		blk.offset = n
		return blk.data[0:n:n], nil
	}

	// All blocks full, allocate directly
	return make([]byte, n), nil
}

// Free is a no-op. Arena memory is reclaimed in bulk by Reset.
func (a *Arena) Free(b []byte) {}

// Reset makes all previously served memory available again.
//
// Warning: after Reset, chunks handed out earlier must no longer be used.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, blk := range a.blocks {
		blk.offset = 0
	}
}

// Blocks reports how many blocks the arena currently holds.
func (a *Arena) Blocks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}
