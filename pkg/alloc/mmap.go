package alloc

import (
	"os"

	"github.com/ajitpratap0/netbuf/internal/assert"
	"github.com/ajitpratap0/netbuf/pkg/errors"
)

// Mmap allocates chunks as anonymous private memory mappings, keeping
// buffer storage off the Go heap entirely. The garbage collector never
// scans or moves mapped chunks, which makes resident memory directly
// observable and keeps large buffer fleets out of GC marking.
//
// Mappings are page-granular: requests are rounded up to the page size, so
// chunk sizes that are already page multiples waste nothing. Unlike Heap,
// Allocate can fail for real here (the kernel refuses the mapping), which
// callers see as a retryable exhaustion error.
type Mmap struct {
	pageSize int
}

// NewMmap returns an mmap-backed allocator, or a capability error on
// platforms without mmap support.
func NewMmap() (*Mmap, error) {
	if !mmapSupported {
		return nil, errors.New(errors.ErrorTypeCapability,
			"anonymous memory mapping not supported on this platform")
	}
	return &Mmap{pageSize: os.Getpagesize()}, nil
}

// Allocate maps a fresh region and returns its first n bytes. The returned
// slice keeps the full mapping reachable through its capacity; Free relies
// on that to unmap the whole region.
func (m *Mmap) Allocate(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "mmap allocation of %d bytes", n)
	}

	length := m.roundUp(n)
	b, err := mmapAnon(length)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeExhausted, "mmap of buffer chunk failed").
			WithDetail("requested", n).
			WithDetail("mapped", length)
	}

	// Fault the pages in ahead of first use; advisory only
	_ = madviseWillneed(b)

	return b[:n], nil
}

// Free unmaps the region backing b. The slice must be the one returned by
// Allocate; its capacity still spans the full mapping.
func (m *Mmap) Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	b = b[:cap(b)]
	if err := munmap(b); err != nil && assert.Enabled() {
		assert.Failf("munmap of %d bytes failed: %v", len(b), err)
	}
}

func (m *Mmap) roundUp(n int) int {
	return (n + m.pageSize - 1) &^ (m.pageSize - 1)
}
