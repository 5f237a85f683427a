package mbuf

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/netbuf/internal/assert"
	"github.com/ajitpratap0/netbuf/pkg/alloc"
	"github.com/ajitpratap0/netbuf/pkg/errors"
)

// Config carries the knobs a pool is built from.
type Config struct {
	// ChunkSize is the bytes allocated per buffer, tail record included.
	// Payload capacity is ChunkSize - Overhead.
	ChunkSize int

	// MaxIdle bounds how many returned buffers the pool retains for reuse.
	// Zero disables retention: every returned buffer is destroyed.
	MaxIdle int

	// Allocator produces and releases chunks. Nil selects alloc.Heap.
	Allocator alloc.Allocator

	// Logger receives pool lifecycle events. Nil selects a no-op logger.
	Logger *zap.Logger

	// Name labels this pool's metrics. Empty means "default".
	Name string
}

// DefaultConfig returns the production defaults: 16KiB chunks and an idle
// stack of 128 buffers.
func DefaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		MaxIdle:   DefaultMaxIdle,
	}
}

// Validate checks the configuration for values no pool can serve.
func (c Config) Validate() error {
	if c.ChunkSize < MinChunkSize {
		return errors.Newf(errors.ErrorTypeConfig,
			"chunk size %d leaves no payload room beside the %d byte tail record",
			c.ChunkSize, Overhead)
	}
	if c.MaxIdle < 0 {
		return errors.Newf(errors.ErrorTypeConfig, "negative max idle %d", c.MaxIdle)
	}
	return nil
}

// Pool recycles buffers of one uniform chunk size. Returned buffers park on
// an idle stack and Borrow serves from it in LIFO order, preferring the
// chunk touched most recently. When the stack is empty a fresh chunk is
// allocated; when it is full a returned buffer is destroyed.
//
// A Pool is not safe for concurrent use. Workers that share nothing run one
// pool each.
type Pool struct {
	chunkSize int
	capacity  int
	maxIdle   int
	alloc     alloc.Allocator
	log       *zap.Logger
	name      string

	idle   []*Buffer
	closed bool

	created     int64
	destroyed   int64
	reused      int64
	outstanding int64
}

// NewPool builds a pool from cfg. Configuration errors are reported before
// any chunk is allocated.
func NewPool(cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := cfg.Allocator
	if a == nil {
		a = alloc.Heap
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	name := cfg.Name
	if name == "" {
		name = "default"
	}

	p := &Pool{
		chunkSize: cfg.ChunkSize,
		capacity:  cfg.ChunkSize - Overhead,
		maxIdle:   cfg.MaxIdle,
		alloc:     a,
		log:       log,
		name:      name,
		idle:      make([]*Buffer, 0, cfg.MaxIdle),
	}

	p.log.Debug("buffer pool ready",
		zap.String("pool", p.name),
		zap.Int("chunk_size", p.chunkSize),
		zap.Int("capacity", p.capacity),
		zap.Int("max_idle", p.maxIdle))

	return p, nil
}

// Borrow hands out a buffer with rewound cursors: the most recently
// returned idle buffer when one is parked, a freshly allocated one
// otherwise. Allocation failure is returned as a retryable exhaustion
// error and changes nothing.
func (p *Pool) Borrow() (*Buffer, error) {
	if assert.Enabled() {
		assert.That(!p.closed, "borrow from closed pool")
	}

	if n := len(p.idle); n > 0 {
		b := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		b.idle = false
		b.Reset()
		p.reused++
		p.outstanding++

		borrowsTotal.WithLabelValues(p.name).Inc()
		idleBuffers.WithLabelValues(p.name).Set(float64(len(p.idle)))
		outstandingBuffers.WithLabelValues(p.name).Inc()
		return b, nil
	}

	b, err := newBuffer(p.alloc, p.chunkSize)
	if err != nil {
		p.log.Warn("chunk allocation failed",
			zap.String("pool", p.name),
			zap.Int("chunk_size", p.chunkSize),
			zap.Error(err))
		return nil, errors.Wrap(err, errors.ErrorTypeExhausted, "borrow failed")
	}
	p.created++
	p.outstanding++

	borrowsTotal.WithLabelValues(p.name).Inc()
	chunksCreated.WithLabelValues(p.name).Inc()
	outstandingBuffers.WithLabelValues(p.name).Inc()
	return b, nil
}

// Return gives a buffer back to the pool. The buffer must be unqueued,
// match the pool's capacity, and pass its integrity checks; it is then
// parked for reuse, or destroyed when the idle stack is full or the pool
// is closed. Returning nil is a no-op.
func (p *Pool) Return(b *Buffer) {
	if b == nil {
		return
	}
	if assert.Enabled() {
		assert.That(!b.idle, "buffer returned twice")
		b.check()
		if b.Capacity() != p.capacity {
			assert.Failf("returned buffer capacity %d does not match pool capacity %d",
				b.Capacity(), p.capacity)
		}
	}

	p.outstanding--
	returnsTotal.WithLabelValues(p.name).Inc()
	outstandingBuffers.WithLabelValues(p.name).Dec()

	if p.closed || len(p.idle) >= p.maxIdle {
		p.destroyed++
		chunksDestroyed.WithLabelValues(p.name).Inc()
		b.Destroy()
		return
	}

	b.idle = true
	p.idle = append(p.idle, b)
	idleBuffers.WithLabelValues(p.name).Set(float64(len(p.idle)))
}

// Precopy runs against the fresh buffer a split has borrowed, before the
// unread suffix is carried over. Protocol code uses it to replay a frame
// header into the continuation buffer.
type Precopy func(*Buffer)

// Split carves the unread region of b at off bytes past its read cursor.
// A fresh buffer is borrowed, precopy (when non-nil) primes it, the bytes
// from the split point to the write cursor move into it, and b is truncated
// at the split point. Only the borrow can fail; b is untouched in that
// case.
func (p *Pool) Split(b *Buffer, off int, precopy Precopy) (*Buffer, error) {
	if assert.Enabled() && (off < 0 || off > b.Len()) {
		assert.Failf("split offset %d outside unread region of %d bytes", off, b.Len())
	}

	nbuf, err := p.Borrow()
	if err != nil {
		return nil, err
	}

	if precopy != nil {
		precopy(nbuf)
	}
	nbuf.Copy(b.data[b.rpos+off : b.wpos])
	b.wpos = b.rpos + off

	splitsTotal.WithLabelValues(p.name).Inc()
	p.log.Debug("buffer split",
		zap.String("pool", p.name),
		zap.Int("kept", b.Len()),
		zap.Int("carried", nbuf.Len()))
	return nbuf, nil
}

// Close destroys all idle buffers and stops retention; later returns
// destroy their buffers immediately. Buffers still outstanding remain
// valid and may still be returned. Close is idempotent.
func (p *Pool) Close() {
	if p.closed {
		return
	}
	p.closed = true

	for _, b := range p.idle {
		b.idle = false
		b.Destroy()
		p.destroyed++
		chunksDestroyed.WithLabelValues(p.name).Inc()
	}
	p.idle = nil
	idleBuffers.WithLabelValues(p.name).Set(0)

	if p.outstanding > 0 {
		p.log.Warn("pool closed with buffers outstanding",
			zap.String("pool", p.name),
			zap.Int64("outstanding", p.outstanding))
	}
	p.log.Debug("buffer pool closed",
		zap.String("pool", p.name),
		zap.Int64("created", p.created),
		zap.Int64("destroyed", p.destroyed),
		zap.Int64("reused", p.reused))
}

// PoolStats is a snapshot of a pool's lifetime activity.
type PoolStats struct {
	Created     int64 `json:"created"`     // chunks allocated
	Destroyed   int64 `json:"destroyed"`   // chunks freed
	Reused      int64 `json:"reused"`      // borrows served from the idle stack
	Outstanding int64 `json:"outstanding"` // borrowed and not yet returned
	Idle        int   `json:"idle"`        // parked on the idle stack
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Created:     p.created,
		Destroyed:   p.destroyed,
		Reused:      p.reused,
		Outstanding: p.outstanding,
		Idle:        len(p.idle),
	}
}

// Capacity returns the payload bytes each of this pool's buffers holds.
func (p *Pool) Capacity() int {
	return p.capacity
}

// ChunkSize returns the configured chunk size, tail record included.
func (p *Pool) ChunkSize() int {
	return p.chunkSize
}

// Name returns the pool's metrics label.
func (p *Pool) Name() string {
	return p.name
}

// SetInvariantChecks toggles the process-wide integrity checks on buffer
// and queue operations. They are on by default; latency-sensitive builds
// may disable them once an integration has been shaken out, accepting that
// misuse then goes undetected.
func SetInvariantChecks(on bool) {
	assert.SetEnabled(on)
}

// InvariantChecksEnabled reports whether integrity checks are active.
func InvariantChecksEnabled() bool {
	return assert.Enabled()
}
