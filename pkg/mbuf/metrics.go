package mbuf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// borrowsTotal counts buffers handed out, whether reused or fresh.
	borrowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuf_borrows_total",
			Help: "Total buffers borrowed from the pool",
		},
		[]string{"pool"},
	)

	// returnsTotal counts buffers given back, whether parked or destroyed.
	returnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuf_returns_total",
			Help: "Total buffers returned to the pool",
		},
		[]string{"pool"},
	)

	// chunksCreated counts fresh chunk allocations, the expensive path a
	// well-sized idle stack avoids.
	chunksCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuf_chunks_created_total",
			Help: "Total chunks allocated for new buffers",
		},
		[]string{"pool"},
	)

	// chunksDestroyed counts chunks released back to the allocator.
	chunksDestroyed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuf_chunks_destroyed_total",
			Help: "Total chunks freed",
		},
		[]string{"pool"},
	)

	// splitsTotal counts buffer splits at frame boundaries.
	splitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netbuf_splits_total",
			Help: "Total buffer splits",
		},
		[]string{"pool"},
	)

	// idleBuffers tracks the idle stack depth.
	idleBuffers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netbuf_idle_buffers",
			Help: "Buffers parked on the idle stack",
		},
		[]string{"pool"},
	)

	// outstandingBuffers tracks buffers currently lent to callers.
	outstandingBuffers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netbuf_outstanding_buffers",
			Help: "Buffers borrowed and not yet returned",
		},
		[]string{"pool"},
	)
)
