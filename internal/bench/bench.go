// Package bench drives pooled buffers through a synthetic cache-server
// workload and reports throughput, pool behavior, and process memory.
//
// Each worker owns a private pool and cycles buffers the way a connection
// handler would: borrow, stage a payload into the writable region, consume
// part of it, compact, occasionally split a pipelined remainder off, and
// park buffers on a flush queue before returning them. Workers share one
// allocator, wrapped in an alloc.Counting so the report can prove that
// every chunk allocated was freed.
package bench

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/netbuf/pkg/alloc"
	"github.com/ajitpratap0/netbuf/pkg/errors"
	"github.com/ajitpratap0/netbuf/pkg/mbuf"
)

// Options shapes the synthetic workload.
type Options struct {
	// Workers is the number of concurrent workers, each with its own pool.
	// Zero selects runtime.NumCPU().
	Workers int

	// Iterations is the number of borrow cycles per worker. Zero runs
	// until ctx is done.
	Iterations int

	// ChunkSize and MaxIdle configure each worker's pool.
	ChunkSize int
	MaxIdle   int

	// Payload is the bytes staged into every borrowed buffer. It must fit
	// the chunk's payload capacity.
	Payload int

	// SplitEvery splits the buffer on every Nth cycle, simulating a
	// pipelined request left behind in the read buffer. Zero disables
	// splitting.
	SplitEvery int

	// QueueDepth parks buffers on a flush queue and returns them in
	// batches of this size. Zero returns every buffer immediately.
	QueueDepth int

	// Allocator backs every worker's pool. Nil selects alloc.Heap. It is
	// shared across workers and must be safe for concurrent use.
	Allocator alloc.Allocator

	// Name labels the worker pools' metrics and log lines.
	Name string
}

// DefaultOptions returns a workload sized for the local machine.
func DefaultOptions() Options {
	return Options{
		Workers:    runtime.NumCPU(),
		Iterations: 100000,
		ChunkSize:  mbuf.DefaultChunkSize,
		MaxIdle:    mbuf.DefaultMaxIdle,
		Payload:    1024,
		SplitEvery: 16,
		QueueDepth: 8,
		Name:       "bench",
	}
}

func (o *Options) normalize() {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = mbuf.DefaultChunkSize
	}
	if o.Name == "" {
		o.Name = "bench"
	}
}

func (o Options) validate() error {
	if o.ChunkSize < mbuf.MinChunkSize {
		return errors.Newf(errors.ErrorTypeValidation,
			"chunk size %d below minimum %d", o.ChunkSize, mbuf.MinChunkSize)
	}
	if o.MaxIdle < 0 {
		return errors.Newf(errors.ErrorTypeValidation, "negative max idle %d", o.MaxIdle)
	}
	if capacity := o.ChunkSize - mbuf.Overhead; o.Payload <= 0 || o.Payload > capacity {
		return errors.Newf(errors.ErrorTypeValidation,
			"payload %d does not fit the %d byte capacity of a %d byte chunk",
			o.Payload, capacity, o.ChunkSize)
	}
	if o.Iterations < 0 {
		return errors.Newf(errors.ErrorTypeValidation, "negative iterations %d", o.Iterations)
	}
	if o.SplitEvery < 0 {
		return errors.Newf(errors.ErrorTypeValidation, "negative split interval %d", o.SplitEvery)
	}
	if o.QueueDepth < 0 {
		return errors.Newf(errors.ErrorTypeValidation, "negative queue depth %d", o.QueueDepth)
	}
	return nil
}

// Run executes the workload and aggregates a report. Cancelling ctx stops
// the workers cleanly and reports the cycles completed so far; an error
// from any worker aborts the run.
func Run(ctx context.Context, opts Options, log *zap.Logger) (*Report, error) {
	opts.normalize()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	base := opts.Allocator
	if base == nil {
		base = alloc.Heap
	}
	counting := alloc.NewCounting(base)

	log.Info("benchmark starting",
		zap.String("name", opts.Name),
		zap.Int("workers", opts.Workers),
		zap.Int("iterations", opts.Iterations),
		zap.Int("chunk_size", opts.ChunkSize),
		zap.Int("max_idle", opts.MaxIdle),
		zap.Int("payload", opts.Payload),
		zap.Int("split_every", opts.SplitEvery),
		zap.Int("queue_depth", opts.QueueDepth))

	var startMem runtime.MemStats
	runtime.ReadMemStats(&startMem)
	monitor := newResourceMonitor()

	results := make([]WorkerResult, opts.Workers)
	workerErrs := make([]error, opts.Workers)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id], workerErrs[id] = runWorker(ctx, id, opts, counting, log)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	for id, err := range workerErrs {
		if err != nil {
			log.Error("benchmark worker failed", zap.Int("worker", id), zap.Error(err))
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "benchmark aborted").
				WithDetail("worker", id)
		}
	}

	report := &Report{
		Timestamp:  time.Now(),
		Name:       opts.Name,
		Workers:    opts.Workers,
		Iterations: opts.Iterations,
		ChunkSize:  opts.ChunkSize,
		MaxIdle:    opts.MaxIdle,
		Payload:    opts.Payload,
		SplitEvery: opts.SplitEvery,
		QueueDepth: opts.QueueDepth,
		Elapsed:    elapsed,
		PerWorker:  results,
	}
	for _, r := range results {
		report.TotalOps += r.Ops
		report.TotalBytes += r.Bytes
		report.TotalSplits += r.Splits
		report.Pool.Created += r.Pool.Created
		report.Pool.Destroyed += r.Pool.Destroyed
		report.Pool.Reused += r.Pool.Reused
		report.Pool.Outstanding += r.Pool.Outstanding
		report.Pool.Idle += r.Pool.Idle
	}
	if secs := elapsed.Seconds(); secs > 0 {
		report.OpsPerSec = float64(report.TotalOps) / secs
		report.MBPerSec = float64(report.TotalBytes) / secs / (1 << 20)
	}
	report.Allocator = counting.Stats()

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)
	report.Heap = HeapStats{
		AllocBytes:      endMem.HeapAlloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		PauseTotalNs:    endMem.PauseTotalNs - startMem.PauseTotalNs,
	}
	report.Resources = monitor.usage()

	log.Info("benchmark complete",
		zap.Int64("ops", report.TotalOps),
		zap.Int64("bytes", report.TotalBytes),
		zap.Float64("ops_per_sec", report.OpsPerSec),
		zap.Float64("mb_per_sec", report.MBPerSec),
		zap.Duration("elapsed", elapsed))

	return report, nil
}

// runWorker cycles buffers through one private pool until the iteration
// budget or ctx runs out. The pool's final stats are captured after Close
// so a clean run shows created == destroyed.
func runWorker(ctx context.Context, id int, opts Options, a alloc.Allocator, log *zap.Logger) (res WorkerResult, err error) {
	res.Worker = id

	pool, perr := mbuf.NewPool(mbuf.Config{
		ChunkSize: opts.ChunkSize,
		MaxIdle:   opts.MaxIdle,
		Allocator: a,
		Logger:    log,
		Name:      fmt.Sprintf("%s-%d", opts.Name, id),
	})
	if perr != nil {
		return res, perr
	}

	var q mbuf.Queue
	defer func() {
		for b := q.Pop(); b != nil; b = q.Pop() {
			pool.Return(b)
		}
		pool.Close()
		res.Pool = pool.Stats()
	}()

	// Distinct text payload per worker so cross-pool mixups would show up
	// as content mismatches.
	payload := make([]byte, opts.Payload)
	for i := range payload {
		payload[i] = byte('a' + (id+i)%26)
	}

	start := time.Now()
	for i := 0; opts.Iterations == 0 || i < opts.Iterations; i++ {
		if ctx.Err() != nil {
			break
		}

		b, berr := pool.Borrow()
		if berr != nil {
			return res, berr
		}

		// Stage the payload the way a read loop would: fill the writable
		// region, then advance the write cursor past the bytes landed.
		n := copy(b.Writable(), payload)
		b.Advance(n)

		if i%1024 == 0 && !bytes.Equal(b.Bytes(), payload) {
			pool.Return(b)
			return res, errors.New(errors.ErrorTypeInternal, "staged bytes do not match payload")
		}

		// Consume half the frame and compact the remainder to the front.
		b.Discard(n / 2)
		b.ShiftLeft()

		if opts.SplitEvery > 0 && (i+1)%opts.SplitEvery == 0 {
			rest, serr := pool.Split(b, b.Len()/2, nil)
			if serr != nil {
				pool.Return(b)
				return res, serr
			}
			res.Splits++
			pool.Return(rest)
		}

		res.Ops++
		res.Bytes += int64(n)

		if opts.QueueDepth > 0 {
			q.Push(b)
			if q.Len() >= opts.QueueDepth {
				for f := q.Pop(); f != nil; f = q.Pop() {
					pool.Return(f)
				}
			}
		} else {
			pool.Return(b)
		}
	}
	res.Elapsed = time.Since(start)

	return res, nil
}
