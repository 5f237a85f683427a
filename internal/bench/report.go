package bench

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/ajitpratap0/netbuf/pkg/alloc"
	"github.com/ajitpratap0/netbuf/pkg/mbuf"
)

// Report is the machine-readable outcome of a run.
type Report struct {
	Timestamp  time.Time `json:"timestamp"`
	Name       string    `json:"name"`
	Workers    int       `json:"workers"`
	Iterations int       `json:"iterations_per_worker"`
	ChunkSize  int       `json:"chunk_size"`
	MaxIdle    int       `json:"max_idle"`
	Payload    int       `json:"payload_bytes"`
	SplitEvery int       `json:"split_every"`
	QueueDepth int       `json:"queue_depth"`

	Elapsed     time.Duration `json:"elapsed_ns"`
	TotalOps    int64         `json:"total_ops"`
	TotalBytes  int64         `json:"total_bytes"`
	TotalSplits int64         `json:"total_splits"`
	OpsPerSec   float64       `json:"ops_per_sec"`
	MBPerSec    float64       `json:"mb_per_sec"`

	// Pool sums the per-worker pool stats. A clean run shows
	// created == destroyed and outstanding == 0.
	Pool      mbuf.PoolStats      `json:"pool"`
	Allocator alloc.CountingStats `json:"allocator"`
	Heap      HeapStats           `json:"heap"`
	Resources ResourceUsage       `json:"resources"`

	PerWorker []WorkerResult `json:"per_worker"`
}

// WorkerResult captures one worker's share of the run.
type WorkerResult struct {
	Worker  int            `json:"worker"`
	Ops     int64          `json:"ops"`
	Bytes   int64          `json:"bytes"`
	Splits  int64          `json:"splits"`
	Elapsed time.Duration  `json:"elapsed_ns"`
	Pool    mbuf.PoolStats `json:"pool"`
}

// HeapStats is the slice of runtime.MemStats a pooling benchmark cares
// about. Totals are deltas across the run.
type HeapStats struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	PauseTotalNs    uint64 `json:"gc_pause_total_ns"`
}

// ResourceUsage is a process-level snapshot taken when the run ends.
type ResourceUsage struct {
	ProcessCPUPercent float64 `json:"process_cpu_percent"`
	SystemCPUPercent  float64 `json:"system_cpu_percent"`
	RSSBytes          uint64  `json:"rss_bytes"`
	VMSBytes          uint64  `json:"vms_bytes"`
	Goroutines        int     `json:"goroutines"`
	Threads           int32   `json:"threads"`
}

// resourceMonitor samples the current process. CPU percent is computed
// from the CPU time accumulated since the monitor was created.
type resourceMonitor struct {
	proc     *process.Process
	startCPU float64
	start    time.Time
}

func newResourceMonitor() *resourceMonitor {
	rm := &resourceMonitor{start: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return rm
	}
	rm.proc = proc
	if times, err := proc.Times(); err == nil {
		rm.startCPU = times.Total()
	}
	return rm
}

func (rm *resourceMonitor) usage() ResourceUsage {
	u := ResourceUsage{Goroutines: runtime.NumGoroutine()}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		u.SystemCPUPercent = pct[0]
	}
	if rm.proc == nil {
		return u
	}
	if times, err := rm.proc.Times(); err == nil {
		if elapsed := time.Since(rm.start).Seconds(); elapsed > 0 {
			u.ProcessCPUPercent = (times.Total() - rm.startCPU) / elapsed * 100
		}
	}
	if memInfo, err := rm.proc.MemoryInfo(); err == nil {
		u.RSSBytes = memInfo.RSS
		u.VMSBytes = memInfo.VMS
	}
	u.Threads, _ = rm.proc.NumThreads()

	return u
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := gojson.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Save writes the JSON report to outputPath, creating parent directories
// as needed.
func (r *Report) Save(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := gojson.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// Print writes the report in a human-readable format.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 72))
	fmt.Fprintf(w, "NETBUF BENCHMARK REPORT\n")
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 72))
	fmt.Fprintf(w, "Generated: %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Workload: workers=%d iterations=%d chunk=%d max_idle=%d payload=%d split_every=%d queue_depth=%d\n\n",
		r.Workers, r.Iterations, r.ChunkSize, r.MaxIdle, r.Payload, r.SplitEvery, r.QueueDepth)

	fmt.Fprintf(w, "Ops:        %d (%.0f ops/sec)\n", r.TotalOps, r.OpsPerSec)
	fmt.Fprintf(w, "Throughput: %.1f MB/s (%d bytes)\n", r.MBPerSec, r.TotalBytes)
	fmt.Fprintf(w, "Splits:     %d\n", r.TotalSplits)
	fmt.Fprintf(w, "Elapsed:    %s\n\n", r.Elapsed.Round(time.Millisecond))

	fmt.Fprintf(w, "Pool:      created=%d reused=%d destroyed=%d outstanding=%d idle=%d\n",
		r.Pool.Created, r.Pool.Reused, r.Pool.Destroyed, r.Pool.Outstanding, r.Pool.Idle)
	fmt.Fprintf(w, "Allocator: allocs=%d frees=%d failed=%d live=%s\n",
		r.Allocator.Allocs, r.Allocator.Frees, r.Allocator.Failed, mb(uint64(r.Allocator.LiveBytes)))
	fmt.Fprintf(w, "Heap:      alloc=%s total=%s sys=%s gc=%d pause=%s\n",
		mb(r.Heap.AllocBytes), mb(r.Heap.TotalAllocBytes), mb(r.Heap.SysBytes),
		r.Heap.NumGC, time.Duration(r.Heap.PauseTotalNs).Round(time.Microsecond))
	fmt.Fprintf(w, "Process:   rss=%s vms=%s cpu=%.1f%% threads=%d goroutines=%d\n",
		mb(r.Resources.RSSBytes), mb(r.Resources.VMSBytes),
		r.Resources.ProcessCPUPercent, r.Resources.Threads, r.Resources.Goroutines)

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 72))
	fmt.Fprintf(w, "%-8s %-12s %-14s %-8s %-10s\n", "worker", "ops", "bytes", "splits", "elapsed")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 72))
	for _, wr := range r.PerWorker {
		fmt.Fprintf(w, "%-8d %-12d %-14d %-8d %-10s\n",
			wr.Worker, wr.Ops, wr.Bytes, wr.Splits, wr.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 72))
}

func mb(n uint64) string {
	return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
}
