package bench

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/netbuf/pkg/alloc"
	"github.com/ajitpratap0/netbuf/pkg/errors"
	"github.com/ajitpratap0/netbuf/pkg/testutil"
)

// failing refuses every allocation with a retryable exhaustion error.
type failing struct{}

func (failing) Allocate(int) ([]byte, error) {
	return nil, errors.New(errors.ErrorTypeExhausted, "no memory")
}

func (failing) Free([]byte) {}

func TestDefaultOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, runtime.NumCPU(), opts.Workers)
	assert.NoError(t, opts.validate())
}

func TestRunSmallWorkload(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	opts := Options{
		Workers:    2,
		Iterations: 200,
		ChunkSize:  256,
		MaxIdle:    4,
		Payload:    64,
		SplitEvery: 8,
		QueueDepth: 4,
		Name:       "small",
	}
	report, err := Run(ctx, opts, testutil.TestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, int64(400), report.TotalOps)
	assert.Equal(t, int64(400*64), report.TotalBytes)
	assert.Equal(t, int64(2*200/8), report.TotalSplits)
	assert.Greater(t, report.OpsPerSec, 0.0)

	require.Len(t, report.PerWorker, 2)
	for _, wr := range report.PerWorker {
		assert.Equal(t, int64(200), wr.Ops)
		assert.Equal(t, int64(0), wr.Pool.Outstanding)
	}

	// Every chunk created was destroyed and every allocation was freed.
	assert.Equal(t, report.Pool.Created, report.Pool.Destroyed)
	assert.Equal(t, int64(0), report.Pool.Outstanding)
	assert.Equal(t, 0, report.Pool.Idle)
	assert.Equal(t, report.Allocator.Allocs, report.Allocator.Frees)
	assert.Equal(t, int64(0), report.Allocator.LiveBytes)
	assert.Equal(t, int64(0), report.Allocator.Failed)
}

func TestRunFillsDefaults(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	report, err := Run(ctx, Options{Iterations: 5, ChunkSize: 64, Payload: 16}, nil)
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), report.Workers)
	assert.Equal(t, "bench", report.Name)
	assert.Len(t, report.PerWorker, runtime.NumCPU())
	assert.Equal(t, int64(5*runtime.NumCPU()), report.TotalOps)
}

func TestRunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	opts := Options{
		Workers:    2,
		Iterations: 0, // run until the deadline
		ChunkSize:  256,
		MaxIdle:    8,
		Payload:    64,
		QueueDepth: 2,
	}
	report, err := Run(ctx, opts, testutil.TestLogger(t))
	require.NoError(t, err)

	assert.Greater(t, report.TotalOps, int64(0))
	assert.Equal(t, int64(0), report.Pool.Outstanding)
	assert.Equal(t, report.Pool.Created, report.Pool.Destroyed)
}

func TestRunValidation(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	tests := []struct {
		name string
		opts Options
	}{
		{"chunk too small", Options{ChunkSize: 8, Payload: 4}},
		{"payload exceeds capacity", Options{ChunkSize: 64, Payload: 49}},
		{"negative max idle", Options{ChunkSize: 64, Payload: 16, MaxIdle: -1}},
		{"negative iterations", Options{ChunkSize: 64, Payload: 16, Iterations: -1}},
		{"negative split interval", Options{ChunkSize: 64, Payload: 16, SplitEvery: -1}},
		{"negative queue depth", Options{ChunkSize: 64, Payload: 16, QueueDepth: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Run(ctx, tt.opts, nil)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		})
	}
}

func TestRunPropagatesAllocatorFailure(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	opts := Options{
		Workers:    2,
		Iterations: 10,
		ChunkSize:  128,
		Payload:    32,
		Allocator:  failing{},
	}
	report, err := Run(ctx, opts, testutil.TestLogger(t))
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
	assert.Contains(t, err.Error(), "benchmark aborted")
}

func TestRunWithArenaAllocator(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	opts := Options{
		Workers:    2,
		Iterations: 100,
		ChunkSize:  256,
		MaxIdle:    4,
		Payload:    64,
		Allocator:  alloc.NewArena(1<<20, 4),
		Name:       "arena",
	}
	report, err := Run(ctx, opts, testutil.TestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, int64(200), report.TotalOps)
	assert.Equal(t, report.Allocator.Allocs, report.Allocator.Frees)
}

func TestReportSaveAndPrint(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	opts := Options{
		Workers:    1,
		Iterations: 20,
		ChunkSize:  128,
		MaxIdle:    2,
		Payload:    32,
		Name:       "report",
	}
	report, err := Run(ctx, opts, testutil.TestLogger(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "run.json")
	require.NoError(t, report.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Report
	require.NoError(t, gojson.Unmarshal(data, &loaded))
	assert.Equal(t, report.TotalOps, loaded.TotalOps)
	assert.Equal(t, report.ChunkSize, loaded.ChunkSize)
	assert.Len(t, loaded.PerWorker, 1)

	var buf bytes.Buffer
	report.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "NETBUF BENCHMARK REPORT")
	assert.Contains(t, out, "Pool:")
	assert.Contains(t, out, "Allocator:")
}

func TestReportWriteJSON(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	report, err := Run(ctx, Options{Workers: 1, Iterations: 5, ChunkSize: 64, Payload: 16}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	var loaded Report
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &loaded))
	assert.Equal(t, int64(5), loaded.TotalOps)
}
