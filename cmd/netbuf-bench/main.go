package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/netbuf/internal/bench"
	"github.com/ajitpratap0/netbuf/pkg/config"
	"github.com/ajitpratap0/netbuf/pkg/logger"
	"github.com/ajitpratap0/netbuf/pkg/mbuf"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	root := &cobra.Command{
		Use:   "netbuf-bench",
		Short: "netbuf-bench - Buffer pool workload driver",
		Long: `netbuf-bench drives the netbuf buffer pool through a synthetic cache-server
workload and reports throughput, recycling behavior, and process memory.
Each worker owns a private pool; the workload stages payloads, consumes and
compacts them, splits pipelined remainders, and batches returns through a
flush queue.`,
	}

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("netbuf-bench v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// Main run command
	var configFile string
	var workers, iterations, chunkSize, maxIdle, payload, splitEvery, queueDepth int
	var duration time.Duration
	var allocator, reportPath, logLevel, metricsListen string
	var cpuProfile, memProfile string
	var noChecks bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the buffer pool workload",
		Long: `Run the workload described by a YAML configuration file, command line
flags, or both. Flags set explicitly on the command line override the file.

Example:
  netbuf-bench run --workers 8 --iterations 500000 --report bench.json
  netbuf-bench run --config bench.yaml --duration 30s --iterations 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBenchConfig(configFile)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("workers") {
				cfg.Bench.Workers = workers
			}
			if flags.Changed("iterations") {
				cfg.Bench.Iterations = iterations
			}
			if flags.Changed("duration") {
				cfg.Bench.Duration = duration
			}
			if flags.Changed("chunk-size") {
				cfg.Buffer.ChunkSize = chunkSize
			}
			if flags.Changed("max-idle") {
				cfg.Pool.MaxIdle = maxIdle
			}
			if flags.Changed("payload") {
				cfg.Bench.Payload = payload
			}
			if flags.Changed("split-every") {
				cfg.Bench.SplitEvery = splitEvery
			}
			if flags.Changed("queue-depth") {
				cfg.Bench.QueueDepth = queueDepth
			}
			if flags.Changed("allocator") {
				cfg.Pool.Allocator.Kind = allocator
			}
			if flags.Changed("report") {
				cfg.Bench.ReportPath = reportPath
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if flags.Changed("metrics-listen") {
				cfg.Metrics.Listen = metricsListen
				cfg.Metrics.Enabled = metricsListen != ""
			}
			if flags.Changed("no-invariant-checks") {
				cfg.Buffer.InvariantChecks = !noChecks
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return runBench(cfg, cpuProfile, memProfile)
		},
	}

	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file (optional)")
	runCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of workers, each owning a private buffer pool")
	runCmd.Flags().IntVar(&iterations, "iterations", 100000, "Borrow cycles per worker; 0 runs until --duration expires")
	runCmd.Flags().DurationVar(&duration, "duration", 0, "Stop the run after this long (e.g. 30s, 2m); 0 disables the time limit")
	runCmd.Flags().IntVar(&chunkSize, "chunk-size", mbuf.DefaultChunkSize, "Bytes per chunk, tail record included")
	runCmd.Flags().IntVar(&maxIdle, "max-idle", mbuf.DefaultMaxIdle, "Returned buffers retained per pool; 0 destroys every return")
	runCmd.Flags().IntVar(&payload, "payload", 1024, "Bytes staged into each borrowed buffer")
	runCmd.Flags().IntVar(&splitEvery, "split-every", 16, "Split the buffer every Nth cycle; 0 disables splitting")
	runCmd.Flags().IntVar(&queueDepth, "queue-depth", 8, "Flush queue depth; 0 returns buffers immediately")
	runCmd.Flags().StringVar(&allocator, "allocator", "heap", "Chunk allocator (heap, arena, mmap)")
	runCmd.Flags().StringVar(&reportPath, "report", "", "Write the JSON report to this path")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	runCmd.Flags().StringVar(&memProfile, "memprofile", "", "Write memory profile to file")
	runCmd.Flags().BoolVar(&noChecks, "no-invariant-checks", false, "Disable buffer integrity checks for peak throughput")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadBenchConfig returns the defaults when no file is given.
func loadBenchConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.NewConfig("netbuf-bench"), nil
	}
	return config.LoadConfig(path)
}

// runBench executes the workload described by cfg and emits the report.
func runBench(cfg *config.Config, cpuProfile, memProfile string) error {
	if err := logger.Init(cfg.Logging.LoggerConfig()); err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Component("netbuf-bench")

	mbuf.SetInvariantChecks(cfg.Buffer.InvariantChecks)
	if !cfg.Buffer.InvariantChecks {
		log.Warn("buffer invariant checks disabled")
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen, log)
	}

	allocator, err := cfg.Pool.Allocator.Build()
	if err != nil {
		return fmt.Errorf("allocator setup failed: %w", err)
	}

	ctx := context.Background()
	if cfg.Bench.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Bench.Duration)
		defer cancel()
	}

	opts := bench.Options{
		Workers:    cfg.Bench.Workers,
		Iterations: cfg.Bench.Iterations,
		ChunkSize:  cfg.Buffer.ChunkSize,
		MaxIdle:    cfg.Pool.MaxIdle,
		Payload:    cfg.Bench.Payload,
		SplitEvery: cfg.Bench.SplitEvery,
		QueueDepth: cfg.Bench.QueueDepth,
		Allocator:  allocator,
		Name:       cfg.Name,
	}

	report, err := bench.Run(ctx, opts, log)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	if memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
	}

	if cfg.Bench.ReportPath != "" {
		if err := report.Save(cfg.Bench.ReportPath); err != nil {
			return err
		}
		log.Info("report written", zap.String("path", cfg.Bench.ReportPath))
	}
	report.Print(os.Stdout)

	return nil
}

// serveMetrics exposes the Prometheus registry for scraping while a long
// run is in flight.
func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	log.Info("metrics server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}
