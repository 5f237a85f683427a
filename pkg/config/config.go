// Package config provides the unified configuration system for netbuf.
// It defines a single Config structure covering the buffer pool, its
// allocator, logging, metrics exposure, and the benchmark harness, so every
// entry point loads and validates settings the same way.
//
// The configuration is organized into logical sections:
//   - Buffer: chunk sizing and invariant checking
//   - Pool: idle retention and allocator selection
//   - Logging: level, encoding, development mode
//   - Metrics: Prometheus exposure
//   - Bench: workload shape for the benchmark harness
//
// Example usage:
//
//	cfg := config.NewConfig("frontend")
//	cfg.Buffer.ChunkSize = 8192
//	cfg.Pool.MaxIdle = 64
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/ajitpratap0/netbuf/pkg/alloc"
	"github.com/ajitpratap0/netbuf/pkg/logger"
	"github.com/ajitpratap0/netbuf/pkg/mbuf"
)

// Config is the top-level configuration for a netbuf deployment.
type Config struct {
	// Name identifies the deployment instance and labels its pools
	Name string `yaml:"name" json:"name"`

	// Buffer settings shape every chunk the pools hand out
	Buffer BufferConfig `yaml:"buffer" json:"buffer"`

	// Pool settings control buffer retention and chunk sourcing
	Pool PoolConfig `yaml:"pool" json:"pool"`

	// Logging configures the structured logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics configures Prometheus exposure
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Bench shapes the benchmark harness workload
	Bench BenchConfig `yaml:"bench" json:"bench"`
}

// BufferConfig contains chunk-level settings.
type BufferConfig struct {
	// ChunkSize is the bytes allocated per buffer, tail record included
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
	// InvariantChecks enables the integrity checks on buffer operations
	InvariantChecks bool `yaml:"invariant_checks" json:"invariant_checks"`
}

// PoolConfig contains buffer pool settings.
type PoolConfig struct {
	// MaxIdle bounds retained returned buffers; zero destroys every return
	MaxIdle int `yaml:"max_idle" json:"max_idle"`
	// Allocator selects where chunks come from
	Allocator AllocatorConfig `yaml:"allocator" json:"allocator"`
}

// AllocatorConfig selects and parameterizes the chunk allocator.
type AllocatorConfig struct {
	// Kind is one of "heap", "arena", or "mmap"
	Kind string `yaml:"kind" json:"kind"`
	// ArenaBlockMB sets the arena block size in megabytes
	ArenaBlockMB int `yaml:"arena_block_mb" json:"arena_block_mb"`
	// ArenaMaxBlocks bounds how many blocks the arena may open
	ArenaMaxBlocks int `yaml:"arena_max_blocks" json:"arena_max_blocks"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level sets logging verbosity (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`
	// Development switches to human-friendly colored output
	Development bool `yaml:"development" json:"development"`
	// Encoding is "json" or "console"
	Encoding string `yaml:"encoding" json:"encoding"`
}

// MetricsConfig contains Prometheus exposure settings.
type MetricsConfig struct {
	// Enabled turns on the metrics endpoint
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Listen is the address serving /metrics, e.g. ":9090"
	Listen string `yaml:"listen" json:"listen"`
}

// BenchConfig shapes the benchmark harness workload.
type BenchConfig struct {
	// Workers is the number of independent pool owners
	Workers int `yaml:"workers" json:"workers"`
	// Iterations is the borrow cycles per worker; zero runs until Duration
	Iterations int `yaml:"iterations" json:"iterations"`
	// Duration bounds the run when Iterations is zero
	Duration time.Duration `yaml:"duration" json:"duration"`
	// Payload is the bytes staged per cycle
	Payload int `yaml:"payload" json:"payload"`
	// SplitEvery performs a buffer split every N cycles; zero disables
	SplitEvery int `yaml:"split_every" json:"split_every"`
	// QueueDepth chains this many buffers before draining; zero disables
	QueueDepth int `yaml:"queue_depth" json:"queue_depth"`
	// ReportPath writes the JSON report here; empty prints to stdout
	ReportPath string `yaml:"report_path" json:"report_path"`
}

// NewConfig creates a Config with production defaults. Callers override
// individual fields as needed and then Validate.
func NewConfig(name string) *Config {
	return &Config{
		Name: name,
		Buffer: BufferConfig{
			ChunkSize:       mbuf.DefaultChunkSize,
			InvariantChecks: true,
		},
		Pool: PoolConfig{
			MaxIdle: mbuf.DefaultMaxIdle,
			Allocator: AllocatorConfig{
				Kind:           "heap",
				ArenaBlockMB:   16,
				ArenaMaxBlocks: 8,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
			Encoding:    "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Bench: BenchConfig{
			Workers:    runtime.NumCPU(),
			Iterations: 100000,
			Payload:    1024,
			SplitEvery: 16,
			QueueDepth: 8,
		},
	}
}

// Validate validates the configuration for correctness.
// It checks required fields and ensures values are within acceptable
// ranges. Entry points call this after loading to catch errors early.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Buffer.ChunkSize < mbuf.MinChunkSize {
		return fmt.Errorf("chunk_size must be at least %d", mbuf.MinChunkSize)
	}
	if c.Pool.MaxIdle < 0 {
		return fmt.Errorf("max_idle cannot be negative")
	}
	switch c.Pool.Allocator.Kind {
	case "heap", "mmap":
	case "arena":
		if c.Pool.Allocator.ArenaBlockMB <= 0 {
			return fmt.Errorf("arena_block_mb must be positive")
		}
		if c.Pool.Allocator.ArenaMaxBlocks <= 0 {
			return fmt.Errorf("arena_max_blocks must be positive")
		}
	default:
		return fmt.Errorf("unknown allocator kind %q", c.Pool.Allocator.Kind)
	}
	if c.Bench.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.Bench.Iterations < 0 {
		return fmt.Errorf("iterations cannot be negative")
	}
	if c.Bench.Iterations == 0 && c.Bench.Duration <= 0 {
		return fmt.Errorf("bench needs iterations or a duration")
	}
	if c.Bench.Payload <= 0 {
		return fmt.Errorf("payload must be positive")
	}
	if c.Bench.Payload > c.Buffer.ChunkSize-mbuf.Overhead {
		return fmt.Errorf("payload %d exceeds buffer capacity %d",
			c.Bench.Payload, c.Buffer.ChunkSize-mbuf.Overhead)
	}
	if c.Bench.SplitEvery < 0 {
		return fmt.Errorf("split_every cannot be negative")
	}
	if c.Bench.QueueDepth < 0 {
		return fmt.Errorf("queue_depth cannot be negative")
	}
	return nil
}

// Build constructs the configured allocator.
func (a AllocatorConfig) Build() (alloc.Allocator, error) {
	switch a.Kind {
	case "", "heap":
		return alloc.Heap, nil
	case "arena":
		return alloc.NewArena(a.ArenaBlockMB<<20, a.ArenaMaxBlocks), nil
	case "mmap":
		return alloc.NewMmap()
	default:
		return nil, fmt.Errorf("unknown allocator kind %q", a.Kind)
	}
}

// LoggerConfig maps the logging section onto the logger package's config.
func (l LoggingConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       l.Level,
		Development: l.Development,
		Encoding:    l.Encoding,
	}
}
