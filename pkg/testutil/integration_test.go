package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocDelta(t *testing.T) {
	grown := allocDelta(
		&MemoryProfile{AllocBytes: 1 << 20},
		&MemoryProfile{AllocBytes: 3 << 20})
	assert.Equal(t, int64(2<<20), grown)

	// A collection between the two captures can shrink the heap below its
	// starting point; the delta floors at zero instead of going negative.
	shrunk := allocDelta(
		&MemoryProfile{AllocBytes: 3 << 20},
		&MemoryProfile{AllocBytes: 1 << 20})
	assert.Equal(t, int64(0), shrunk)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "2.0 KB", formatBytes(2048))
	assert.Equal(t, "1.5 MB", formatBytes(3<<20/2))
}
