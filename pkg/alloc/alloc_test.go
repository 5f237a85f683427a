package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/netbuf/pkg/errors"
)

// failing always refuses allocations; used to drive error paths.
type failing struct{}

func (failing) Allocate(n int) ([]byte, error) {
	return nil, errors.New(errors.ErrorTypeExhausted, "no memory")
}

func (failing) Free(b []byte) {}

func TestHeap(t *testing.T) {
	b, err := Heap.Allocate(4096)
	require.NoError(t, err)
	require.Len(t, b, 4096)

	// Fresh chunks are zeroed
	for _, c := range b {
		require.Equal(t, byte(0), c)
	}

	assert.NotPanics(t, func() { Heap.Free(b) })
}

func TestCountingTracksActivity(t *testing.T) {
	c := NewCounting(Heap)

	a, err := c.Allocate(100)
	require.NoError(t, err)
	b, err := c.Allocate(200)
	require.NoError(t, err)

	st := c.Stats()
	assert.Equal(t, int64(2), st.Allocs)
	assert.Equal(t, int64(0), st.Frees)
	assert.Equal(t, int64(300), st.LiveBytes)

	c.Free(a)
	c.Free(b)

	st = c.Stats()
	assert.Equal(t, int64(2), st.Frees)
	assert.Equal(t, int64(0), st.LiveBytes)
}

func TestCountingRecordsFailures(t *testing.T) {
	c := NewCounting(failing{})

	_, err := c.Allocate(64)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExhausted))

	st := c.Stats()
	assert.Equal(t, int64(0), st.Allocs)
	assert.Equal(t, int64(1), st.Failed)
	assert.Equal(t, int64(0), st.LiveBytes)
}
