package byteview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	src := []byte("get foo\r\n")
	v := Of(src)

	assert.Equal(t, 9, v.Len())
	assert.False(t, v.Empty())
	assert.Equal(t, src, v.Data())

	// Of aliases the source; mutations show through.
	src[0] = 'G'
	assert.Equal(t, byte('G'), v.Data()[0])
}

func TestClone(t *testing.T) {
	src := []byte("value")
	v := Clone(src)

	src[0] = 'X'
	assert.Equal(t, "value", v.String())

	empty := Clone(nil)
	assert.True(t, empty.Empty())
	assert.Equal(t, 0, empty.Len())
}

func TestOfString(t *testing.T) {
	v := OfString("stats\r\n")

	require.Equal(t, 7, v.Len())
	assert.Equal(t, []byte("stats\r\n"), v.Data())
	assert.Equal(t, "stats\r\n", v.String())

	assert.True(t, OfString("").Empty())
}

func TestSlice(t *testing.T) {
	v := Of([]byte("key:12345"))

	key := v.Slice(0, 3)
	assert.Equal(t, "key", key.String())

	id := v.Slice(4, v.Len())
	assert.Equal(t, "12345", id.String())

	assert.Panics(t, func() { v.Slice(4, 20) })
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b View
		want bool
	}{
		{"identical content", Of([]byte("abc")), OfString("abc"), true},
		{"different content", Of([]byte("abc")), Of([]byte("abd")), false},
		{"different length", Of([]byte("abc")), Of([]byte("ab")), false},
		{"both empty", View{}, Of(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestHasPrefix(t *testing.T) {
	v := OfString("VALUE foo 0 5\r\n")

	assert.True(t, v.HasPrefix([]byte("VALUE")))
	assert.False(t, v.HasPrefix([]byte("END")))
	assert.True(t, v.HasPrefix(nil))
}
