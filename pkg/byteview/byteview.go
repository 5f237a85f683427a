// Package byteview provides a length-delimited, read-only view over a byte
// sequence. Views are what the buffer layer accepts when staging payload
// fragments that originate elsewhere (a parsed key, a slice of a request
// frame) without forcing an intermediate copy.
//
// A View never owns its backing storage. Callers that hand out a View must
// keep the underlying bytes alive and unmodified for as long as the View is
// in use; the zero-copy constructors exist precisely because the read path
// is too hot to copy defensively.
package byteview

import (
	"bytes"
	"unsafe"
)

// View is an immutable window over a byte sequence. The zero value is an
// empty view.
type View struct {
	data []byte
}

// Of wraps b without copying. Mutating b afterwards is visible through the
// view; callers that need isolation should use Clone.
func Of(b []byte) View {
	return View{data: b}
}

// Clone copies b into freshly allocated storage so the view stays stable no
// matter what happens to the original slice.
func Clone(b []byte) View {
	if len(b) == 0 {
		return View{}
	}
	d := make([]byte, len(b))
	copy(d, b)
	return View{data: d}
}

// OfString aliases the string's storage without copying.
//
// WARNING: the returned view must be treated as strictly read-only. Writing
// through Data() would mutate string memory and is undefined behavior.
func OfString(s string) View {
	if len(s) == 0 {
		return View{}
	}
	return View{data: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// Len returns the number of bytes in the view.
func (v View) Len() int {
	return len(v.data)
}

// Empty reports whether the view contains no bytes.
func (v View) Empty() bool {
	return len(v.data) == 0
}

// Data exposes the underlying bytes. The slice must not be modified.
func (v View) Data() []byte {
	return v.data
}

// String materializes the view as a string without copying.
//
// WARNING: the result aliases the view's storage. It is only safe while the
// backing bytes remain unmodified, which holds for views over immutable
// sources and for short-lived lookups.
func (v View) String() string {
	if len(v.data) == 0 {
		return ""
	}
	return unsafe.String(&v.data[0], len(v.data))
}

// Slice returns the sub-view [lo, hi). Bounds follow slice semantics and
// panic when out of range.
func (v View) Slice(lo, hi int) View {
	return View{data: v.data[lo:hi]}
}

// Equal reports whether two views contain the same bytes.
func (v View) Equal(o View) bool {
	return bytes.Equal(v.data, o.data)
}

// HasPrefix reports whether the view starts with prefix.
func (v View) HasPrefix(prefix []byte) bool {
	return bytes.HasPrefix(v.data, prefix)
}
