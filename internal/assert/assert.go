// Package assert implements the invariant checking used by the buffer core.
//
// A failed check means the program has already corrupted memory or broken a
// cursor contract; the only safe reaction is to stop. Checks therefore panic
// with a *Violation instead of returning an error, and they are never used
// for conditions a caller could reasonably recover from (allocation
// exhaustion is reported through regular error returns).
//
// Checks are enabled by default. Latency-sensitive deployments can switch
// them off once an integration has been shaken out:
//
//	assert.SetEnabled(false)
//
// Hot paths guard their checks with Enabled() so that disabled checks cost a
// single atomic load and no argument construction.
package assert

import (
	"fmt"
	"sync/atomic"
)

// Violation describes a broken invariant. It is the panic value raised by
// every check in this package and implements error so recover sites can
// report it uniformly.
type Violation struct {
	Msg string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return "invariant violation: " + v.Msg
}

var enabled int32 = 1

// Enabled reports whether invariant checks are active.
func Enabled() bool {
	return atomic.LoadInt32(&enabled) == 1
}

// SetEnabled toggles invariant checking process-wide. Disabling is intended
// for release builds of latency-sensitive services; corrupted buffers are
// then undetected until they surface elsewhere.
func SetEnabled(on bool) {
	if on {
		atomic.StoreInt32(&enabled, 1)
	} else {
		atomic.StoreInt32(&enabled, 0)
	}
}

// That panics with a *Violation carrying msg when cond is false and checks
// are enabled. The message should state the invariant that no longer holds.
func That(cond bool, msg string) {
	if Enabled() && !cond {
		panic(&Violation{Msg: msg})
	}
}

// Fail unconditionally raises a *Violation with msg. Callers gate it behind
// Enabled() themselves, which keeps argument construction off the fast path:
//
//	if assert.Enabled() && n > b.Available() {
//	    assert.Failf("copy of %d bytes exceeds %d writable", n, b.Available())
//	}
func Fail(msg string) {
	panic(&Violation{Msg: msg})
}

// Failf is Fail with fmt.Sprintf formatting.
func Failf(format string, args ...interface{}) {
	panic(&Violation{Msg: fmt.Sprintf(format, args...)})
}
