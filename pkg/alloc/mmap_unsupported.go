//go:build !linux && !darwin
// +build !linux,!darwin

package alloc

import (
	"errors"
)

const mmapSupported = false

var errNoMmap = errors.New("mmap not available on this platform")

func mmapAnon(length int) ([]byte, error) {
	return nil, errNoMmap
}

func munmap(b []byte) error {
	return errNoMmap
}

func madviseWillneed(b []byte) error {
	return errNoMmap
}
