//go:build linux
// +build linux

package alloc

import (
	"syscall"
)

const mmapSupported = true

// mmapAnon maps length bytes of anonymous private memory
func mmapAnon(length int) ([]byte, error) {
	return syscall.Mmap(-1, 0, length,
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_ANON|syscall.MAP_PRIVATE)
}

// munmap unmaps a region returned by mmapAnon
func munmap(b []byte) error {
	return syscall.Munmap(b)
}

// madviseWillneed tells the kernel the region is about to be touched
func madviseWillneed(b []byte) error {
	return syscall.Madvise(b, syscall.MADV_WILLNEED)
}
