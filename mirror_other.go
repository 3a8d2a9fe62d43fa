//go:build !linux && !darwin

package cueue

import "fmt"

// No portable way to request two adjacent mappings of the same physical
// pages outside linux/darwin's mmap(MAP_FIXED) support; per the design
// notes this implementation does not fall back to a memcpy'd scratch
// buffer, it simply refuses to construct a ring on unsupported platforms.

func systemPageSize() (uintptr, error) {
	return 0, fmt.Errorf("double-mapped mirror unsupported on this GOOS")
}

func newMirrorSized(size uintptr) (*mirror, error) {
	return nil, &MirrorInitError{Op: "platform", Err: fmt.Errorf("double-mapped mirror unsupported on this GOOS")}
}

func (m *mirror) release() error { return nil }
