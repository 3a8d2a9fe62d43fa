//go:build linux || darwin

package cueue

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// anonStore is an anonymous, shared, ftruncate-able region of backing
// physical memory. Linux backs it with memfd_create; darwin backs it with
// an unlinked temp file, since memfd_create has no Darwin equivalent. Either
// way the descriptor is only needed long enough to map it twice — once the
// mappings exist, they keep the physical storage alive on their own.
type anonStore interface {
	fd() int
	close() error
}

func systemPageSize() (uintptr, error) {
	p := uintptr(unix.Getpagesize())
	if p == 0 || p&(p-1) != 0 {
		return 0, fmt.Errorf("non power-of-two page size %d", p)
	}
	return p, nil
}

// newMirrorSized double-maps exactly size bytes. size must already be a
// multiple of the system page size; callers (ringCapacity) guarantee this.
func newMirrorSized(size uintptr) (*mirror, error) {
	store, err := newAnonStore(size)
	if err != nil {
		return nil, &MirrorInitError{Op: "backing store", Err: err}
	}
	defer store.close()

	if err := unix.Ftruncate(store.fd(), int64(size)); err != nil {
		return nil, &MirrorInitError{Op: "ftruncate", Err: err}
	}

	base, _, errno := unix.Syscall6(unix.SYS_MMAP, 0, 2*size,
		unix.PROT_NONE, unix.MAP_ANONYMOUS|unix.MAP_PRIVATE, ^uintptr(0), 0)
	if errno != 0 {
		return nil, &MirrorInitError{Op: "mmap reserve", Err: errno}
	}

	unreserve := func() { unix.Syscall6(unix.SYS_MUNMAP, base, 2*size, 0, 0, 0, 0) }

	first, _, errno := unix.Syscall6(unix.SYS_MMAP, base, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED, uintptr(store.fd()), 0)
	if errno != 0 {
		unreserve()
		return nil, &MirrorInitError{Op: "mmap first half", Err: errno}
	}
	if first != base {
		unix.Syscall6(unix.SYS_MUNMAP, first, size, 0, 0, 0, 0)
		unreserve()
		return nil, &MirrorInitError{Op: "mmap first half", Err: fmt.Errorf("kernel did not honor MAP_FIXED")}
	}

	second, _, errno := unix.Syscall6(unix.SYS_MMAP, base+size, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED, uintptr(store.fd()), 0)
	if errno != 0 {
		unix.Syscall6(unix.SYS_MUNMAP, base, size, 0, 0, 0, 0)
		unreserve()
		return nil, &MirrorInitError{Op: "mmap mirror half", Err: errno}
	}
	if second != base+size {
		unix.Syscall6(unix.SYS_MUNMAP, second, size, 0, 0, 0, 0)
		unreserve()
		return nil, &MirrorInitError{Op: "mmap mirror half", Err: fmt.Errorf("kernel did not honor MAP_FIXED")}
	}

	return &mirror{base: base, size: size}, nil
}

// release unmaps both halves of the mirror as one contiguous region. The
// physical storage itself was already released (via anonStore.close) in
// newMirrorSized; the kernel frees it once the last mapping referencing it
// is gone.
func (m *mirror) release() error {
	if m.base == 0 {
		return nil
	}
	_, _, errno := unix.Syscall6(unix.SYS_MUNMAP, m.base, 2*m.size, 0, 0, 0, 0)
	m.base = 0
	if errno != 0 {
		return errno
	}
	return nil
}
