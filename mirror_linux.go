//go:build linux

package cueue

import "golang.org/x/sys/unix"

// memfdStore backs a mirror with an anonymous, in-memory file created via
// memfd_create(2). It is never linked into any filesystem, so nothing but
// the mappings that reference it keep it alive.
type memfdStore struct {
	f int
}

func newAnonStore(size uintptr) (anonStore, error) {
	fd, err := unix.MemfdCreate("cueue-ring", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &memfdStore{f: fd}, nil
}

func (s *memfdStore) fd() int { return s.f }

func (s *memfdStore) close() error {
	if s.f < 0 {
		return nil
	}
	err := unix.Close(s.f)
	s.f = -1
	return err
}
