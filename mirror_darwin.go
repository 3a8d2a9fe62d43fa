//go:build darwin

package cueue

import "os"

// fileStore backs a mirror with an unlinked temporary file. Darwin has no
// memfd_create, so the anonymous-storage trick here is the classic
// create-then-unlink dance: the path only exists long enough to open a
// descriptor, and removing it immediately means the storage is reachable
// only through file descriptors that already have it open, same as memfd on
// Linux.
type fileStore struct {
	f *os.File
}

func newAnonStore(size uintptr) (anonStore, error) {
	f, err := os.CreateTemp("", "cueue-ring-*")
	if err != nil {
		return nil, err
	}
	_ = os.Remove(f.Name())
	return &fileStore{f: f}, nil
}

func (s *fileStore) fd() int { return int(s.f.Fd()) }

func (s *fileStore) close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
