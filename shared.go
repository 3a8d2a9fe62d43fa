package cueue

import (
	"sync/atomic"
	"unsafe"
)

// cacheLineSize is the padding unit used to keep writePos and readPos on
// separate cache lines, the same way the teacher's RingBuffer keeps its
// own write/read counters apart: without it, the producer and consumer
// repeatedly invalidate the same cache line for each other even though they
// touch logically independent fields.
const cacheLineSize = 64

// shared is the coordination block referenced by exactly one Writer and one
// Reader. It owns the mirror and the monotonic position counters; slot
// index is always pos & mask since n is a power of two.
type shared[T any] struct {
	mir mirror
	n   uint64
	mask uint64

	_pad0    [cacheLineSize]byte
	writePos uint64
	_pad1    [cacheLineSize - 8]byte
	readPos  uint64
	_pad2    [cacheLineSize - 8]byte

	writerAlive atomic.Bool
	readerAlive atomic.Bool
	released    atomic.Bool
}

// Destroyer is an optional interface an element type may implement so the
// ring can release resources it owns (file descriptors, references into
// other off-heap state, ...) when a slot is consumed or when the ring is
// torn down with unconsumed elements still in it. Go has no destructors, so
// this is the idiomatic stand-in: the same kind of optional-interface probe
// as io.Closer or sql.Valuer elsewhere in the ecosystem.
//
// Slots live in a double-mapped mmap region outside the garbage collector's
// heap, which does not trace references kept only there. A Go pointer held
// in T is safe only while its target is also reachable from ordinary Go
// memory; an out-of-band handle (e.g. an integer id into a side table)
// avoids the constraint altogether.
type Destroyer interface {
	CueueDestroy()
}

// destroyElems destroys and zeroes each element of live, in order. Called
// whenever elements leave the ring's logical ownership: Reader.CommitRead
// for elements the consumer has finished with, and shared.release for
// elements still in [readPos, writePos) when both endpoints have closed.
func destroyElems[T any](live []T) {
	var zero T
	for i := range live {
		if d, ok := any(live[i]).(Destroyer); ok {
			d.CueueDestroy()
		}
		live[i] = zero
	}
}

func newShared[T any](minBytes int) (*shared[T], error) {
	var zero T
	elemSize := unsafe.Sizeof(zero)
	if elemSize == 0 {
		return nil, &InitError{Op: "new", Err: errZeroSizedElem}
	}

	pageSize, err := systemPageSize()
	if err != nil {
		return nil, &MirrorInitError{Op: "page size query", Err: err}
	}

	n := ringCapacity(minBytes, elemSize, pageSize)

	mir, err := newMirrorSized(n * elemSize)
	if err != nil {
		return nil, err
	}

	s := &shared[T]{
		mir:  *mir,
		n:    uint64(n),
		mask: uint64(n) - 1,
	}
	s.writerAlive.Store(true)
	s.readerAlive.Store(true)
	return s, nil
}

// elemSlice reinterprets a byte window of the mirror as a slice of T. The
// mirror guarantees the underlying bytes are contiguous for any length up
// to s.n elements, so the returned slice never needs stitching.
func (s *shared[T]) elemSlice(startElem uint64, length int) []T {
	if length == 0 {
		return nil
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	off := int((startElem & s.mask) * uint64(elemSize))
	b := s.mir.slice(off, length*int(elemSize))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), length)
}

// release tears down the mirror. Any elements still logically owned by the
// ring in [readPos, writePos) — committed by the writer, never consumed by
// the reader — are destroyed first. Only the first call does anything: when
// both endpoints close at the same time, each may see the other's flag
// already cleared and call release.
func (s *shared[T]) release() error {
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}
	read := atomic.LoadUint64(&s.readPos)
	write := atomic.LoadUint64(&s.writePos)
	if write > read {
		destroyElems(s.elemSlice(read, int(write-read)))
	}
	return s.mir.release()
}
