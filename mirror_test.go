package cueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundUpPow2(t *testing.T) {
	cases := map[uintptr]uintptr{
		0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 4096: 4096, 4097: 8192,
	}
	for in, want := range cases {
		require.Equal(t, want, roundUpPow2(in), "roundUpPow2(%d)", in)
	}
}

func TestRingCapacityByteElements(t *testing.T) {
	const page = 4096
	require.Equal(t, uintptr(page), ringCapacity(16, 1, page))
	require.Equal(t, uintptr(2*page), ringCapacity(page+1, 1, page))
	require.Equal(t, uintptr(page), ringCapacity(1, 1, page))
}

// TestRingCapacityWiderElements checks the generalization for elements
// wider than one byte: the resulting element count must still be a power
// of two whose byte size is a page multiple.
func TestRingCapacityWiderElements(t *testing.T) {
	const page = 4096
	n := ringCapacity(16, 8, page)
	require.True(t, n&(n-1) == 0, "n=%d must be a power of two", n)
	require.Equal(t, uintptr(0), (n*8)%page, "n*elemSize=%d must be a page multiple", n*8)
}

func TestMirrorDoubleMapContiguity(t *testing.T) {
	m, err := newMirrorSized(uintptr(systemPage(t)))
	require.NoError(t, err)
	t.Cleanup(func() { m.release() })

	size := int(m.size)
	// Write a recognizable pattern through the first half and read it back
	// through the wrap-around window that straddles the boundary.
	first := m.slice(0, size)
	for i := range first {
		first[i] = byte(i)
	}

	window := m.slice(size-4, 8)
	require.Len(t, window, 8)
	for i := 0; i < 4; i++ {
		require.Equal(t, byte(size-4+i), window[i])
	}
	for i := 0; i < 4; i++ {
		require.Equal(t, byte(i), window[4+i])
	}
}

func systemPage(t *testing.T) uintptr {
	t.Helper()
	p, err := systemPageSize()
	require.NoError(t, err)
	return p
}
