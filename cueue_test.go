package cueue

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestCapacity exercises scenario 1: requesting 16 bytes of u8 elements
// rounds up to one page, and one byte over a page rounds up to two pages.
func TestCapacity(t *testing.T) {
	w, r, err := New[byte](16)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close(); r.Close() })

	pageSize := os.Getpagesize()
	require.Equal(t, w.Capacity(), r.Capacity())
	require.Equal(t, pageSize, w.Capacity())

	w2, r2, err := New[byte](pageSize + 1)
	require.NoError(t, err)
	t.Cleanup(func() { w2.Close(); r2.Close() })
	require.Equal(t, pageSize*2, w2.Capacity())
}

// TestCapacityMinimum exercises the boundary: requesting a single byte
// still yields a ring of at least one page and at least one element.
func TestCapacityMinimum(t *testing.T) {
	w, r, err := New[byte](1)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close(); r.Close() })

	require.GreaterOrEqual(t, w.Capacity(), 1)
	require.Equal(t, os.Getpagesize(), w.Capacity())
}

func TestZeroSizedElementRejected(t *testing.T) {
	_, _, err := New[struct{}](16)
	require.Error(t, err)
}
