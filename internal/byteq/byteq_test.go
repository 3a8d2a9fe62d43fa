package byteq

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ejyy/cueue"
)

func TestWriteThenRead(t *testing.T) {
	w, r, err := cueue.New[byte](64)
	require.NoError(t, err)

	wc := NewWriteCloser(w)
	rc := NewReadCloser(r)
	t.Cleanup(func() { wc.Close(); rc.Close() })

	n, err := wc.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = rc.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
}

func TestReadReturnsEOFAfterWriterClose(t *testing.T) {
	w, r, err := cueue.New[byte](64)
	require.NoError(t, err)

	wc := NewWriteCloser(w)
	rc := NewReadCloser(r)
	t.Cleanup(func() { rc.Close() })

	require.NoError(t, wc.Close())

	buf := make([]byte, 1)
	_, err = rc.Read(buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestPump(t *testing.T) {
	w, r, err := cueue.New[byte](64)
	require.NoError(t, err)

	wc := NewWriteCloser(w)
	rc := NewReadCloser(r)

	src := bytes.NewBufferString("the quick brown fox")
	done := make(chan struct{})
	var got bytes.Buffer

	go func() {
		defer close(done)
		io.Copy(&got, rc)
	}()

	require.NoError(t, Pump(wc, src, make([]byte, 4)))
	require.NoError(t, wc.Close())
	<-done

	require.Equal(t, "the quick brown fox", got.String())
}
