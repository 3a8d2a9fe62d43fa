// Package byteq adapts a byte-typed cueue ring to the io.Reader/io.Writer
// interfaces, so it can sit inside an io.Copy pipeline instead of requiring
// callers to drive WriteChunk/ReadChunk by hand. It generalizes the
// teacher's input/output distributor goroutines (which drained a ring of
// order-book events into a callback) to a plain byte stream.
package byteq

import (
	"io"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/ejyy/cueue"
)

// WriteCloser adapts a *cueue.Writer[byte] to io.WriteCloser. Write never
// blocks: once the ring is full it returns the count written so far and a
// nil error, the same partial-write contract io.Writer promises for a
// non-blocking sink. Pair it with a backoff loop (spin, yield, or a short
// sleep) in the caller if Write keeps returning short counts.
type WriteCloser struct {
	w *cueue.Writer[byte]
}

// NewWriteCloser wraps w for use as an io.WriteCloser.
func NewWriteCloser(w *cueue.Writer[byte]) *WriteCloser {
	return &WriteCloser{w: w}
}

func (wc *WriteCloser) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		chunk := wc.w.WriteChunk()
		if len(chunk) == 0 {
			return total, nil
		}
		n := copy(chunk, p[total:])
		wc.w.Commit(n)
		total += n
	}
	return total, nil
}

func (wc *WriteCloser) Close() error { return wc.w.Close() }

// ReadCloser adapts a *cueue.Reader[byte] to io.ReadCloser. Read returns
// io.EOF once the ring is empty and the peer writer has been closed;
// otherwise an empty ring yields (0, nil), signaling "try again" the same
// way a non-blocking pipe would.
type ReadCloser struct {
	r *cueue.Reader[byte]
}

// NewReadCloser wraps r for use as an io.ReadCloser.
func NewReadCloser(r *cueue.Reader[byte]) *ReadCloser {
	return &ReadCloser{r: r}
}

func (rc *ReadCloser) Read(p []byte) (int, error) {
	chunk := rc.r.ReadChunk()
	if len(chunk) == 0 {
		if !rc.r.IsAbandoned() {
			return 0, nil
		}
		// The writer may have committed its last bytes between the
		// ReadChunk above and its Close; look once more before EOF.
		chunk = rc.r.ReadChunk()
		if len(chunk) == 0 {
			return 0, io.EOF
		}
	}
	n := copy(p, chunk)
	rc.r.CommitRead(n)
	return n, nil
}

func (rc *ReadCloser) Close() error { return rc.r.Close() }

// Pump copies from src into the ring until src returns an error (io.EOF is
// reported as a clean finish), backing off with an exponential schedule
// between full-ring retries instead of busy-spinning — this is exactly the
// caller-owned backoff policy the core package leaves unspecified. The
// backoff itself is grounded on sakateka-yanet2's bird-adapter service,
// which retries a blocked stream the same way: reset on progress, wait
// NextBackOff() otherwise.
func Pump(dst *WriteCloser, src io.Reader, buf []byte) error {
	bo := &backoff.ExponentialBackOff{
		InitialInterval:     time.Microsecond,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         10 * time.Millisecond,
	}
	bo.Reset()

	for {
		n, err := src.Read(buf)
		if n > 0 {
			off := 0
			for off < n {
				written, werr := dst.Write(buf[off:n])
				if werr != nil {
					return werr
				}
				if written == 0 {
					time.Sleep(bo.NextBackOff())
					continue
				}
				bo.Reset()
				off += written
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
