// Command cueue-bench drives a producer and a consumer goroutine across a
// cueue ring and reports throughput. It is a thin wrapper around the core
// package — grounded on the teacher's main.go/server.go wiring and on
// sakateka-yanet2's pdump ring reader, which drives producer/consumer
// goroutines with errgroup and reports counters the same way.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/c2h5oh/datasize"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ejyy/cueue"
)

// config is the CLI surface, parsed by kong the way grafana-tempo's
// command-line tools declare their flags as a plain struct.
type config struct {
	Capacity   datasize.ByteSize `help:"Minimum ring capacity, e.g. 64KB, 4MiB." default:"1MiB"`
	PayloadLen int               `help:"Bytes written per producer iteration." default:"64"`
	Duration   time.Duration     `help:"How long to run the benchmark." default:"2s"`
}

func main() {
	var cfg config
	kong.Parse(&cfg,
		kong.Description("Stress-test the cueue SPSC ring buffer."),
	)

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cueue-bench: logger init failed:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config, logger *zap.Logger) error {
	w, r, err := cueue.New[byte](int(cfg.Capacity.Bytes()))
	if err != nil {
		return fmt.Errorf("cueue.New: %w", err)
	}

	logger.Info("ring ready",
		zap.Int("requested_bytes", int(cfg.Capacity.Bytes())),
		zap.Int("actual_capacity", w.Capacity()),
		zap.Int("payload_len", cfg.PayloadLen),
		zap.Duration("duration", cfg.Duration),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var written, read uint64

	g.Go(func() error {
		payload := make([]byte, cfg.PayloadLen)
		var counter byte
		writeBackoff := &backoff.ExponentialBackOff{
			InitialInterval:     time.Microsecond,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          backoff.DefaultMultiplier,
			MaxInterval:         time.Millisecond,
		}
		writeBackoff.Reset()
		for {
			select {
			case <-ctx.Done():
				return w.Close()
			default:
			}
			for i := range payload {
				payload[i] = counter
				counter++
			}
			off := 0
			for off < len(payload) {
				chunk := w.WriteChunk()
				if len(chunk) == 0 {
					time.Sleep(writeBackoff.NextBackOff())
					continue
				}
				writeBackoff.Reset()
				n := copy(chunk, payload[off:])
				w.Commit(n)
				off += n
				written += uint64(n)
			}
		}
	})

	g.Go(func() error {
		readBackoff := &backoff.ExponentialBackOff{
			InitialInterval:     time.Microsecond,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          backoff.DefaultMultiplier,
			MaxInterval:         time.Millisecond,
		}
		readBackoff.Reset()
		for {
			chunk := r.ReadChunk()
			if len(chunk) == 0 {
				if r.IsAbandoned() {
					return r.Close()
				}
				select {
				case <-ctx.Done():
					return r.Close()
				default:
					time.Sleep(readBackoff.NextBackOff())
					continue
				}
			}
			readBackoff.Reset()
			read += uint64(len(chunk))
			r.Commit()
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("done", zap.Uint64("bytes_written", written), zap.Uint64("bytes_read", read))
	return nil
}
