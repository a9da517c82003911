package capture

import (
	"context"
	"errors"
	"io"
	"log"
	"time"
)

// Runner is the capture loop of one camera: it reads frames at a fixed
// interval and hands them to a DecodePool without waiting on decoding.
type Runner struct {
	source   FrameSource
	queue    *FrameQueue
	pool     *DecodePool
	interval time.Duration
	logger   *log.Logger
}

// NewRunner wires source into pool through queue.
func NewRunner(source FrameSource, queue *FrameQueue, pool *DecodePool, interval time.Duration, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{source: source, queue: queue, pool: pool, interval: interval, logger: logger}
}

// Run captures until ctx is cancelled or the source is exhausted. On
// exhaustion the frames already queued are still decoded before Run returns.
func (r *Runner) Run(ctx context.Context) {
	r.pool.Start(ctx)
	defer r.pool.Wait()
	defer r.queue.Close()

	r.logger.Println("Starting capture loop...")
	var ticker *time.Ticker
	if r.interval > 0 {
		ticker = time.NewTicker(r.interval)
		defer ticker.Stop()
	}

	for {
		if ctx.Err() != nil {
			r.logger.Printf("Capture loop shutting down (%d frames dropped)", r.queue.Dropped())
			return
		}

		frame, err := r.source.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			r.logger.Printf("Frame source exhausted (%d frames dropped)", r.queue.Dropped())
			return
		case err != nil:
			if ctx.Err() == nil {
				r.logger.Printf("Error reading frame: %v", err)
			}
		default:
			if !r.queue.Offer(frame) {
				r.logger.Printf("Decoder busy, dropped frame (%d total)", r.queue.Dropped())
			}
		}

		if ticker == nil {
			continue
		}
		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}
