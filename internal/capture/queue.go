package capture

import (
	"image"
	"sync"
	"sync/atomic"
)

// FrameQueue is a bounded hand-off between the reader and the decoders. When
// it is full the offered frame is dropped rather than blocking the reader.
type FrameQueue struct {
	ch      chan image.Image
	dropped atomic.Int64
	once    sync.Once
}

// NewFrameQueue creates a queue holding up to size frames.
func NewFrameQueue(size int) *FrameQueue {
	if size < 1 {
		size = 1
	}
	return &FrameQueue{ch: make(chan image.Image, size)}
}

// Offer enqueues img, or drops it and returns false when the queue is full.
func (q *FrameQueue) Offer(img image.Image) bool {
	select {
	case q.ch <- img:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Frames is the receive side of the queue.
func (q *FrameQueue) Frames() <-chan image.Image {
	return q.ch
}

// Dropped returns how many frames were discarded so far.
func (q *FrameQueue) Dropped() int64 {
	return q.dropped.Load()
}

// Close tells consumers no more frames will come. Only the producer may call it.
func (q *FrameQueue) Close() {
	q.once.Do(func() { close(q.ch) })
}
