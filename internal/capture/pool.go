package capture

import (
	"context"
	"image"
	"log"
	"sync"

	"wareeye/internal/decode"
)

// FrameDecoder is satisfied by *decode.Chain.
type FrameDecoder interface {
	Decode(ctx context.Context, frame image.Image) decode.Result
}

// Submitter is satisfied by *submit.Client.
type Submitter interface {
	SubmitContext(ctx context.Context, text string) *bool
}

// Outcome is what one frame produced, reported to the pool's observer.
type Outcome struct {
	Result   decode.Result
	Verdicts map[string]*bool
}

// DecodePool runs the decoder chain on queued frames and submits every
// readable code.
type DecodePool struct {
	size    int
	queue   *FrameQueue
	decoder FrameDecoder
	submit  Submitter
	observe func(Outcome)
	logger  *log.Logger
	wg      sync.WaitGroup
}

// NewDecodePool creates a pool of size workers draining queue. observe may be nil.
func NewDecodePool(size int, queue *FrameQueue, decoder FrameDecoder, submit Submitter, observe func(Outcome), logger *log.Logger) *DecodePool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &DecodePool{
		size:    size,
		queue:   queue,
		decoder: decoder,
		submit:  submit,
		observe: observe,
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (p *DecodePool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (p *DecodePool) Wait() {
	p.wg.Wait()
}

func (p *DecodePool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	p.logger.Printf("Decode worker %d started", id)
	for {
		select {
		case frame, ok := <-p.queue.Frames():
			if !ok {
				p.logger.Printf("Decode worker %d finished", id)
				return
			}
			p.process(ctx, frame)
		case <-ctx.Done():
			p.logger.Printf("Decode worker %d shutting down", id)
			return
		}
	}
}

func (p *DecodePool) process(ctx context.Context, frame image.Image) {
	res := p.decoder.Decode(ctx, frame)
	out := Outcome{Result: res, Verdicts: map[string]*bool{}}
	for _, text := range res.Submittable() {
		verdict := p.submit.SubmitContext(ctx, text)
		out.Verdicts[text] = verdict
		if verdict != nil {
			p.logger.Printf("Label %s valid=%t", text, *verdict)
		}
	}
	if p.observe != nil {
		p.observe(out)
	}
}
