package outbox

import (
	"context"
	"fmt"
	"sync"

	"pms/internal/core/id"
	"pms/pkg/logger"
)

// Processor consumes submitted entry IDs. Implemented by Worker.
type Processor interface {
	Process(ctx context.Context, eventID id.ID) error
}

// Pool is a channel-backed in-process execution facility.
//
// Submission is accepted only while buffer space is available; a full or
// stopped pool returns an error and the entry stays pending for the sweeper.
// Durability lives in the ledger, not here: losing the channel on crash
// loses nothing, because unprocessed entries are redispatched by the sweep.
type Pool struct {
	ch      chan id.ID
	workers int
	proc    Processor

	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool creates a pool with the given worker count and submission buffer.
func NewPool(workers, buffer int, proc Processor) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &Pool{
		ch:      make(chan id.ID, buffer),
		workers: workers,
		proc:    proc,
	}
}

// Start launches the worker goroutines. They drain the channel until ctx is
// cancelled. Start is idempotent.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.run(ctx, i)
		}
	})
}

func (p *Pool) run(ctx context.Context, n int) {
	defer p.wg.Done()
	log := logger.Default().WithComponent("outbox-pool").With("worker", n)

	for {
		select {
		case <-ctx.Done():
			// Finish what was already accepted. A submission left in the
			// buffer would sit published until the sweeper redelivers it.
			p.drain(context.WithoutCancel(ctx), log)
			return
		case eventID := <-p.ch:
			// Errors are already recorded on the ledger entry by the
			// worker; the pool only logs them.
			if err := p.proc.Process(ctx, eventID); err != nil {
				log.Warnw("event processing failed", "event_id", eventID, "error", err)
			}
		}
	}
}

func (p *Pool) drain(ctx context.Context, log *logger.Logger) {
	for {
		select {
		case eventID := <-p.ch:
			if err := p.proc.Process(ctx, eventID); err != nil {
				log.Warnw("event processing failed", "event_id", eventID, "error", err)
			}
		default:
			return
		}
	}
}

// Wait blocks until all workers have exited (after ctx cancellation).
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Submit places an entry id on the channel without blocking. Returns a job
// handle for traceability.
func (p *Pool) Submit(ctx context.Context, eventID id.ID) (string, error) {
	select {
	case p.ch <- eventID:
		return "pool:" + id.New().String(), nil
	default:
		return "", fmt.Errorf("outbox pool queue is full")
	}
}
