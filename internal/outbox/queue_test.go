package outbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pms/internal/core/id"
)

type countingProcessor struct {
	mu   sync.Mutex
	seen []id.ID
	done chan struct{}
	want int
}

func (p *countingProcessor) Process(ctx context.Context, eventID id.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, eventID)
	if len(p.seen) == p.want {
		close(p.done)
	}
	return nil
}

func TestPool_ProcessesSubmittedEntries(t *testing.T) {
	proc := &countingProcessor{done: make(chan struct{}), want: 3}
	pool := NewPool(2, 16, proc)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 3; i++ {
		handle, err := pool.Submit(ctx, id.New())
		require.NoError(t, err)
		assert.NotEmpty(t, handle)
	}

	select {
	case <-proc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not process submitted entries in time")
	}

	cancel()
	pool.Wait()
	assert.Len(t, proc.seen, 3)
}

func TestPool_SubmitFailsWhenFull(t *testing.T) {
	proc := &countingProcessor{done: make(chan struct{}), want: 0}
	pool := NewPool(1, 1, proc)
	// Not started: nothing drains the channel.

	_, err := pool.Submit(t.Context(), id.New())
	require.NoError(t, err)

	_, err = pool.Submit(t.Context(), id.New())
	assert.Error(t, err)
}

func TestPool_DrainsBufferOnShutdown(t *testing.T) {
	proc := &countingProcessor{done: make(chan struct{}), want: 3}
	pool := NewPool(1, 8, proc)

	// Buffer the submissions before any worker runs, then start with an
	// already-cancelled context: the worker must still drain the buffer
	// before exiting.
	for i := 0; i < 3; i++ {
		_, err := pool.Submit(t.Context(), id.New())
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	pool.Start(ctx)
	pool.Wait()

	assert.Len(t, proc.seen, 3)
}
