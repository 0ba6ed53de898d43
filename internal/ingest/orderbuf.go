package ingest

import (
	"context"
	"sync"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// orderBuffer hands decoded blocks to the writer in strict height
// order while fetch workers complete out of order. It is the only
// synchronization point between workers and the writer.
type orderBuffer struct {
	mu       sync.Mutex
	pending  map[int64]*model.DecodedBlock
	next     int64
	capacity int
	changed  chan struct{}
}

func newOrderBuffer(capacity int) *orderBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &orderBuffer{
		pending:  make(map[int64]*model.DecodedBlock),
		capacity: capacity,
		changed:  make(chan struct{}),
	}
}

// Reset prepares the buffer for a new batch starting at next.
func (b *orderBuffer) Reset(next int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = make(map[int64]*model.DecodedBlock)
	b.next = next
	b.broadcast()
}

// Put stores one decoded block, blocking while the buffer is full.
// The next expected height is always accepted so the writer can
// drain.
func (b *orderBuffer) Put(ctx context.Context, blk *model.DecodedBlock) error {
	for {
		b.mu.Lock()
		if len(b.pending) < b.capacity || blk.Block.Height == b.next {
			b.pending[blk.Block.Height] = blk
			b.broadcast()
			b.mu.Unlock()
			return nil
		}
		wait := b.changed
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

// Take blocks until the next expected height is buffered and returns
// it, advancing the expectation.
func (b *orderBuffer) Take(ctx context.Context) (*model.DecodedBlock, error) {
	for {
		b.mu.Lock()
		if blk, ok := b.pending[b.next]; ok {
			delete(b.pending, b.next)
			b.next++
			b.broadcast()
			b.mu.Unlock()
			return blk, nil
		}
		wait := b.changed
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// Depth reports the number of buffered blocks.
func (b *orderBuffer) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *orderBuffer) broadcast() {
	close(b.changed)
	b.changed = make(chan struct{})
}
