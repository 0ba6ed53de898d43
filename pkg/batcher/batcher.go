// Package batcher coalesces items into rate-limited batch writes.
package batcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Sink receives a full batch. Errors are logged, not returned to
// producers; items in a failed batch are dropped.
type Sink[T any] func(context.Context, []T) error

// Batcher accumulates items and hands them to the sink once the batch
// is full or the flush interval elapses, whichever comes first. Stop
// drains whatever is still queued before returning.
type Batcher[T any] struct {
	sink     Sink[T]
	queue    chan T
	size     int
	interval time.Duration
	rl       ratelimit.Limiter
	logger   *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func New[T any](logger *zap.Logger, sink Sink[T], size int, interval time.Duration, rps int) *Batcher[T] {
	return &Batcher[T]{
		sink:     sink,
		queue:    make(chan T, size*2),
		size:     size,
		interval: interval,
		rl:       ratelimit.New(rps),
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background flush loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	go b.loop(ctx)
}

// Stop terminates the loop after draining queued items. Safe to call
// more than once.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
}

// Add queues an item. It does not block past ctx; once Stop has been
// called it reports context.Canceled.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return context.Canceled
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case b.queue <- item:
		return nil
	}
}

func (b *Batcher[T]) loop(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	pending := make([]T, 0, b.size)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		b.rl.Take()
		if err := b.sink(ctx, pending); err != nil {
			b.logger.Error("batch flush failed", zap.Int("size", len(pending)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(pending)))
		}
		pending = pending[:0]
	}

	drain := func() {
		for {
			select {
			case item := <-b.queue:
				pending = append(pending, item)
				if len(pending) >= b.size {
					flush()
				}
			default:
				flush()
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return

		case <-b.stop:
			drain()
			return

		case item := <-b.queue:
			pending = append(pending, item)
			if len(pending) >= b.size {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}
