package monero

import (
	"context"
	"fmt"
	"sync"
)

const headerPrefetchSpan = 512

// HeaderFetcher serves block headers out of a bulk-prefetched buffer
// when the daemon supports get_block_headers_range, and falls back to
// single calls otherwise. Safe for concurrent use.
type HeaderFetcher struct {
	client *Client
	bulk   bool

	mu     sync.Mutex
	buffer map[int64]BlockHeader
}

func NewHeaderFetcher(client *Client, caps Capabilities) *HeaderFetcher {
	return &HeaderFetcher{
		client: client,
		bulk:   caps.HeadersRange,
		buffer: make(map[int64]BlockHeader),
	}
}

// Header returns the header at the given height, prefetching a span
// of headers around it when bulk fetches are available.
func (f *HeaderFetcher) Header(ctx context.Context, height int64) (BlockHeader, error) {
	if !f.bulk {
		return f.client.GetBlockHeaderByHeight(ctx, height)
	}

	f.mu.Lock()
	h, ok := f.buffer[height]
	f.mu.Unlock()
	if ok {
		return h, nil
	}

	if err := f.prefetch(ctx, height); err != nil {
		// The range endpoint can reject spans past the tip even when
		// the single height exists.
		return f.client.GetBlockHeaderByHeight(ctx, height)
	}

	f.mu.Lock()
	h, ok = f.buffer[height]
	f.mu.Unlock()
	if !ok {
		return BlockHeader{}, fmt.Errorf("header %d missing from range response", height)
	}
	return h, nil
}

// Prime fills the buffer for the upcoming window of heights.
func (f *HeaderFetcher) Prime(ctx context.Context, start, end int64) error {
	if !f.bulk || end < start {
		return nil
	}
	headers, err := f.client.GetBlockHeadersRange(ctx, start, end)
	if err != nil {
		return err
	}
	f.store(headers)
	return nil
}

// Invalidate drops any buffered headers at or above the given height.
// Called after a divergence so healed heights are re-read from the
// daemon.
func (f *HeaderFetcher) Invalidate(from int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h := range f.buffer {
		if h >= from {
			delete(f.buffer, h)
		}
	}
}

func (f *HeaderFetcher) prefetch(ctx context.Context, height int64) error {
	tip, err := f.client.TipHeight(ctx)
	if err != nil {
		return err
	}
	end := height + headerPrefetchSpan - 1
	if end > tip {
		end = tip
	}
	if end < height {
		return fmt.Errorf("height %d beyond tip %d", height, tip)
	}
	headers, err := f.client.GetBlockHeadersRange(ctx, height, end)
	if err != nil {
		return err
	}
	f.store(headers)
	return nil
}

func (f *HeaderFetcher) store(headers []BlockHeader) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Bound stale entries before inserting the fresh span.
	if len(f.buffer) > headerPrefetchSpan*4 {
		f.buffer = make(map[int64]BlockHeader, len(headers))
	}
	for _, h := range headers {
		f.buffer[h.Height] = h
	}
}
