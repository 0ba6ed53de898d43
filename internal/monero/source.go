package monero

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ringscope/ringscope-backend/internal/codec"
)

// RawTx pairs a transaction hash with its daemon-decoded JSON body.
type RawTx struct {
	HashHex string
	JSON    []byte
}

// RawBlock carries everything the pipeline needs to decode one block:
// the header, the block body JSON, the miner transaction, and the
// bodies of all pool transactions in the block. MissedTxHashes lists
// transactions the daemon could not serve even after a refetch.
type RawBlock struct {
	Header         BlockHeader
	BlockJSON      []byte
	MinerTxJSON    json.RawMessage
	Txs            []RawTx
	MissedTxHashes []string
}

// Source fetches complete raw blocks from one daemon.
type Source struct {
	client  *Client
	headers *HeaderFetcher
}

func NewSource(client *Client, headers *HeaderFetcher) *Source {
	return &Source{client: client, headers: headers}
}

// TipHeight reports the daemon's current chain tip.
func (s *Source) TipHeight(ctx context.Context) (int64, error) {
	return s.client.TipHeight(ctx)
}

// Header fetches the block header at the given height.
func (s *Source) Header(ctx context.Context, height int64) (BlockHeader, error) {
	return s.headers.Header(ctx, height)
}

// PrimeHeaders prefetches headers for the upcoming height window.
func (s *Source) PrimeHeaders(ctx context.Context, start, end int64) error {
	return s.headers.Prime(ctx, start, end)
}

// InvalidateFrom drops cached headers at or above the given height.
func (s *Source) InvalidateFrom(height int64) {
	s.headers.Invalidate(height)
}

// FetchBlock assembles the raw block at the given height. Missing
// transactions are refetched once; hashes still missing after that
// are reported in MissedTxHashes rather than failing the block.
func (s *Source) FetchBlock(ctx context.Context, height int64) (RawBlock, error) {
	header, err := s.headers.Header(ctx, height)
	if err != nil {
		return RawBlock{}, fmt.Errorf("fetch header %d: %w", height, err)
	}

	block, err := s.client.GetBlockByHeight(ctx, height)
	if err != nil {
		return RawBlock{}, fmt.Errorf("fetch block %d: %w", height, err)
	}

	body, err := codec.DecodeBlockBody([]byte(block.JSON))
	if err != nil {
		return RawBlock{}, fmt.Errorf("decode block body %d: %w", height, err)
	}

	raw := RawBlock{
		Header:      header,
		BlockJSON:   []byte(block.JSON),
		MinerTxJSON: body.MinerTx,
	}
	if len(body.TxHashes) == 0 {
		return raw, nil
	}

	entries, missed, err := s.client.GetTransactions(ctx, body.TxHashes)
	if err != nil {
		return RawBlock{}, fmt.Errorf("fetch txs of block %d: %w", height, err)
	}
	if len(missed) > 0 {
		retried, stillMissed, err := s.client.GetTransactions(ctx, missed)
		if err != nil {
			return RawBlock{}, fmt.Errorf("refetch txs of block %d: %w", height, err)
		}
		entries = append(entries, retried...)
		raw.MissedTxHashes = stillMissed
	}

	byHash := make(map[string][]byte, len(entries))
	for _, e := range entries {
		byHash[e.TxHash] = []byte(e.AsJSON)
	}

	// Preserve the in-block ordering regardless of response order.
	raw.Txs = make([]RawTx, 0, len(byHash))
	for _, h := range body.TxHashes {
		asJSON, ok := byHash[h]
		if !ok {
			continue
		}
		raw.Txs = append(raw.Txs, RawTx{HashHex: h, JSON: asJSON})
	}
	return raw, nil
}
