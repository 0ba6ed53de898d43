package ingest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope-backend/internal/codec"
	"github.com/ringscope/ringscope-backend/internal/model"
	"github.com/ringscope/ringscope-backend/internal/monero"
	"github.com/ringscope/ringscope-backend/pkg/safe"
)

// Fetcher pulls one raw block from the daemon and decodes it into the
// domain model. A transaction whose body is malformed is flagged and
// skipped rather than failing the block; the block row still records
// the full transaction count.
type Fetcher struct {
	source  BlockSource
	logger  *zap.Logger
	metrics PipelineMetrics
}

func NewFetcher(source BlockSource, logger *zap.Logger, metrics PipelineMetrics) *Fetcher {
	return &Fetcher{source: source, logger: logger, metrics: metrics}
}

// FetchDecode assembles the decoded block at the given height.
func (f *Fetcher) FetchDecode(ctx context.Context, height, tip int64) (*model.DecodedBlock, error) {
	scheduledAt := time.Now()

	raw, err := f.source.FetchBlock(ctx, height)
	if err != nil {
		f.metrics.ObserveError("fetch")
		return nil, err
	}

	blk, err := blockFromHeader(raw.Header, tip)
	if err != nil {
		f.metrics.ObserveError("decode")
		return nil, err
	}

	decoded := &model.DecodedBlock{
		Block:       blk,
		TipHeight:   tip,
		ScheduledAt: scheduledAt,
	}
	decoded.SkippedTxHashes = append(decoded.SkippedTxHashes, raw.MissedTxHashes...)
	for _, missed := range raw.MissedTxHashes {
		f.metrics.ObserveError("missing_tx")
		f.logger.Warn("transaction body unavailable, skipping",
			zap.Int64("height", height),
			zap.String("tx_hash", missed))
	}

	if len(raw.MinerTxJSON) > 0 {
		minerTx, err := codec.DecodeTransaction("", raw.MinerTxJSON)
		if err != nil {
			f.metrics.ObserveError("decode")
			f.logger.Warn("miner transaction undecodable, skipping",
				zap.Int64("height", height),
				zap.Error(err))
		} else {
			minerTx.Tx.BlockHeight = &blk.Height
			decoded.Txs = append(decoded.Txs, minerTx)
		}
	}

	for _, rawTx := range raw.Txs {
		tx, err := codec.DecodeTransaction(rawTx.HashHex, rawTx.JSON)
		if err != nil {
			var decodeErr *codec.DecodeError
			if !errors.As(err, &decodeErr) {
				return nil, err
			}
			f.metrics.ObserveError("decode")
			f.logger.Warn("transaction undecodable, skipping",
				zap.Int64("height", height),
				zap.String("tx_hash", rawTx.HashHex),
				zap.Error(err))
			decoded.SkippedTxHashes = append(decoded.SkippedTxHashes, rawTx.HashHex)
			continue
		}
		tx.Tx.BlockHeight = &blk.Height
		decoded.Txs = append(decoded.Txs, tx)
	}

	return decoded, nil
}

func blockFromHeader(h monero.BlockHeader, tip int64) (model.Block, error) {
	hash, err := hex.DecodeString(h.Hash)
	if err != nil {
		return model.Block{}, fmt.Errorf("decode block hash %q: %w", h.Hash, err)
	}
	prevHash, err := hex.DecodeString(h.PrevHash)
	if err != nil {
		return model.Block{}, fmt.Errorf("decode prev hash %q: %w", h.PrevHash, err)
	}

	confirmations := tip - h.Height + 1
	if confirmations < 0 {
		confirmations = 0
	}

	return model.Block{
		Height:        h.Height,
		Hash:          hash,
		PrevHash:      prevHash,
		Timestamp:     time.Unix(h.Timestamp, 0).UTC(),
		SizeBytes:     safe.Int32(h.Size()),
		MajorVersion:  h.MajorVersion,
		MinorVersion:  h.MinorVersion,
		Nonce:         h.Nonce,
		TxCount:       int32(h.NumTxes) + 1,
		Reward:        h.Reward,
		Confirmations: safe.Int32(confirmations),
	}, nil
}
