package ingest

import (
	"context"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// confirmationRefreshMargin widens the trailing refresh window past
// the finality window so late reorgs never leave a non-final block
// with a stale count.
const confirmationRefreshMargin = 16

// Writer is the single consumer of the ordering buffer. It applies
// one block per database transaction in strict height order, checks
// each block against stored history before writing, and owns global
// output index assignment.
type Writer struct {
	store          Store
	sentinel       *Sentinel
	logger         *zap.Logger
	metrics        PipelineMetrics
	finalityWindow int64
	bootstrap      bool

	nextGlobalIndex int64
}

func NewWriter(
	store Store,
	sentinel *Sentinel,
	finalityWindow int64,
	bootstrap bool,
	logger *zap.Logger,
	metrics PipelineMetrics,
) *Writer {
	return &Writer{
		store:           store,
		sentinel:        sentinel,
		logger:          logger,
		metrics:         metrics,
		finalityWindow:  finalityWindow,
		bootstrap:       bootstrap,
		nextGlobalIndex: -1,
	}
}

// Drain consumes count blocks from the buffer in height order and
// persists each. A detected divergence heals and returns a
// reorgHealedError so the batch restarts from the rewound checkpoint.
func (w *Writer) Drain(ctx context.Context, buf *orderBuffer, count int64, finalizedHeight int64) error {
	for i := int64(0); i < count; i++ {
		blk, err := buf.Take(ctx)
		if err != nil {
			return err
		}
		w.metrics.SetQueueDepth("order_buffer", buf.Depth())

		diverged, err := w.sentinel.Diverged(ctx, blk.Block.Height, blk.Block.PrevHash)
		if err != nil {
			return err
		}
		if diverged {
			fork, err := w.sentinel.Heal(ctx, blk.Block.Height, finalizedHeight)
			if err != nil {
				return err
			}
			// Assigned indexes above the fork are gone.
			w.nextGlobalIndex = -1
			return &reorgHealedError{ForkHeight: fork, Depth: blk.Block.Height - fork}
		}

		if err := w.persist(ctx, blk); err != nil {
			w.metrics.ObserveBlockCommit(err, blk.ScheduledAt)
			return err
		}
		w.metrics.ObserveBlockCommit(nil, blk.ScheduledAt)
	}
	return nil
}

// persist applies one block as a single all-or-nothing transaction.
func (w *Writer) persist(ctx context.Context, blk *model.DecodedBlock) error {
	if err := w.seedGlobalIndex(ctx); err != nil {
		return err
	}

	tip := blk.TipHeight
	block := blk.Block
	block.IsFinal = tip-block.Height >= w.finalityWindow
	block.AnalyticsPending = w.bootstrap

	finalized := tip - w.finalityWindow
	if finalized > block.Height {
		finalized = block.Height
	}
	if finalized < -1 {
		finalized = -1
	}

	startIndex := w.nextGlobalIndex
	err := w.store.WithinBlockTx(ctx, func(tx BlockTx) error {
		if err := tx.InsertBlock(ctx, block); err != nil {
			return err
		}

		txs := make([]model.Transaction, 0, len(blk.Txs))
		txHashes := make([][]byte, 0, len(blk.Txs))
		for _, d := range blk.Txs {
			txs = append(txs, d.Tx)
			txHashes = append(txHashes, d.Tx.Hash)
		}
		if err := tx.InsertTransactions(ctx, txs); err != nil {
			return err
		}

		nextIndex := startIndex
		for _, d := range blk.Txs {
			outputs := make([]model.TxOutput, len(d.Outputs))
			copy(outputs, d.Outputs)
			for i := range outputs {
				idx := nextIndex
				outputs[i].GlobalIndex = &idx
				nextIndex++
			}
			if err := tx.InsertTransactionOutputs(ctx, d.Tx.Hash, outputs); err != nil {
				return err
			}

			if err := tx.InsertTransactionInputs(ctx, d.Tx.Hash, d.Inputs); err != nil {
				return err
			}
			for _, in := range d.Inputs {
				if err := tx.InsertRings(ctx, d.Tx.Hash, in.Idx, in.Ring); err != nil {
					return err
				}
				// A one-member ring is a definitive spend of that
				// output. Larger rings never reveal the true spend.
				if len(in.Ring) == 1 && in.KeyImage != nil {
					if err := tx.MarkOutputSpent(ctx, in.Ring[0].GlobalIndex, in.KeyImage); err != nil {
						return err
					}
				}
			}
		}

		if err := tx.ResolveRings(ctx, txHashes); err != nil {
			return err
		}
		if err := tx.EvictMempool(ctx, txHashes); err != nil {
			return err
		}
		if err := tx.RecordChainTip(ctx, model.ChainTip{
			Height:   block.Height,
			Hash:     block.Hash,
			PrevHash: block.PrevHash,
		}); err != nil {
			return err
		}

		if !w.bootstrap {
			if err := tx.ComputeSoftFacts(ctx, block.Height); err != nil {
				return err
			}
		}

		refreshWindow := w.finalityWindow + confirmationRefreshMargin
		if err := tx.RefreshConfirmations(ctx, tip, refreshWindow, w.finalityWindow); err != nil {
			return err
		}
		return tx.SetCheckpoint(ctx, block.Height, finalized)
	})
	if err != nil {
		return fmt.Errorf("persist block %d: %w", block.Height, err)
	}

	committed := int64(0)
	for _, d := range blk.Txs {
		committed += int64(len(d.Outputs))
	}
	w.nextGlobalIndex = startIndex + committed

	w.logger.Debug("block committed",
		zap.Int64("height", block.Height),
		zap.String("hash", hex.EncodeToString(block.Hash)),
		zap.Int("transactions", len(blk.Txs)),
		zap.Int("skipped_txs", len(blk.SkippedTxHashes)))
	return nil
}

// seedGlobalIndex loads the assignment counter from the store when it
// is unknown, at startup and after a heal.
func (w *Writer) seedGlobalIndex(ctx context.Context) error {
	if w.nextGlobalIndex >= 0 {
		return nil
	}
	max, err := w.store.MaxGlobalIndex(ctx)
	if err != nil {
		return fmt.Errorf("seed global output index: %w", err)
	}
	w.nextGlobalIndex = max + 1
	return nil
}
