package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// InsertTransactions stores the confirmed transaction rows of one
// block. Conflicts from idempotent reruns are left untouched.
func (t *Tx) InsertTransactions(ctx context.Context, txs []model.Transaction) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("insert_transactions", err, started)
	}()

	if len(txs) == 0 {
		return nil
	}

	const query = `
INSERT INTO txs (
	hash,
	block_height,
	in_mempool,
	fee,
	size_bytes,
	version,
	unlock_time,
	extra,
	rct_type,
	proof_type,
	proof_bytes,
	num_inputs,
	num_outputs
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (hash) DO UPDATE SET
	block_height = EXCLUDED.block_height,
	in_mempool   = FALSE`

	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(query,
			tx.Hash,
			tx.BlockHeight,
			false,
			tx.Fee,
			tx.SizeBytes,
			tx.Version,
			tx.UnlockTime,
			tx.Extra,
			tx.RctType,
			tx.ProofType,
			tx.ProofBytes,
			tx.NumInputs,
			tx.NumOutputs,
		)
	}

	if err = t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	return nil
}
