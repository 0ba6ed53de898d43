package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// InsertTransactionOutputs stores the output rows of one transaction.
// Global indexes are assigned by the writer before insert.
func (t *Tx) InsertTransactionOutputs(ctx context.Context, txHash []byte, outputs []model.TxOutput) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("insert_transaction_outputs", err, started)
	}()

	if len(outputs) == 0 {
		return nil
	}

	const query = `
INSERT INTO outputs (global_index, tx_hash, idx_in_tx, commitment, stealth_key, amount, spent_by_key_image)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (tx_hash, idx_in_tx) DO NOTHING`

	batch := &pgx.Batch{}
	for _, out := range outputs {
		batch.Queue(query,
			out.GlobalIndex,
			txHash,
			out.IdxInTx,
			out.Commitment,
			out.StealthKey,
			out.Amount,
			out.SpentByKeyImage,
		)
	}

	if err = t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert transaction outputs: %w", err)
	}
	return nil
}

// MaxGlobalIndex returns the highest assigned output global index, or
// -1 when no indexed outputs exist. Read at startup and after healing
// to seed the writer's assignment counter.
func (r *Repository) MaxGlobalIndex(ctx context.Context) (idx int64, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("max_global_index", err, started)
	}()

	const query = `SELECT COALESCE(MAX(global_index), -1) FROM outputs`

	if err = r.pool.QueryRow(ctx, query).Scan(&idx); err != nil {
		return 0, fmt.Errorf("max global index: %w", err)
	}
	return idx, nil
}
