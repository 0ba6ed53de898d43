package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// UpsertMempoolTxs records pool observations. A hash already
// confirmed in a block is skipped so the pool table never shadows
// ingested history.
func (r *Repository) UpsertMempoolTxs(ctx context.Context, txs []model.MempoolTx) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("upsert_mempool_txs", err, started)
	}()

	if len(txs) == 0 {
		return nil
	}

	const query = `
INSERT INTO mempool_txs (hash, first_seen, last_seen, fee_rate, relay_origin)
SELECT $1, $2, $3, $4, $5
WHERE NOT EXISTS (
	SELECT 1 FROM txs WHERE txs.hash = $1 AND txs.block_height IS NOT NULL
)
ON CONFLICT (hash) DO UPDATE SET
	last_seen = EXCLUDED.last_seen,
	fee_rate  = EXCLUDED.fee_rate`

	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(query, tx.Hash, tx.FirstSeen, tx.LastSeen, tx.FeeRate, tx.RelayOrigin)
	}

	if err = r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert mempool txs: %w", err)
	}
	return nil
}
