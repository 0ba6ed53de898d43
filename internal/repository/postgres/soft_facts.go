package postgres

import (
	"context"
	"fmt"
	"time"
)

// ComputeSoftFacts aggregates per-block facts from the rows already
// written in this transaction and clears the pending flag. Called
// inline in steady state and by the backfill pass for blocks ingested
// under bootstrap mode.
func (t *Tx) ComputeSoftFacts(ctx context.Context, height int64) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("compute_soft_facts", err, started)
	}()

	const query = `
INSERT INTO soft_facts (height, tx_count, total_fees, total_outputs, avg_ring_size)
SELECT
	b.height,
	b.tx_count,
	COALESCE(SUM(tx.fee), 0),
	COALESCE(SUM(tx.num_outputs), 0)::int,
	COALESCE(AVG(NULLIF(i.ring_size, 0)), 0)
FROM blocks b
LEFT JOIN txs tx ON tx.block_height = b.height
LEFT JOIN tx_inputs i ON i.tx_hash = tx.hash
WHERE b.height = $1
GROUP BY b.height, b.tx_count
ON CONFLICT (height) DO UPDATE SET
	tx_count      = EXCLUDED.tx_count,
	total_fees    = EXCLUDED.total_fees,
	total_outputs = EXCLUDED.total_outputs,
	avg_ring_size = EXCLUDED.avg_ring_size,
	computed_at   = now()`

	if _, err = t.tx.Exec(ctx, query, height); err != nil {
		return fmt.Errorf("compute soft facts %d: %w", height, err)
	}

	const clear = `UPDATE blocks SET analytics_pending = FALSE WHERE height = $1`
	if _, err = t.tx.Exec(ctx, clear, height); err != nil {
		return fmt.Errorf("clear analytics pending %d: %w", height, err)
	}
	return nil
}

// BackfillSoftFacts computes facts for one block ingested under
// bootstrap mode, in its own transaction.
func (r *Repository) BackfillSoftFacts(ctx context.Context, height int64) error {
	return r.WithinBlockTx(ctx, func(tx *Tx) error {
		return tx.ComputeSoftFacts(ctx, height)
	})
}

// PendingAnalyticsHeights lists blocks flagged for the backfill pass,
// lowest first.
func (r *Repository) PendingAnalyticsHeights(ctx context.Context, limit int) (heights []int64, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("pending_analytics_heights", err, started)
	}()

	const query = `
SELECT height FROM blocks
WHERE analytics_pending
ORDER BY height
LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending analytics heights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h int64
		if err = rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan pending height: %w", err)
		}
		heights = append(heights, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending heights: %w", err)
	}
	return heights, nil
}
