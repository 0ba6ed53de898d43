package postgres

import (
	"context"
	"fmt"
	"time"
)

// HealFrom rewinds stored history above the fork height in a single
// transaction: transactions confirmed only on the losing branch are
// requeued into the pool, their blocks and dependent rows are
// deleted, observed tips above the fork are dropped, and the
// checkpoint rolls back. Heights at or below the fork are untouched.
// Returns the number of blocks removed.
func (r *Repository) HealFrom(ctx context.Context, forkHeight int64) (removed int64, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("heal_from", err, started)
	}()

	pgTx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin heal tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = pgTx.Rollback(ctx)
		}
	}()

	// Losing-branch transactions go back to the pool by hash only;
	// their fee data is not assumed to survive the reorg.
	const requeue = `
INSERT INTO mempool_txs (hash, first_seen, last_seen, fee_rate)
SELECT hash, now(), now(), 0
FROM txs
WHERE block_height > $1
ON CONFLICT (hash) DO NOTHING`
	if _, err = pgTx.Exec(ctx, requeue, forkHeight); err != nil {
		return 0, fmt.Errorf("requeue orphaned txs: %w", err)
	}

	const deleteBlocks = `DELETE FROM blocks WHERE height > $1`
	tag, err := pgTx.Exec(ctx, deleteBlocks, forkHeight)
	if err != nil {
		return 0, fmt.Errorf("delete orphaned blocks: %w", err)
	}
	removed = tag.RowsAffected()

	const deleteTips = `DELETE FROM chain_tips WHERE height > $1`
	if _, err = pgTx.Exec(ctx, deleteTips, forkHeight); err != nil {
		return 0, fmt.Errorf("delete orphaned tips: %w", err)
	}

	const rollback = `
UPDATE ingestor_checkpoint
SET ingested_height = LEAST(ingested_height, $1), updated_at = now()`
	if _, err = pgTx.Exec(ctx, rollback, forkHeight); err != nil {
		return 0, fmt.Errorf("roll back checkpoint: %w", err)
	}

	if err = pgTx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit heal tx: %w", err)
	}
	return removed, nil
}
