package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// InsertBlock stores one block row. A conflicting height from an
// idempotent rerun is left untouched.
func (t *Tx) InsertBlock(ctx context.Context, block model.Block) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("insert_block", err, started)
	}()

	const query = `
INSERT INTO blocks (
	height,
	hash,
	prev_hash,
	timestamp,
	size_bytes,
	major_version,
	minor_version,
	nonce,
	tx_count,
	reward,
	confirmations,
	is_final,
	analytics_pending
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (height) DO NOTHING`

	_, err = t.tx.Exec(ctx, query,
		block.Height,
		block.Hash,
		block.PrevHash,
		block.Timestamp,
		block.SizeBytes,
		block.MajorVersion,
		block.MinorVersion,
		block.Nonce,
		block.TxCount,
		block.Reward,
		block.Confirmations,
		block.IsFinal,
		block.AnalyticsPending,
	)
	if err != nil {
		return fmt.Errorf("insert block %d: %w", block.Height, err)
	}
	return nil
}
