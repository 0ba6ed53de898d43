package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// RecordChainTip stores the observed tip row for a committed height.
func (t *Tx) RecordChainTip(ctx context.Context, tip model.ChainTip) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("record_chain_tip", err, started)
	}()

	const query = `
INSERT INTO chain_tips (height, hash, prev_hash)
VALUES ($1, $2, $3)
ON CONFLICT (height) DO UPDATE SET hash = EXCLUDED.hash, prev_hash = EXCLUDED.prev_hash`

	if _, err = t.tx.Exec(ctx, query, tip.Height, tip.Hash, tip.PrevHash); err != nil {
		return fmt.Errorf("record chain tip %d: %w", tip.Height, err)
	}
	return nil
}
