package postgres

import (
	"context"
	"fmt"
	"time"
)

// EvictMempool removes pool rows for transactions confirmed by the
// block being written. Runs inside the block transaction so no state
// exists where a confirmed transaction still looks pending.
func (t *Tx) EvictMempool(ctx context.Context, txHashes [][]byte) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("evict_mempool", err, started)
	}()

	if len(txHashes) == 0 {
		return nil
	}

	const query = `DELETE FROM mempool_txs WHERE hash = ANY($1)`

	if _, err = t.tx.Exec(ctx, query, txHashes); err != nil {
		return fmt.Errorf("evict mempool: %w", err)
	}
	return nil
}
