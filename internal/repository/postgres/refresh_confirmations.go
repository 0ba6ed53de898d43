package postgres

import (
	"context"
	"fmt"
	"time"
)

// RefreshConfirmations recomputes confirmation counts and finality
// for a trailing window of heights against the given tip. Older
// final rows keep their last counts.
func (t *Tx) RefreshConfirmations(ctx context.Context, tip int64, window int64, finalityWindow int64) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("refresh_confirmations", err, started)
	}()

	const query = `
UPDATE blocks
SET confirmations = $1 - height + 1,
    is_final      = height <= $1 - $3
WHERE height > $1 - $2 AND height <= $1`

	if _, err = t.tx.Exec(ctx, query, tip, window, finalityWindow); err != nil {
		return fmt.Errorf("refresh confirmations: %w", err)
	}
	return nil
}
