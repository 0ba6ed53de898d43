package postgres

import (
	"context"
	"fmt"
	"time"
)

// MarkOutputSpent records a definitive spend of the output at the
// given global index. Only ring size one admits one; larger rings
// never reveal the true spend.
func (t *Tx) MarkOutputSpent(ctx context.Context, globalIndex int64, keyImage []byte) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("mark_output_spent", err, started)
	}()

	const query = `
UPDATE outputs
SET spent_by_key_image = $2
WHERE global_index = $1 AND spent_by_key_image IS NULL`

	if _, err = t.tx.Exec(ctx, query, globalIndex, keyImage); err != nil {
		return fmt.Errorf("mark output spent: %w", err)
	}
	return nil
}
