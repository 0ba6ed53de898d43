package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// Checkpoint reads the single checkpoint row. Heights of -1 mean
// nothing has been ingested yet.
func (r *Repository) Checkpoint(ctx context.Context) (cp model.Checkpoint, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("checkpoint", err, started)
	}()

	const query = `
SELECT ingested_height, finalized_height, updated_at
FROM ingestor_checkpoint`

	err = r.pool.QueryRow(ctx, query).Scan(&cp.IngestedHeight, &cp.FinalizedHeight, &cp.UpdatedAt)
	if err != nil {
		return model.Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}
	return cp, nil
}

// SetCheckpoint advances the checkpoint within the enclosing block
// transaction so progress and data are committed together.
func (t *Tx) SetCheckpoint(ctx context.Context, ingested, finalized int64) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("set_checkpoint", err, started)
	}()

	const query = `
UPDATE ingestor_checkpoint
SET ingested_height = $1, finalized_height = $2, updated_at = now()`

	if _, err = t.tx.Exec(ctx, query, ingested, finalized); err != nil {
		return fmt.Errorf("set checkpoint: %w", err)
	}
	return nil
}
