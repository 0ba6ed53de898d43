package postgres

import (
	"context"
	"fmt"
	"time"
)

// CheckpointMismatchError reports checkpoint state inconsistent with
// the stored chain. Requires manual reconciliation; ingestion must
// not start over it.
type CheckpointMismatchError struct {
	IngestedHeight int64
	MaxBlockHeight int64
}

func (e *CheckpointMismatchError) Error() string {
	return fmt.Sprintf(
		"checkpoint ingested_height %d does not match stored max block height %d",
		e.IngestedHeight, e.MaxBlockHeight,
	)
}

// VerifyCheckpoint cross-checks the checkpoint row against stored
// blocks at startup. An empty store with a -1 checkpoint is valid.
func (r *Repository) VerifyCheckpoint(ctx context.Context) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("verify_checkpoint", err, started)
	}()

	cp, err := r.Checkpoint(ctx)
	if err != nil {
		return err
	}

	const query = `SELECT COALESCE(MAX(height), -1) FROM blocks`
	var maxHeight int64
	if err = r.pool.QueryRow(ctx, query).Scan(&maxHeight); err != nil {
		return fmt.Errorf("max block height: %w", err)
	}

	if cp.IngestedHeight != maxHeight {
		return &CheckpointMismatchError{
			IngestedHeight: cp.IngestedHeight,
			MaxBlockHeight: maxHeight,
		}
	}
	return nil
}
