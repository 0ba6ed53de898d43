package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// InsertRings stores the ring member rows of one transaction input.
func (t *Tx) InsertRings(ctx context.Context, txHash []byte, inputIdx int32, members []model.RingMember) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("insert_rings", err, started)
	}()

	if len(members) == 0 {
		return nil
	}

	const query = `
INSERT INTO rings (tx_hash, input_idx, ring_index, member_global_index)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tx_hash, input_idx, ring_index) DO NOTHING`

	batch := &pgx.Batch{}
	for _, m := range members {
		batch.Queue(query, txHash, inputIdx, m.RingIndex, m.GlobalIndex)
	}

	if err = t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert rings: %w", err)
	}
	return nil
}

// ResolveRings links ring members of the given transactions to the
// output rows they reference. Members pointing before ingested
// history stay unresolved.
func (t *Tx) ResolveRings(ctx context.Context, txHashes [][]byte) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("resolve_rings", err, started)
	}()

	if len(txHashes) == 0 {
		return nil
	}

	const query = `
UPDATE rings
SET referenced_output_id = o.output_id
FROM outputs o
WHERE rings.tx_hash = ANY($1)
  AND rings.referenced_output_id IS NULL
  AND o.global_index = rings.member_global_index`

	if _, err = t.tx.Exec(ctx, query, txHashes); err != nil {
		return fmt.Errorf("resolve rings: %w", err)
	}
	return nil
}
