package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ringscope/ringscope-backend/internal/model"
)

// InsertTransactionInputs stores the input rows of one transaction.
func (t *Tx) InsertTransactionInputs(ctx context.Context, txHash []byte, inputs []model.TxInput) (err error) {
	started := time.Now()
	defer func() {
		t.metrics.Observe("insert_transaction_inputs", err, started)
	}()

	if len(inputs) == 0 {
		return nil
	}

	const query = `
INSERT INTO tx_inputs (tx_hash, idx, key_image, ring_size)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tx_hash, idx) DO NOTHING`

	batch := &pgx.Batch{}
	for _, in := range inputs {
		batch.Queue(query, txHash, in.Idx, in.KeyImage, in.RingSize)
	}

	if err = t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert transaction inputs: %w", err)
	}
	return nil
}
