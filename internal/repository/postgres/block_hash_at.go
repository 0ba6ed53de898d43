package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound reports a missing row where one may legitimately be
// absent.
var ErrNotFound = errors.New("not found")

// BlockHashAt returns the stored hash at the given height, or
// ErrNotFound when the height has not been ingested.
func (r *Repository) BlockHashAt(ctx context.Context, height int64) (hash []byte, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("block_hash_at", err, started)
	}()

	const query = `SELECT hash FROM blocks WHERE height = $1`

	err = r.pool.QueryRow(ctx, query, height).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("block hash at %d: %w", height, err)
	}
	return hash, nil
}
