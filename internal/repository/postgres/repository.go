// Package postgres implements the ingestion store. One block is one
// database transaction; the persistence writer is the only writer of
// the ingestion tables.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

type Repository struct {
	pool    *pgxpool.Pool
	metrics Metrics
}

func NewRepository(ctx context.Context, dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Repository{pool: pool, metrics: metrics}, nil
}

func (r *Repository) Close() {
	r.pool.Close()
}

// Tx groups the statements of one atomic unit of block work.
type Tx struct {
	tx      pgx.Tx
	metrics Metrics
}

// WithinBlockTx runs fn inside a single database transaction and
// commits only if fn returns nil. Rollback on error leaves no partial
// block state behind.
func (r *Repository) WithinBlockTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("block_tx", err, started)
	}()

	pgTx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin block tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = pgTx.Rollback(ctx)
		}
	}()

	if err = fn(&Tx{tx: pgTx, metrics: r.metrics}); err != nil {
		return err
	}
	if err = pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit block tx: %w", err)
	}
	return nil
}
