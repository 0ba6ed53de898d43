package mempool

import (
	"context"
	"time"

	"github.com/ringscope/ringscope-backend/internal/model"
	"github.com/ringscope/ringscope-backend/internal/monero"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// PoolSource serves the daemon's transaction pool.
	PoolSource interface {
		GetTransactionPool(ctx context.Context) ([]monero.PoolTx, error)
		GetTransactionPoolHashes(ctx context.Context) ([]string, error)
	}

	// PoolStore records pool observations. Eviction of confirmed
	// transactions belongs to the persistence writer, not here.
	PoolStore interface {
		UpsertMempoolTxs(ctx context.Context, txs []model.MempoolTx) error
	}

	// Metrics observes pool refreshes.
	Metrics interface {
		ObserveRefresh(err error, size int, started time.Time)
	}
)
