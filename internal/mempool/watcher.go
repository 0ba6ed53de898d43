// Package mempool tracks the daemon's unconfirmed transaction pool.
package mempool

import (
	"context"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope-backend/internal/clock"
	"github.com/ringscope/ringscope-backend/internal/model"
	"github.com/ringscope/ringscope-backend/pkg/batcher"
)

const (
	defaultRefreshInterval = 30 * time.Second

	upsertFlushSize     = 200
	upsertFlushInterval = 2 * time.Second
	upsertFlushRPS      = 10
)

// Watcher refreshes the stored pool view whenever the daemon
// announces a new transaction, with a timer fallback for daemons
// without push notifications.
type Watcher struct {
	source   PoolSource
	logger   *zap.Logger
	metrics  Metrics
	interval time.Duration

	// txSignal fires on new pool transaction announcements; nil means
	// timer-only operation.
	txSignal <-chan struct{}

	upserts *batcher.Batcher[model.MempoolTx]

	// lastHashes is the pool membership observed by the previous
	// refresh; an unchanged pool skips the full body fetch.
	lastHashes map[string]struct{}
}

func NewWatcher(
	source PoolSource,
	store PoolStore,
	txSignal <-chan struct{},
	logger *zap.Logger,
	metrics Metrics,
) *Watcher {
	return &Watcher{
		source:   source,
		logger:   logger,
		metrics:  metrics,
		interval: defaultRefreshInterval,
		txSignal: txSignal,
		upserts: batcher.New[model.MempoolTx](
			logger.Named("mempoolUpserts"),
			store.UpsertMempoolTxs,
			upsertFlushSize,
			upsertFlushInterval,
			upsertFlushRPS,
		),
	}
}

// Run refreshes the pool until the context is cancelled. Refresh
// failures are logged and retried on the next wakeup rather than
// stopping the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	w.upserts.Start(ctx)
	defer w.upserts.Stop()

	for {
		if err := w.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("pool refresh failed", zap.Error(err))
		}

		if err := clock.WaitForSignal(ctx, w.interval, w.txSignal); err != nil {
			return err
		}
	}
}

func (w *Watcher) refresh(ctx context.Context) error {
	started := time.Now()

	if unchanged, size := w.poolUnchanged(ctx); unchanged {
		w.metrics.ObserveRefresh(nil, size, started)
		return nil
	}

	poolTxs, err := w.source.GetTransactionPool(ctx)
	if err != nil {
		w.metrics.ObserveRefresh(err, 0, started)
		return err
	}

	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(poolTxs))
	for _, ptx := range poolTxs {
		seen[ptx.IDHash] = struct{}{}
		hash, err := hex.DecodeString(ptx.IDHash)
		if err != nil {
			w.logger.Warn("malformed pool tx hash", zap.String("hash", ptx.IDHash))
			continue
		}

		size := ptx.Weight
		if size == 0 {
			size = ptx.BlobSize
		}
		feeRate := 0.0
		if size > 0 {
			feeRate = float64(ptx.Fee) / float64(size)
		}

		firstSeen := now
		if ptx.ReceiveTime > 0 {
			firstSeen = time.Unix(ptx.ReceiveTime, 0).UTC()
		}

		var origin *string
		if ptx.DoNotRelay {
			o := "local"
			origin = &o
		} else if ptx.Relayed {
			o := "relayed"
			origin = &o
		}

		if err := w.upserts.Add(ctx, model.MempoolTx{
			Hash:        hash,
			FirstSeen:   firstSeen,
			LastSeen:    now,
			FeeRate:     feeRate,
			RelayOrigin: origin,
		}); err != nil {
			w.metrics.ObserveRefresh(err, 0, started)
			return err
		}
	}

	w.lastHashes = seen
	w.metrics.ObserveRefresh(nil, len(poolTxs), started)
	return nil
}

// poolUnchanged lists the current pool hashes and compares them with
// the previous refresh. A listing failure falls back to a full fetch.
func (w *Watcher) poolUnchanged(ctx context.Context) (bool, int) {
	if w.lastHashes == nil {
		return false, 0
	}
	hashes, err := w.source.GetTransactionPoolHashes(ctx)
	if err != nil {
		w.logger.Debug("pool hash listing failed, fetching full pool", zap.Error(err))
		return false, 0
	}
	if len(hashes) != len(w.lastHashes) {
		return false, 0
	}
	for _, h := range hashes {
		if _, ok := w.lastHashes[h]; !ok {
			return false, 0
		}
	}
	return true, len(hashes)
}
