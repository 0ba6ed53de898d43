// Package analytics computes per-block soft facts skipped during
// bootstrap ingestion.
package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope-backend/internal/clock"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type Store interface {
	PendingAnalyticsHeights(ctx context.Context, limit int) ([]int64, error)
	BackfillSoftFacts(ctx context.Context, height int64) error
}

// Backfill sweeps blocks flagged analytics-pending and computes their
// facts, lowest height first.
type Backfill struct {
	store  Store
	logger *zap.Logger

	batchSize int
}

func NewBackfill(store Store, logger *zap.Logger) *Backfill {
	return &Backfill{
		store:     store,
		logger:    logger,
		batchSize: defaultBatchSize,
	}
}

// Run processes pending blocks until none remain or the context is
// cancelled.
func (b *Backfill) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		heights, err := b.store.PendingAnalyticsHeights(ctx, b.batchSize)
		if err != nil {
			return err
		}
		if len(heights) == 0 {
			b.logger.Info("no pending blocks, backfill complete")
			return nil
		}

		for _, h := range heights {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := b.store.BackfillSoftFacts(ctx, h); err != nil {
				b.logger.Error("backfill failed, backing off",
					zap.Int64("height", h),
					zap.Error(err))
				if err := clock.SleepWithContext(ctx, retrySleep); err != nil {
					return err
				}
				break
			}
		}

		b.logger.Info("backfill batch complete",
			zap.Int("blocks", len(heights)),
			zap.Int64("last_height", heights[len(heights)-1]))
	}
}
