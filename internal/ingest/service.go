// Package ingest implements the chain ingestion pipeline: a height
// scheduler, a pool of fetch/decode workers, a height-ordered buffer,
// a single persistence writer, and a sentinel that heals reorgs.
package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope-backend/internal/clock"
	"github.com/ringscope/ringscope-backend/internal/repository/postgres"
	"github.com/ringscope/ringscope-backend/pkg/workerpool"
)

const (
	defaultWindowSize = 64
	errorSleep        = 5 * time.Second
	caughtUpSleep     = 20 * time.Second
)

// Config carries the pipeline tunables.
type Config struct {
	FinalityWindow int64
	Concurrency    int
	WindowSize     int64
	Bootstrap      bool
	StartHeight    int64
	Limit          int64
}

// Service runs the ingestion loop until its context is cancelled, the
// configured limit is reached, or a fatal condition halts it.
type Service struct {
	cfg       Config
	source    BlockSource
	store     Store
	fetcher   *Fetcher
	writer    *Writer
	scheduler *Scheduler
	buf       *orderBuffer
	logger    *zap.Logger
	metrics   PipelineMetrics

	// blockSignal wakes the scheduler when the daemon announces a new
	// block; a timer fallback covers daemons without notifications.
	blockSignal <-chan struct{}
}

func NewService(
	cfg Config,
	source BlockSource,
	store Store,
	sentinel *Sentinel,
	blockSignal <-chan struct{},
	logger *zap.Logger,
	metrics PipelineMetrics,
) *Service {
	if cfg.WindowSize < 1 {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Service{
		cfg:         cfg,
		source:      source,
		store:       store,
		fetcher:     NewFetcher(source, logger, metrics),
		writer:      NewWriter(store, sentinel, cfg.FinalityWindow, cfg.Bootstrap, logger, metrics),
		scheduler:   NewScheduler(cfg.WindowSize, cfg.StartHeight, cfg.Limit),
		buf:         newOrderBuffer(int(cfg.WindowSize)),
		logger:      logger,
		metrics:     metrics,
		blockSignal: blockSignal,
	}
}

// Run verifies the checkpoint, then ingests window after window.
// Transient errors back off and retry; ErrChainDiverged and a corrupt
// checkpoint halt the loop.
func (s *Service) Run(ctx context.Context) error {
	if err := s.store.VerifyCheckpoint(ctx); err != nil {
		var mismatch *postgres.CheckpointMismatchError
		if errors.As(err, &mismatch) {
			s.logger.Error("checkpoint inconsistent with stored chain", zap.Error(err))
		}
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.scheduler.Exhausted() {
			s.logger.Info("configured block limit reached, stopping")
			return nil
		}

		err := s.runBatch(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case errors.Is(err, ErrChainDiverged):
			s.logger.Error("halting: reorg deeper than finality window", zap.Error(err))
			return err
		default:
			var healed *reorgHealedError
			if errors.As(err, &healed) {
				// Checkpoint already rewound; the next batch resumes
				// from the fork point.
				continue
			}
			s.logger.Error("batch failed, backing off", zap.Error(err))
			if err := clock.SleepWithContext(ctx, errorSleep); err != nil {
				return err
			}
		}
	}
}

func (s *Service) runBatch(ctx context.Context) error {
	cp, err := s.store.Checkpoint(ctx)
	if err != nil {
		return err
	}
	tip, err := s.source.TipHeight(ctx)
	if err != nil {
		return err
	}

	start, end, ok := s.scheduler.Next(cp.IngestedHeight, tip)
	if !ok {
		if s.scheduler.Exhausted() {
			return nil
		}
		s.logger.Debug("caught up to tip, waiting",
			zap.Int64("tip", tip))
		return clock.WaitForSignal(ctx, caughtUpSleep, s.blockSignal)
	}

	started := time.Now()
	heights := end - start + 1
	err = s.ingestWindow(ctx, start, end, tip, cp.FinalizedHeight)
	s.metrics.ObserveBatch(err, int(heights), started)
	if err != nil {
		return err
	}

	s.scheduler.Advance(heights)
	s.logger.Info("window committed",
		zap.Int64("start", start),
		zap.Int64("end", end),
		zap.Int64("tip", tip),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

// ingestWindow fetches [start, end] concurrently and commits in
// order. Worker and writer failures cancel each other through the
// shared context.
func (s *Service) ingestWindow(ctx context.Context, start, end, tip, finalized int64) error {
	if err := s.source.PrimeHeaders(ctx, start, end); err != nil {
		s.logger.Warn("header prefetch failed, degrading to single calls", zap.Error(err))
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.buf.Reset(start)

	heights := make([]int64, 0, end-start+1)
	for h := start; h <= end; h++ {
		heights = append(heights, h)
	}

	writerDone := make(chan error, 1)
	go func() {
		err := s.writer.Drain(batchCtx, s.buf, int64(len(heights)), finalized)
		if err != nil {
			cancel()
		}
		writerDone <- err
	}()

	fetchErr := workerpool.Process(batchCtx, s.cfg.Concurrency, heights, func(gctx context.Context, height int64) error {
		blk, err := s.fetcher.FetchDecode(gctx, height, tip)
		if err != nil {
			return err
		}
		return s.buf.Put(gctx, blk)
	})
	if fetchErr != nil {
		cancel()
	}

	writerErr := <-writerDone

	// The writer error carries the verdict: healed reorgs and
	// divergence outrank a fetch cancellation.
	if writerErr != nil && !errors.Is(writerErr, context.Canceled) {
		return writerErr
	}
	if fetchErr != nil {
		return fetchErr
	}
	return writerErr
}
