package ingest

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope-backend/internal/repository/postgres"
)

// Sentinel states. Published as a gauge.
const (
	stateFollowing = 0
	stateDiverged  = 1
	stateHealing   = 2
)

// Sentinel watches for chain divergence and rewinds stored history to
// the fork point. A divergence deeper than the finality window is
// fatal: finalized blocks are never rewound.
type Sentinel struct {
	store          Store
	source         BlockSource
	logger         *zap.Logger
	metrics        ReorgMetrics
	finalityWindow int64
}

func NewSentinel(
	store Store,
	source BlockSource,
	finalityWindow int64,
	logger *zap.Logger,
	metrics ReorgMetrics,
) *Sentinel {
	s := &Sentinel{
		store:          store,
		source:         source,
		logger:         logger,
		metrics:        metrics,
		finalityWindow: finalityWindow,
	}
	s.metrics.SetState(stateFollowing)
	return s
}

// Diverged reports whether the incoming block at the given height
// contradicts stored history: a stored block exists at height-1 whose
// hash differs from the incoming parent hash.
func (s *Sentinel) Diverged(ctx context.Context, height int64, prevHash []byte) (bool, error) {
	if height == 0 {
		return false, nil
	}
	stored, err := s.store.BlockHashAt(ctx, height-1)
	if errors.Is(err, postgres.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !bytes.Equal(stored, prevHash), nil
}

// Heal walks back from the divergence to the most recent height whose
// stored hash still matches the daemon, rewinds stored history above
// it, and drops stale cached headers. Returns the fork height.
func (s *Sentinel) Heal(ctx context.Context, divergedHeight, finalizedHeight int64) (forkHeight int64, err error) {
	started := time.Now()
	s.metrics.ObserveDetected()
	s.metrics.SetState(stateDiverged)
	defer func() {
		if err == nil {
			s.metrics.SetState(stateFollowing)
		}
	}()

	s.logger.Warn("chain divergence detected",
		zap.Int64("height", divergedHeight),
		zap.Int64("finalized_height", finalizedHeight))

	// Cached headers above the divergence zone are from the losing
	// branch; force fresh daemon reads for the fork scan.
	invalidateFrom := divergedHeight - s.finalityWindow
	if invalidateFrom < 0 {
		invalidateFrom = 0
	}
	s.source.InvalidateFrom(invalidateFrom)

	forkHeight, err = s.findFork(ctx, divergedHeight, finalizedHeight)
	if err != nil {
		s.metrics.ObserveHeal(err, 0, started)
		return 0, err
	}

	s.metrics.SetState(stateHealing)
	removed, err := s.store.HealFrom(ctx, forkHeight)
	if err != nil {
		s.metrics.ObserveHeal(err, 0, started)
		return 0, fmt.Errorf("heal from %d: %w", forkHeight, err)
	}
	s.source.InvalidateFrom(forkHeight + 1)

	s.metrics.ObserveHeal(nil, removed, started)
	s.logger.Info("chain divergence healed",
		zap.Int64("fork_height", forkHeight),
		zap.Int64("blocks_rewound", removed))
	return forkHeight, nil
}

// findFork scans backwards for the highest height where stored and
// daemon hashes agree, never past the finalized height or the
// finality window.
func (s *Sentinel) findFork(ctx context.Context, divergedHeight, finalizedHeight int64) (int64, error) {
	lowest := divergedHeight - s.finalityWindow
	if lowest < finalizedHeight {
		lowest = finalizedHeight
	}
	if lowest < 0 {
		lowest = 0
	}

	for h := divergedHeight - 1; h >= lowest; h-- {
		stored, err := s.store.BlockHashAt(ctx, h)
		if errors.Is(err, postgres.ErrNotFound) {
			// Ingested history ends above this height; resume there.
			return h, nil
		}
		if err != nil {
			return 0, err
		}

		header, err := s.source.Header(ctx, h)
		if err != nil {
			return 0, err
		}
		daemonHash, err := hex.DecodeString(header.Hash)
		if err != nil {
			return 0, fmt.Errorf("decode daemon hash at %d: %w", h, err)
		}
		if bytes.Equal(stored, daemonHash) {
			return h, nil
		}
	}

	return 0, fmt.Errorf("fork below height %d: %w", lowest, ErrChainDiverged)
}
