package postgres

import (
	"time"

	"github.com/ringscope/ringscope-backend/internal/model"
)

func (s *RepositorySuite) TestHealFromRewindsAboveFork() {
	now := time.Now().UTC().Truncate(time.Second)

	for h := int64(0); h <= 2; h++ {
		suffix := byte('a' + h)
		block := newBlock(h, suffix, now.Add(time.Duration(h)*2*time.Minute))
		tx := confirmedTx(hashOf(0x30+byte(h)), h)
		s.Require().NoError(s.repo.WithinBlockTx(s.testCtx, func(t *Tx) error {
			if err := t.InsertBlock(s.testCtx, block); err != nil {
				return err
			}
			if err := t.InsertTransactions(s.testCtx, []model.Transaction{tx}); err != nil {
				return err
			}
			if err := t.RecordChainTip(s.testCtx, chainTipAt(h, suffix)); err != nil {
				return err
			}
			return t.SetCheckpoint(s.testCtx, h, -1)
		}))
	}

	removed, err := s.repo.HealFrom(s.testCtx, 0)
	s.Require().NoError(err)
	s.Equal(int64(2), removed)

	s.Equal(int64(1), s.countRows("blocks"))
	s.Equal(int64(1), s.countRows("txs"))
	s.Equal(int64(1), s.countRows("chain_tips"))

	// Transactions of the losing branch return to the pool.
	s.Equal(int64(2), s.countRows("mempool_txs"))

	cp, err := s.repo.Checkpoint(s.testCtx)
	s.Require().NoError(err)
	s.Equal(int64(0), cp.IngestedHeight)

	s.Require().NoError(s.repo.VerifyCheckpoint(s.testCtx))
}

func (s *RepositorySuite) TestHealFromNoopBelowHistory() {
	now := time.Now().UTC().Truncate(time.Second)
	s.seedBlock(newBlock(0, 'a', now))
	s.Require().NoError(s.repo.WithinBlockTx(s.testCtx, func(tx *Tx) error {
		return tx.SetCheckpoint(s.testCtx, 0, -1)
	}))

	removed, err := s.repo.HealFrom(s.testCtx, 5)
	s.Require().NoError(err)
	s.Equal(int64(0), removed)
	s.Equal(int64(1), s.countRows("blocks"))

	// The checkpoint never moves forward during a heal.
	cp, err := s.repo.Checkpoint(s.testCtx)
	s.Require().NoError(err)
	s.Equal(int64(0), cp.IngestedHeight)
}
