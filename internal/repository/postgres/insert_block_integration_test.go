package postgres

import (
	"time"
)

func (s *RepositorySuite) TestInsertBlockAndHashLookup() {
	now := time.Now().UTC().Truncate(time.Second)
	block := newBlock(0, 'a', now)
	s.seedBlock(block)

	hash, err := s.repo.BlockHashAt(s.testCtx, 0)
	s.Require().NoError(err)
	s.Equal(block.Hash, hash)

	_, err = s.repo.BlockHashAt(s.testCtx, 7)
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestInsertBlockRerunIsIdempotent() {
	now := time.Now().UTC().Truncate(time.Second)
	block := newBlock(3, 'c', now)

	s.seedBlock(block)
	s.seedBlock(block)

	s.Equal(int64(1), s.countRows("blocks"))
}

func (s *RepositorySuite) TestRecordChainTipUpsertsHeight() {
	now := time.Now().UTC().Truncate(time.Second)
	s.seedBlock(newBlock(1, 'b', now))

	s.Require().NoError(s.repo.WithinBlockTx(s.testCtx, func(tx *Tx) error {
		if err := tx.RecordChainTip(s.testCtx, chainTipAt(1, 'b')); err != nil {
			return err
		}
		return tx.RecordChainTip(s.testCtx, chainTipAt(1, 'd'))
	}))

	s.Equal(int64(1), s.countRows("chain_tips"))

	var hash []byte
	err := s.repo.pool.QueryRow(s.testCtx, "SELECT hash FROM chain_tips WHERE height = 1").Scan(&hash)
	s.Require().NoError(err)
	s.Equal(hashOf('d'), hash)
}
