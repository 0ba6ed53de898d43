package postgres

import (
	"time"

	"github.com/ringscope/ringscope-backend/internal/model"
)

func (s *RepositorySuite) TestBackfillSoftFactsComputesAndClearsPending() {
	now := time.Now().UTC().Truncate(time.Second)
	txHash := hashOf('f')

	block := newBlock(0, 'a', now)
	block.TxCount = 2
	block.AnalyticsPending = true

	s.Require().NoError(s.repo.WithinBlockTx(s.testCtx, func(tx *Tx) error {
		if err := tx.InsertBlock(s.testCtx, block); err != nil {
			return err
		}
		if err := tx.InsertTransactions(s.testCtx, []model.Transaction{confirmedTx(txHash, 0)}); err != nil {
			return err
		}
		return tx.InsertTransactionInputs(s.testCtx, txHash, []model.TxInput{
			{Idx: 0, KeyImage: hashOf(0x40), RingSize: 16},
		})
	}))

	heights, err := s.repo.PendingAnalyticsHeights(s.testCtx, 10)
	s.Require().NoError(err)
	s.Equal([]int64{0}, heights)

	s.Require().NoError(s.repo.BackfillSoftFacts(s.testCtx, 0))

	var txCount, totalOutputs int32
	var totalFees int64
	var avgRingSize float64
	err = s.repo.pool.QueryRow(s.testCtx, `
SELECT tx_count, total_fees, total_outputs, avg_ring_size
FROM soft_facts WHERE height = 0`).
		Scan(&txCount, &totalFees, &totalOutputs, &avgRingSize)
	s.Require().NoError(err)

	s.Equal(int32(2), txCount)
	s.Equal(int64(30000000), totalFees)
	s.Equal(int32(2), totalOutputs)
	s.Equal(16.0, avgRingSize)

	heights, err = s.repo.PendingAnalyticsHeights(s.testCtx, 10)
	s.Require().NoError(err)
	s.Empty(heights)
}

func (s *RepositorySuite) TestComputeSoftFactsRerunUpdates() {
	now := time.Now().UTC().Truncate(time.Second)

	block := newBlock(0, 'a', now)
	block.TxCount = 1
	s.seedBlock(block)

	s.Require().NoError(s.repo.BackfillSoftFacts(s.testCtx, 0))
	s.Require().NoError(s.repo.BackfillSoftFacts(s.testCtx, 0))

	s.Equal(int64(1), s.countRows("soft_facts"))
}
