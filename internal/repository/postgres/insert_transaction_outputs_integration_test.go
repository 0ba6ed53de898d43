package postgres

import (
	"time"

	"github.com/ringscope/ringscope-backend/internal/model"
)

func (s *RepositorySuite) TestMaxGlobalIndexEmpty() {
	idx, err := s.repo.MaxGlobalIndex(s.testCtx)
	s.Require().NoError(err)
	s.Equal(int64(-1), idx)
}

func (s *RepositorySuite) TestInsertOutputsAndMaxGlobalIndex() {
	now := time.Now().UTC().Truncate(time.Second)
	txHash := hashOf('f')

	s.Require().NoError(s.repo.WithinBlockTx(s.testCtx, func(tx *Tx) error {
		if err := tx.InsertBlock(s.testCtx, newBlock(0, 'a', now)); err != nil {
			return err
		}
		if err := tx.InsertTransactions(s.testCtx, []model.Transaction{confirmedTx(txHash, 0)}); err != nil {
			return err
		}
		return tx.InsertTransactionOutputs(s.testCtx, txHash, []model.TxOutput{
			{IdxInTx: 0, StealthKey: hashOf(0x10), GlobalIndex: int64Ptr(0)},
			{IdxInTx: 1, StealthKey: hashOf(0x11), GlobalIndex: int64Ptr(1)},
		})
	}))

	idx, err := s.repo.MaxGlobalIndex(s.testCtx)
	s.Require().NoError(err)
	s.Equal(int64(1), idx)
	s.Equal(int64(2), s.countRows("outputs"))
}

func (s *RepositorySuite) TestMarkOutputSpentFirstWriteWins() {
	now := time.Now().UTC().Truncate(time.Second)
	txHash := hashOf('f')
	firstImage := hashOf(0x20)
	secondImage := hashOf(0x21)

	s.Require().NoError(s.repo.WithinBlockTx(s.testCtx, func(tx *Tx) error {
		if err := tx.InsertBlock(s.testCtx, newBlock(0, 'a', now)); err != nil {
			return err
		}
		if err := tx.InsertTransactions(s.testCtx, []model.Transaction{confirmedTx(txHash, 0)}); err != nil {
			return err
		}
		if err := tx.InsertTransactionOutputs(s.testCtx, txHash, []model.TxOutput{
			{IdxInTx: 0, StealthKey: hashOf(0x10), GlobalIndex: int64Ptr(0)},
		}); err != nil {
			return err
		}
		if err := tx.MarkOutputSpent(s.testCtx, 0, firstImage); err != nil {
			return err
		}
		return tx.MarkOutputSpent(s.testCtx, 0, secondImage)
	}))

	var spentBy []byte
	err := s.repo.pool.QueryRow(s.testCtx,
		"SELECT spent_by_key_image FROM outputs WHERE global_index = 0").Scan(&spentBy)
	s.Require().NoError(err)
	s.Equal(firstImage, spentBy)
}
