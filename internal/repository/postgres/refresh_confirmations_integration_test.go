package postgres

import (
	"time"
)

func (s *RepositorySuite) TestRefreshConfirmationsTrailingWindow() {
	now := time.Now().UTC().Truncate(time.Second)
	for h := int64(0); h <= 5; h++ {
		s.seedBlock(newBlock(h, byte('a'+h), now.Add(time.Duration(h)*2*time.Minute)))
	}

	s.Require().NoError(s.repo.WithinBlockTx(s.testCtx, func(tx *Tx) error {
		return tx.RefreshConfirmations(s.testCtx, 5, 4, 2)
	}))

	type row struct {
		confirmations int32
		isFinal       bool
	}
	read := func(height int64) row {
		var r row
		err := s.repo.pool.QueryRow(s.testCtx,
			"SELECT confirmations, is_final FROM blocks WHERE height = $1", height).
			Scan(&r.confirmations, &r.isFinal)
		s.Require().NoError(err)
		return r
	}

	// Heights 2..5 fall inside the window of 4 below tip 5.
	s.Equal(row{confirmations: 4, isFinal: true}, read(2))
	s.Equal(row{confirmations: 3, isFinal: true}, read(3))
	s.Equal(row{confirmations: 2, isFinal: false}, read(4))
	s.Equal(row{confirmations: 1, isFinal: false}, read(5))

	// Heights below the window keep their stored counts.
	s.Equal(row{confirmations: 0, isFinal: false}, read(0))
	s.Equal(row{confirmations: 0, isFinal: false}, read(1))
}
