package ingest

import (
	"errors"
	"fmt"
)

// ErrChainDiverged reports a reorg deeper than the finality window.
// Fatal: ingestion halts pending operator intervention.
var ErrChainDiverged = errors.New("chain diverged beyond finality window")

// reorgHealedError signals that history above ForkHeight was rewound
// and the batch must restart from the rolled-back checkpoint.
type reorgHealedError struct {
	ForkHeight int64
	Depth      int64
}

func (e *reorgHealedError) Error() string {
	return fmt.Sprintf("reorg healed: rewound %d blocks to fork height %d", e.Depth, e.ForkHeight)
}
