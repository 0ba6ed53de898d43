package ingest

import (
	"context"
	"time"

	"github.com/ringscope/ringscope-backend/internal/model"
	"github.com/ringscope/ringscope-backend/internal/monero"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// BlockSource serves raw blocks and tip queries from the daemon.
	BlockSource interface {
		TipHeight(ctx context.Context) (int64, error)
		Header(ctx context.Context, height int64) (monero.BlockHeader, error)
		PrimeHeaders(ctx context.Context, start, end int64) error
		InvalidateFrom(height int64)
		FetchBlock(ctx context.Context, height int64) (monero.RawBlock, error)
	}

	// Store is the ingestion database surface outside of block
	// transactions.
	Store interface {
		Checkpoint(ctx context.Context) (model.Checkpoint, error)
		VerifyCheckpoint(ctx context.Context) error
		BlockHashAt(ctx context.Context, height int64) ([]byte, error)
		MaxGlobalIndex(ctx context.Context) (int64, error)
		HealFrom(ctx context.Context, forkHeight int64) (int64, error)
		WithinBlockTx(ctx context.Context, fn func(tx BlockTx) error) error
	}

	// BlockTx groups the statements of one atomic block write.
	BlockTx interface {
		InsertBlock(ctx context.Context, block model.Block) error
		InsertTransactions(ctx context.Context, txs []model.Transaction) error
		InsertTransactionInputs(ctx context.Context, txHash []byte, inputs []model.TxInput) error
		InsertTransactionOutputs(ctx context.Context, txHash []byte, outputs []model.TxOutput) error
		InsertRings(ctx context.Context, txHash []byte, inputIdx int32, members []model.RingMember) error
		ResolveRings(ctx context.Context, txHashes [][]byte) error
		MarkOutputSpent(ctx context.Context, globalIndex int64, keyImage []byte) error
		EvictMempool(ctx context.Context, txHashes [][]byte) error
		RecordChainTip(ctx context.Context, tip model.ChainTip) error
		ComputeSoftFacts(ctx context.Context, height int64) error
		RefreshConfirmations(ctx context.Context, tip, window, finalityWindow int64) error
		SetCheckpoint(ctx context.Context, ingested, finalized int64) error
	}

	// PipelineMetrics observes batch and block progress.
	PipelineMetrics interface {
		ObserveBatch(err error, heights int, started time.Time)
		ObserveBlockCommit(err error, scheduledAt time.Time)
		SetQueueDepth(stage string, depth int)
		ObserveError(kind string)
	}

	// ReorgMetrics observes divergence detection and healing.
	ReorgMetrics interface {
		ObserveDetected()
		ObserveHeal(err error, depth int64, started time.Time)
		SetState(state int)
	}
)
