package model

import "time"

// DecodedTx bundles a decoded transaction with its inputs, rings and
// outputs for the single-writer hand-off.
type DecodedTx struct {
	Tx      Transaction
	Inputs  []TxInput
	Outputs []TxOutput
}

// DecodedBlock is the unit handed from the fetch/decode workers to the
// persistence writer through the ordering buffer. TipHeight and
// FinalizedHeight are the values observed when the height was scheduled;
// the writer uses them for confirmation accounting.
type DecodedBlock struct {
	Block           Block
	Txs             []DecodedTx
	TipHeight       int64
	FinalizedHeight int64
	ScheduledAt     time.Time
	SkippedTxHashes []string
}
