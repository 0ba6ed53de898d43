// Package model defines domain records for chain ingestion.
package model

import "time"

// Block represents one block of the canonical chain history as persisted
// to Postgres. A height may be replaced during reorg healing (old row
// deleted, new row inserted); height+hash pairs are never reused while
// part of the active history.
type Block struct {
	Height           int64
	Hash             []byte
	PrevHash         []byte
	Timestamp        time.Time
	SizeBytes        int32
	MajorVersion     int32
	MinorVersion     int32
	Nonce            int64
	TxCount          int32
	Reward           int64
	Confirmations    int32
	IsFinal          bool
	AnalyticsPending bool
}

// ChainTip is one entry of the append-only (height, hash, prev_hash) log
// recorded at ingestion time. The reorg sentinel compares the live chain
// against this log.
type ChainTip struct {
	Height   int64
	Hash     []byte
	PrevHash []byte
}

// Checkpoint is the singleton ingestion cursor. IngestedHeight is -1 when
// nothing has been ingested yet. It moves strictly forward except during
// reorg healing, when it is rolled back to the fork point.
type Checkpoint struct {
	IngestedHeight  int64
	FinalizedHeight int64
	UpdatedAt       time.Time
}
