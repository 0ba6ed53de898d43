package model

import "time"

// Transaction is a chain transaction. BlockHeight is nil while the
// transaction is only known from the mempool; it is set exactly when the
// transaction is committed inside a block, and the two states are mutually
// exclusive.
type Transaction struct {
	Hash        []byte
	BlockHeight *int64
	InMempool   bool
	Fee         *int64
	SizeBytes   int32
	Version     int32
	UnlockTime  int64
	Extra       []byte
	RctType     int32
	ProofType   string
	ProofBytes  int32
	NumInputs   int32
	NumOutputs  int32
}

// TxInput references a ring of candidate prior outputs. Exactly one ring
// member is the true spend; the record never identifies which.
type TxInput struct {
	Idx      int32
	KeyImage []byte
	RingSize int32
	Ring     []RingMember
}

// RingMember is one candidate output of an input's ring, addressed by the
// chain-global output index. OutputID stays nil when the reference
// predates ingested history.
type RingMember struct {
	RingIndex   int32
	GlobalIndex int64
	OutputID    *int64
}

// TxOutput is an output produced by a transaction at one position.
// GlobalIndex is assigned when the owning block is committed and increases
// monotonically over the canonical history. SpentByKeyImage is a decoupled
// cross-reference set when a definitively spending input is ingested.
type TxOutput struct {
	IdxInTx         int32
	Commitment      []byte
	StealthKey      []byte
	Amount          *int64
	GlobalIndex     *int64
	SpentByKeyImage []byte
}

// MempoolTx is an unconfirmed transaction as observed from the daemon's
// pool. Rows are created by the mempool watcher and deleted by the
// persistence writer at inclusion time.
type MempoolTx struct {
	Hash        []byte
	FirstSeen   time.Time
	LastSeen    time.Time
	FeeRate     float64
	RelayOrigin *string
}
