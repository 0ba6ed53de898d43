package monero

import (
	"context"
	"net/http"
	"sync"
)

// BlockHeader mirrors the daemon's block_header object. Older daemons
// report the serialized size as block_size rather than block_weight.
type BlockHeader struct {
	Hash         string `json:"hash"`
	Height       int64  `json:"height"`
	PrevHash     string `json:"prev_hash"`
	Timestamp    int64  `json:"timestamp"`
	MajorVersion int32  `json:"major_version"`
	MinorVersion int32  `json:"minor_version"`
	Nonce        int64  `json:"nonce"`
	Reward       int64  `json:"reward"`
	BlockWeight  int64  `json:"block_weight"`
	BlockSize    int64  `json:"block_size"`
	NumTxes      int64  `json:"num_txes"`
}

// Size returns the serialized block size regardless of daemon vintage.
func (h BlockHeader) Size() int64 {
	if h.BlockWeight > 0 {
		return h.BlockWeight
	}
	return h.BlockSize
}

// GetBlockResult is the json_rpc get_block response.
type GetBlockResult struct {
	BlockHeader BlockHeader `json:"block_header"`
	JSON        string      `json:"json"`
	Status      string      `json:"status"`
}

// TxEntry is one entry of the /get_transactions response.
type TxEntry struct {
	TxHash      string `json:"tx_hash"`
	AsJSON      string `json:"as_json"`
	BlockHeight int64  `json:"block_height"`
	InPool      bool   `json:"in_pool"`
}

// GetBlockCount returns the daemon chain height counted in blocks.
// The tip height is one less than this value.
func (c *Client) GetBlockCount(ctx context.Context) (int64, error) {
	var res struct {
		Count  int64  `json:"count"`
		Status string `json:"status"`
	}
	if err := c.callJSONRPC(ctx, "get_block_count", nil, &res); err != nil {
		return 0, err
	}
	if res.Status != "OK" {
		return 0, &RPCStatusError{Operation: "get_block_count", Status: res.Status}
	}
	return res.Count, nil
}

// TipHeight returns the height of the current chain tip.
func (c *Client) TipHeight(ctx context.Context) (int64, error) {
	count, err := c.GetBlockCount(ctx)
	if err != nil {
		return 0, err
	}
	return count - 1, nil
}

// GetBlockHeaderByHeight fetches a single block header.
func (c *Client) GetBlockHeaderByHeight(ctx context.Context, height int64) (BlockHeader, error) {
	var res struct {
		BlockHeader BlockHeader `json:"block_header"`
		Status      string      `json:"status"`
	}
	params := map[string]int64{"height": height}
	if err := c.callJSONRPC(ctx, "get_block_header_by_height", params, &res); err != nil {
		return BlockHeader{}, err
	}
	if res.Status != "OK" {
		return BlockHeader{}, &RPCStatusError{Operation: "get_block_header_by_height", Status: res.Status}
	}
	return res.BlockHeader, nil
}

// GetBlockHeadersRange fetches headers for [start, end] inclusive.
func (c *Client) GetBlockHeadersRange(ctx context.Context, start, end int64) ([]BlockHeader, error) {
	var res struct {
		Headers []BlockHeader `json:"headers"`
		Status  string        `json:"status"`
	}
	params := map[string]int64{"start_height": start, "end_height": end}
	if err := c.callJSONRPC(ctx, "get_block_headers_range", params, &res); err != nil {
		return nil, err
	}
	if res.Status != "OK" {
		return nil, &RPCStatusError{Operation: "get_block_headers_range", Status: res.Status}
	}
	return res.Headers, nil
}

// GetBlockByHeight fetches the full block body at the given height.
func (c *Client) GetBlockByHeight(ctx context.Context, height int64) (GetBlockResult, error) {
	var res GetBlockResult
	params := map[string]int64{"height": height}
	if err := c.callJSONRPC(ctx, "get_block", params, &res); err != nil {
		return GetBlockResult{}, err
	}
	if res.Status != "OK" {
		return GetBlockResult{}, &RPCStatusError{Operation: "get_block", Status: res.Status}
	}
	return res, nil
}

// GetBlockByHash fetches the full block body with the given hash.
func (c *Client) GetBlockByHash(ctx context.Context, hash string) (GetBlockResult, error) {
	var res GetBlockResult
	params := map[string]string{"hash": hash}
	if err := c.callJSONRPC(ctx, "get_block", params, &res); err != nil {
		return GetBlockResult{}, err
	}
	if res.Status != "OK" {
		return GetBlockResult{}, &RPCStatusError{Operation: "get_block", Status: res.Status}
	}
	return res, nil
}

type getTransactionsRequest struct {
	TxsHashes    []string `json:"txs_hashes"`
	DecodeAsJSON bool     `json:"decode_as_json"`
}

type getTransactionsResponse struct {
	Txs      []TxEntry `json:"txs"`
	MissedTx []string  `json:"missed_tx"`
	Status   string    `json:"status"`
}

// txChunker adapts the per-request hash chunk to the daemon's
// behavior: it shrinks when the daemon reports missed transactions and
// grows back while chunks succeed.
type txChunker struct {
	mu   sync.Mutex
	size int
}

func newTxChunker(concurrency int) *txChunker {
	size := concurrency * 50
	if size < 10 {
		size = 10
	}
	if size > maxTxsPerRequest*3 {
		size = maxTxsPerRequest * 3
	}
	return &txChunker{size: size}
}

func (t *txChunker) next() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.size > maxTxsPerRequest {
		return maxTxsPerRequest
	}
	return t.size
}

func (t *txChunker) shrink() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.size /= 2
	if t.size < 10 {
		t.size = 10
	}
}

func (t *txChunker) grow() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.size < maxTxsPerRequest*3 {
		t.size += 10
	}
}

// GetTransactions fetches the JSON bodies of the given transactions,
// chunking requests to the daemon limit. Hashes the daemon does not
// know are returned in missed; the caller decides whether missing
// entries are fatal.
func (c *Client) GetTransactions(ctx context.Context, hashes []string) (txs []TxEntry, missed []string, err error) {
	for len(hashes) > 0 {
		n := c.txChunker.next()
		if n > len(hashes) {
			n = len(hashes)
		}
		chunk := hashes[:n]
		hashes = hashes[n:]

		var res getTransactionsResponse
		req := getTransactionsRequest{TxsHashes: chunk, DecodeAsJSON: true}
		if err := c.callREST(ctx, http.MethodPost, "/get_transactions", req, &res); err != nil {
			return nil, nil, err
		}
		if res.Status != "OK" {
			return nil, nil, &RPCStatusError{Operation: "get_transactions", Status: res.Status}
		}

		if len(res.MissedTx) > 0 {
			c.txChunker.shrink()
			missed = append(missed, res.MissedTx...)
		} else {
			c.txChunker.grow()
		}
		txs = append(txs, res.Txs...)
	}
	return txs, missed, nil
}

// GetTransactionPoolHashes returns the hashes currently in the
// daemon's transaction pool.
func (c *Client) GetTransactionPoolHashes(ctx context.Context) ([]string, error) {
	var res struct {
		TxHashes []string `json:"tx_hashes"`
		Status   string   `json:"status"`
	}
	if err := c.callREST(ctx, http.MethodGet, "/get_transaction_pool_hashes", nil, &res); err != nil {
		return nil, err
	}
	if res.Status != "OK" {
		return nil, &RPCStatusError{Operation: "get_transaction_pool_hashes", Status: res.Status}
	}
	return res.TxHashes, nil
}

// PoolTx is one entry of the /get_transaction_pool response.
type PoolTx struct {
	IDHash      string `json:"id_hash"`
	Fee         int64  `json:"fee"`
	BlobSize    int64  `json:"blob_size"`
	Weight      int64  `json:"weight"`
	ReceiveTime int64  `json:"receive_time"`
	Relayed     bool   `json:"relayed"`
	DoNotRelay  bool   `json:"do_not_relay"`
}

// GetTransactionPool returns the full transaction pool with fees.
func (c *Client) GetTransactionPool(ctx context.Context) ([]PoolTx, error) {
	var res struct {
		Transactions []PoolTx `json:"transactions"`
		Status       string   `json:"status"`
	}
	if err := c.callREST(ctx, http.MethodGet, "/get_transaction_pool", nil, &res); err != nil {
		return nil, err
	}
	if res.Status != "OK" {
		return nil, &RPCStatusError{Operation: "get_transaction_pool", Status: res.Status}
	}
	return res.Transactions, nil
}
