// Package monero implements a client for the monerod daemon RPC
// surface: the JSON-RPC endpoint for headers and blocks, and the
// plain HTTP endpoints for transactions and the pool.
package monero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ringscope/ringscope-backend/pkg/limiter"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMaxRetries     = 4

	// The daemon rejects get_transactions requests above this many
	// hashes in one call.
	maxTxsPerRequest = 100
)

type (
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
		ObserveRetry(operation string)
	}

	Logger interface {
		Debugf(template string, args ...interface{})
		Warnf(template string, args ...interface{})
	}
)

// Client talks to a single monerod instance. All calls pass through
// the shared rate gate and retry transient failures with exponential
// backoff.
type Client struct {
	httpClient *http.Client
	baseURL    string
	gate       *limiter.Gate
	rpcMetrics RPCMetrics
	logger     Logger
	maxRetries uint64
	txChunker  *txChunker
}

func NewClient(
	baseURL string,
	gate *limiter.Gate,
	rpcMetrics RPCMetrics,
	logger Logger,
	fetchConcurrency int,
) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		gate:       gate,
		rpcMetrics: rpcMetrics,
		logger:     logger,
		maxRetries: defaultMaxRetries,
		txChunker:  newTxChunker(fetchConcurrency),
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// RPCStatusError reports a daemon response whose status field is not
// "OK", or a JSON-RPC error object.
type RPCStatusError struct {
	Operation string
	Status    string
}

func (e *RPCStatusError) Error() string {
	return fmt.Sprintf("daemon %s: status %q", e.Operation, e.Status)
}

func (c *Client) callJSONRPC(ctx context.Context, method string, params, result interface{}) (err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe(method, err, started)
	}()

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      "0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	return c.withRetry(ctx, method, func() error {
		raw, err := c.post(ctx, c.baseURL+"/json_rpc", body)
		if err != nil {
			return err
		}

		var resp rpcResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s response: %w", method, err))
		}
		if resp.Error != nil {
			return backoff.Permanent(&RPCStatusError{Operation: method, Status: resp.Error.Message})
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s result: %w", method, err))
		}
		return nil
	})
}

func (c *Client) callREST(ctx context.Context, method, path string, params, result interface{}) (err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe(strings.TrimLeft(path, "/"), err, started)
	}()

	var body []byte
	if params != nil {
		body, err = json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
	}

	return c.withRetry(ctx, path, func() error {
		var (
			raw []byte
			err error
		)
		if method == http.MethodGet {
			raw, err = c.get(ctx, c.baseURL+path)
		} else {
			raw, err = c.post(ctx, c.baseURL+path, body)
		}
		if err != nil {
			return err
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(raw, result); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s response: %w", path, err))
		}
		return nil
	})
}

func (c *Client) withRetry(ctx context.Context, operation string, call func() error) error {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)

	return backoff.RetryNotify(
		func() error {
			if err := c.gate.Acquire(ctx, 1); err != nil {
				return backoff.Permanent(err)
			}
			return call()
		},
		bo,
		func(err error, wait time.Duration) {
			c.rpcMetrics.ObserveRetry(operation)
			c.logger.Warnf("daemon %s failed, retrying in %s: %v", operation, wait, err)
		},
	)
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("daemon returned HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("daemon returned HTTP %d", resp.StatusCode))
	}
	return raw, nil
}
