package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// maxResponseBytes caps the size of a gateway response body.
const maxResponseBytes = 8 << 20

// RPCClient talks JSON-RPC 1.0 to the ledger gateway, which fronts both the
// node (unspent outputs, broadcast) and the property contract. Every typed
// method goes through Call.
type RPCClient struct {
	endpoint string
	user     string
	pass     string
	http     *http.Client
	logger   *zap.Logger
	seq      atomic.Int64
}

// RPCOption configures an RPCClient.
type RPCOption func(*RPCClient)

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(hc *http.Client) RPCOption {
	return func(c *RPCClient) { c.http = hc }
}

// WithRPCLogger logs each call at debug level.
func WithRPCLogger(l *zap.Logger) RPCOption {
	return func(c *RPCClient) {
		if l != nil {
			c.logger = l
		}
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCError is an error reported by the gateway itself, as opposed to a
// transport or decoding failure.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("network: %s: rpc error %d: %s", e.Method, e.Code, e.Message)
}

// NewRPCClient creates a client for the gateway at cfg.URL. Basic auth is
// sent when cfg.User is set.
func NewRPCClient(cfg RPCConfig, opts ...RPCOption) *RPCClient {
	c := &RPCClient{
		endpoint: cfg.URL,
		user:     cfg.User,
		pass:     cfg.Password,
		logger:   zap.NewNop(),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call invokes method with params and decodes the result into result.
// A nil params sends an empty array; a nil result discards the response.
//
// Transport failures wrap ErrConnectionFailed, undecodable responses wrap
// ErrInvalidResponse and gateway-reported errors are *RPCError.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	id := c.seq.Add(1)
	body, err := json.Marshal(rpcRequest{JSONRPC: "1.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("network: encode %s request: %w", method, err)
	}

	start := time.Now()
	raw, err := c.post(ctx, body)
	c.logger.Debug("rpc call",
		zap.String("method", method),
		zap.Int64("id", id),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	if err != nil {
		return err
	}

	var resp rpcResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, method, err)
	}
	if resp.Error != nil {
		return &RPCError{Method: method, Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if resp.ID != id {
		return fmt.Errorf("%w: %s: response id %d, want %d", ErrInvalidResponse, method, resp.ID, id)
	}
	if result == nil || resp.Result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("%w: %s result: %w", ErrInvalidResponse, method, err)
	}
	return nil
}

// post sends one request body. Gateways answer RPC errors with HTTP 500 and
// a JSON body, so such a body is returned for decoding.
func (c *RPCClient) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("network: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrConnectionFailed, err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusInternalServerError && json.Valid(raw):
		return raw, nil
	}
	if len(raw) > 256 {
		raw = raw[:256]
	}
	return nil, fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, bytes.TrimSpace(raw))
}
