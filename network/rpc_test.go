package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRPCClientCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "gateway", user)
		assert.Equal(t, "hunter2", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1.0", req.JSONRPC)
		assert.Equal(t, "getPropertyShares", req.Method)
		assert.Equal(t, []interface{}{float64(4), "holder"}, req.Params)

		_ = json.NewEncoder(w).Encode(rpcResponse{ID: req.ID, Result: json.RawMessage(`120`)})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL, User: "gateway", Password: "hunter2"})
	var shares uint64
	require.NoError(t, client.Call(context.Background(), "getPropertyShares", []interface{}{4, "holder"}, &shares))
	assert.Equal(t, uint64(120), shares)
}

func TestRPCClientGatewayError(t *testing.T) {
	server := rpcTestServer(t, map[string]rpcHandler{
		"getProperty": func([]interface{}) (interface{}, *rpcError) {
			return nil, &rpcError{Code: -5, Message: "Property does not exist"}
		},
	})
	defer server.Close()

	err := NewRPCClient(RPCConfig{URL: server.URL}).Call(context.Background(), "getProperty", []interface{}{99}, nil)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr), "got %v", err)
	assert.Equal(t, "getProperty", rpcErr.Method)
	assert.Equal(t, -5, rpcErr.Code)
	assert.Equal(t, "Property does not exist", rpcErr.Message)
	assert.NotErrorIs(t, err, ErrConnectionFailed)
}

func TestRPCClientTransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{"unauthorized", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		}, ErrConnectionFailed},
		{"html error page", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>oops</html>"))
		}, ErrConnectionFailed},
		{"garbage body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}, ErrInvalidResponse},
		{"id mismatch", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(rpcResponse{ID: 424242, Result: json.RawMessage(`1`)})
		}, ErrInvalidResponse},
		{"wrong result type", func(w http.ResponseWriter, r *http.Request) {
			var req rpcRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(rpcResponse{ID: req.ID, Result: json.RawMessage(`"many"`)})
		}, ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			var n uint64
			err := NewRPCClient(RPCConfig{URL: server.URL}).Call(context.Background(), "propertyCount", nil, &n)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRPCClientUnreachable(t *testing.T) {
	var n uint64
	err := NewRPCClient(RPCConfig{URL: "http://127.0.0.1:1"}).Call(context.Background(), "propertyCount", nil, &n)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestRPCClientContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var n uint64
	err := NewRPCClient(RPCConfig{URL: server.URL}).Call(ctx, "propertyCount", nil, &n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRPCClientSequentialIDs(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []int64
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		ids = append(ids, req.ID)
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(rpcResponse{ID: req.ID, Result: json.RawMessage(`0`)})
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	for i := 0; i < 3; i++ {
		require.NoError(t, client.Call(context.Background(), "propertyCount", nil, nil))
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestRPCClientOptions(t *testing.T) {
	server := rpcTestServer(t, map[string]rpcHandler{
		"propertyCount": func([]interface{}) (interface{}, *rpcError) { return 3, nil },
	})
	defer server.Close()

	core, logs := observer.New(zap.DebugLevel)
	hc := &http.Client{Timeout: time.Second}
	client := NewRPCClient(RPCConfig{URL: server.URL}, WithHTTPClient(hc), WithRPCLogger(zap.New(core)))
	assert.Same(t, hc, client.http)

	count, err := NewContractClient(client).PropertyCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	entries := logs.FilterMessage("rpc call").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "propertyCount", entries[0].ContextMap()["method"])
}
