// Package testutil contains in-process fakes of the external providers for package tests.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"portfolio_tracker/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type rpcRequest struct {
	JSONRPC string                `json:"jsonrpc"`
	ID      jsoniter.RawMessage   `json:"id"`
	Method  string                `json:"method"`
	Params  []jsoniter.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  interface{}         `json:"result,omitempty"`
	Error   *rpcError           `json:"error,omitempty"`
}

// FakeAlchemy is a JSON-RPC server answering alchemy_getTokenBalances and alchemy_getTokenMetadata.
type FakeAlchemy struct {
	Server *httptest.Server

	mu            sync.Mutex
	balances      map[string][]entity.RawBalance
	metadata      map[string]entity.TokenMetadata
	failMetadata  map[string]bool
	failBalances  bool
	metadataCalls int64
	batches       int64
	maxBatchSize  int64
	paths         []string
}

// NewFakeAlchemy starts a fake provider. Close it with f.Server.Close().
func NewFakeAlchemy() *FakeAlchemy {
	f := &FakeAlchemy{
		balances:     make(map[string][]entity.RawBalance),
		metadata:     make(map[string]entity.TokenMetadata),
		failMetadata: make(map[string]bool),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	return f
}

// URLTemplate returns an RPC URL template with a single %s for the API key.
func (f *FakeAlchemy) URLTemplate() string {
	return f.Server.URL + "/v2/%s"
}

// SetBalances registers the balance list returned for wallet.
func (f *FakeAlchemy) SetBalances(wallet string, balances []entity.RawBalance) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[strings.ToLower(wallet)] = balances
}

// SetMetadata registers metadata for a contract.
func (f *FakeAlchemy) SetMetadata(contract string, md entity.TokenMetadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata[strings.ToLower(contract)] = md
}

// FailMetadata makes metadata lookups for contract return a JSON-RPC error.
func (f *FakeAlchemy) FailMetadata(contract string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failMetadata[strings.ToLower(contract)] = true
}

// FailBalances makes every balance request fail with HTTP 500.
func (f *FakeAlchemy) FailBalances() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failBalances = true
}

// MetadataCalls returns the number of metadata lookups served.
func (f *FakeAlchemy) MetadataCalls() int64 { return atomic.LoadInt64(&f.metadataCalls) }

// Batches returns the number of batch requests served.
func (f *FakeAlchemy) Batches() int64 { return atomic.LoadInt64(&f.batches) }

// MaxBatchSize returns the largest batch seen.
func (f *FakeAlchemy) MaxBatchSize() int64 { return atomic.LoadInt64(&f.maxBatchSize) }

// Paths returns the request paths seen, which carry the API key.
func (f *FakeAlchemy) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func (f *FakeAlchemy) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body = bytes.TrimSpace(body)
	w.Header().Set("Content-Type", "application/json")

	if len(body) > 0 && body[0] == '[' {
		var reqs []rpcRequest
		if err := json.Unmarshal(body, &reqs); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		atomic.AddInt64(&f.batches, 1)
		for {
			cur := atomic.LoadInt64(&f.maxBatchSize)
			if int64(len(reqs)) <= cur || atomic.CompareAndSwapInt64(&f.maxBatchSize, cur, int64(len(reqs))) {
				break
			}
		}
		resps := make([]rpcResponse, 0, len(reqs))
		for _, req := range reqs {
			resps = append(resps, f.handle(req))
		}
		_ = json.NewEncoder(w).Encode(resps)
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Method == "alchemy_getTokenBalances" {
		f.mu.Lock()
		fail := f.failBalances
		f.mu.Unlock()
		if fail {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
	}
	_ = json.NewEncoder(w).Encode(f.handle(req))
}

func (f *FakeAlchemy) handle(req rpcRequest) rpcResponse {
	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	var param string
	if len(req.Params) > 0 {
		_ = json.Unmarshal(req.Params[0], &param)
	}
	key := strings.ToLower(param)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch req.Method {
	case "alchemy_getTokenBalances":
		balances := f.balances[key]
		if balances == nil {
			balances = []entity.RawBalance{}
		}
		resp.Result = map[string]interface{}{"address": param, "tokenBalances": balances}
	case "alchemy_getTokenMetadata":
		atomic.AddInt64(&f.metadataCalls, 1)
		if f.failMetadata[key] {
			resp.Error = &rpcError{Code: -32000, Message: "metadata unavailable"}
			return resp
		}
		md, ok := f.metadata[key]
		if !ok {
			resp.Result = map[string]interface{}{"decimals": nil, "name": nil, "symbol": nil, "logo": nil}
			return resp
		}
		resp.Result = md
	default:
		resp.Error = &rpcError{Code: -32601, Message: "method not found"}
	}
	return resp
}
